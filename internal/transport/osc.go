// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package transport

import (
	"fmt"

	"github.com/hypebeast/go-osc/osc"
)

// OSCSender sends OSC messages over UDP.
type OSCSender struct {
	client *osc.Client
	dest   string
}

// NewOSCSender targets host:port. Nothing is dialed until the first Send.
func NewOSCSender(host string, port int) *OSCSender {
	return &OSCSender{
		client: osc.NewClient(host, port),
		dest:   fmt.Sprintf("%s:%d", host, port),
	}
}

// Message builds the OSC message for address and args.
func Message(address string, args ...interface{}) (*osc.Message, error) {
	norm, err := normalize(args)
	if err != nil {
		return nil, err
	}
	return osc.NewMessage(address, norm...), nil
}

func (s *OSCSender) Send(address string, args ...interface{}) error {
	msg, err := Message(address, args...)
	if err != nil {
		return err
	}
	if err := s.client.Send(msg); err != nil {
		return fmt.Errorf("osc: send %s to %s: %w", address, s.dest, err)
	}
	return nil
}
