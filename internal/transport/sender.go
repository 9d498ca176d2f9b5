// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package transport

import (
	"errors"
	"fmt"
)

// Sender transmits one message to an address. Sends are fire-and-forget:
// a nil error only means the message left this process.
type Sender interface {
	Send(address string, args ...interface{}) error
}

// Multi sends every message to each of its senders in order.
// A failing sender does not stop the others.
type Multi []Sender

func (m Multi) Send(address string, args ...interface{}) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(address, args...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// normalize maps Go numeric types onto the OSC wire types: int32 for
// integers and float32 for floats.
func normalize(args []interface{}) ([]interface{}, error) {
	out := make([]interface{}, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case int:
			out[i] = int32(v)
		case int32:
			out[i] = v
		case int64:
			out[i] = int32(v)
		case float32:
			out[i] = v
		case float64:
			out[i] = float32(v)
		case bool:
			out[i] = v
		case string:
			out[i] = v
		default:
			return nil, fmt.Errorf("transport: unsupported argument %d of type %T", i, a)
		}
	}
	return out, nil
}
