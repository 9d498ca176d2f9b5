// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/sensor_node/internal/button"
	"github.com/relabs-tech/sensor_node/internal/device"
	"github.com/relabs-tech/sensor_node/internal/display"
)

// ButtonPollInterval is how often the foreground loop samples the button.
const ButtonPollInterval = 5 * time.Millisecond

// RunButton is the foreground input loop. While a reset confirmation is
// pending it holds the display lock so the health task cannot draw over the
// prompt. It returns ErrRestart after a confirmed factory reset and nil when
// ctx is done.
func (n *Node) RunButton(ctx context.Context) error {
	var (
		m      button.Machine
		locked bool
	)
	defer func() {
		if locked {
			n.displayMu.Unlock()
		}
	}()

	next := n.clock.Now()
	for {
		next = next.Add(ButtonPollInterval)
		if err := n.clock.SleepUntil(ctx, next); err != nil {
			return nil
		}

		switch m.Poll(n.button.Pressed(), n.clock.Now()) {
		case button.ConfirmRequested:
			log.Println("button: reset requested, press again to confirm")
			n.displayMu.Lock()
			locked = true
			if err := n.screen.Show(display.ResetConfirmPage()); err != nil {
				log.Printf("button: display: %v", err)
			}

		case button.ResetConfirmed:
			log.Warn("button: reset confirmed")
			return n.factoryReset(ctx)

		case button.ResetCancelled:
			log.Println("button: reset cancelled")
			n.displayMu.Unlock()
			locked = false

			page, _, _ := n.statusPage()
			if err := n.show(page); err != nil {
				log.Printf("button: display: %v", err)
			}
		}
	}
}

// factoryReset clears the stored OSC destination, drops the network link
// and asks for a restart. Calibration is kept.
func (n *Node) factoryReset(ctx context.Context) error {
	if err := device.Reset(n.prefs); err != nil {
		log.Errorf("button: clear settings: %v", err)
	}
	if err := n.link.Disconnect(ctx); err != nil {
		log.Printf("button: %v", err)
	}
	return ErrRestart
}
