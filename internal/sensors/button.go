// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Button reports whether the physical button is held down right now.
type Button interface {
	Pressed() bool
}

type gpioButton struct {
	pin gpio.PinIO
}

// OpenButton configures pinName as an input with pull-up; the button
// shorts it to ground when pressed.
func OpenButton(pinName string) (Button, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("button: periph host init: %w", err)
	}

	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("button: pin %q not found", pinName)
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("button: configure %s: %w", pinName, err)
	}
	return &gpioButton{pin: pin}, nil
}

func (b *gpioButton) Pressed() bool {
	return b.pin.Read() == gpio.Low
}

// NoButton is never pressed.
type NoButton struct{}

func (NoButton) Pressed() bool { return false }
