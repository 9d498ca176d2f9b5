// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package button

import "time"

// Timing of the factory-reset gesture.
const (
	HoldThreshold = 3000 * time.Millisecond
	ConfirmWindow = 5000 * time.Millisecond
)

// State of the reset gesture.
type State int

const (
	Idle State = iota
	Held
	ConfirmingReset
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Held:
		return "held"
	case ConfirmingReset:
		return "confirming-reset"
	}
	return "unknown"
}

// Event is emitted by Machine.Poll on a state change that matters to the caller.
type Event int

const (
	NoEvent Event = iota
	// ConfirmRequested: the button was released after a long hold; show the prompt.
	ConfirmRequested
	// ResetConfirmed: pressed again inside the window; clear config and restart.
	ResetConfirmed
	// ResetCancelled: the window expired; resume normal operation.
	ResetCancelled
)

func (e Event) String() string {
	switch e {
	case NoEvent:
		return "none"
	case ConfirmRequested:
		return "confirm-requested"
	case ResetConfirmed:
		return "reset-confirmed"
	case ResetCancelled:
		return "reset-cancelled"
	}
	return "unknown"
}

// Machine tracks the hold/confirm gesture. It is polled with the current
// button level and time; it never blocks.
type Machine struct {
	state     State
	pressedAt time.Time
	deadline  time.Time
	wasDown   bool
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Deadline is when the pending confirmation expires. Zero outside ConfirmingReset.
func (m *Machine) Deadline() time.Time {
	if m.state != ConfirmingReset {
		return time.Time{}
	}
	return m.deadline
}

// Poll advances the machine with the button level sampled at now.
func (m *Machine) Poll(pressed bool, now time.Time) Event {
	down := pressed && !m.wasDown
	up := !pressed && m.wasDown
	m.wasDown = pressed

	switch m.state {
	case Idle:
		if down {
			m.state = Held
			m.pressedAt = now
		}

	case Held:
		if up {
			held := now.Sub(m.pressedAt)
			if held >= HoldThreshold {
				m.state = ConfirmingReset
				m.deadline = now.Add(ConfirmWindow)
				return ConfirmRequested
			}
			m.state = Idle
		}

	case ConfirmingReset:
		if down && now.Before(m.deadline) {
			m.state = Idle
			return ResetConfirmed
		}
		if !now.Before(m.deadline) {
			m.state = Idle
			return ResetCancelled
		}
	}
	return NoEvent
}
