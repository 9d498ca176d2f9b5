// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package health

// Escalation limits.
const (
	MaxFailures   = 10 // failed checks before a reconnect cycle
	MaxReconnects = 10 // reconnect cycles before a restart
)

// Action is what the caller must do after a reachability check.
type Action int

const (
	None Action = iota
	Reconnect
	Restart
)

func (a Action) String() string {
	switch a {
	case None:
		return "none"
	case Reconnect:
		return "reconnect"
	case Restart:
		return "restart"
	}
	return "unknown"
}

// Monitor counts consecutive failed reachability checks and escalates:
// MaxFailures failures trigger a reconnect, and once MaxReconnects
// reconnect cycles went by without a success the next failure triggers a
// restart. Any success clears both counters.
type Monitor struct {
	failures   int
	reconnects int
}

// Observe records one check and returns the action it calls for.
func (m *Monitor) Observe(reachable bool) Action {
	if reachable {
		m.failures = 0
		m.reconnects = 0
		return None
	}

	m.failures++
	if m.reconnects >= MaxReconnects {
		return Restart
	}
	if m.failures >= MaxFailures {
		m.failures = 0
		m.reconnects++
		return Reconnect
	}
	return None
}

// Failures is the current count of consecutive failed checks.
func (m *Monitor) Failures() int { return m.failures }

// Reconnects is the number of reconnect cycles since the last success.
func (m *Monitor) Reconnects() int { return m.reconnects }

// Stable reports whether the last check succeeded.
func (m *Monitor) Stable() bool { return m.failures == 0 && m.reconnects == 0 }
