// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package schedule

import (
	"context"
	"errors"
	"time"
)

// Task is one periodic job of the node.
type Task struct {
	Name   string
	Period time.Duration
	// Tick runs once per period. Returning an error stops the task and is
	// reported to the caller of Run; transient problems should be logged
	// inside Tick instead.
	Tick func(ctx context.Context) error
}

// Run calls t.Tick at absolute deadlines start+Period, start+2·Period, ...
// A slow tick does not shift later deadlines; when a deadline is already past
// the next tick starts immediately. Run returns nil when ctx is cancelled.
func (t Task) Run(ctx context.Context, clock Clock) error {
	if t.Period <= 0 {
		return errors.New("schedule: " + t.Name + ": period must be positive")
	}

	next := clock.Now()
	for {
		next = next.Add(t.Period)
		if err := clock.SleepUntil(ctx, next); err != nil {
			return nil
		}
		if err := t.Tick(ctx); err != nil {
			return err
		}
	}
}

// Hz returns the period of a rate given in hertz, e.g. Hz(60) ≈ 16.67ms.
func Hz(rate float64) time.Duration {
	return time.Duration(float64(time.Second) / rate)
}
