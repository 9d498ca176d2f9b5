// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// BatteryStatus is the charge level reported on the status screen and over OSC.
type BatteryStatus struct {
	Percent  int  `json:"percent"`
	Charging bool `json:"charging"`
}

// BatteryReader reports the current battery state.
type BatteryReader interface {
	ReadBattery() (BatteryStatus, error)
}

// PowerSupply reads a Linux power_supply class directory,
// e.g. /sys/class/power_supply/BAT0.
type PowerSupply struct {
	Dir string
}

func (p PowerSupply) ReadBattery() (BatteryStatus, error) {
	raw, err := os.ReadFile(filepath.Join(p.Dir, "capacity"))
	if err != nil {
		return BatteryStatus{}, fmt.Errorf("battery: %w", err)
	}
	pct, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return BatteryStatus{}, fmt.Errorf("battery: capacity %q: %w", raw, err)
	}

	status, err := os.ReadFile(filepath.Join(p.Dir, "status"))
	if err != nil {
		return BatteryStatus{}, fmt.Errorf("battery: %w", err)
	}
	s := strings.TrimSpace(string(status))

	return BatteryStatus{
		Percent:  pct,
		Charging: s == "Charging",
	}, nil
}

// FixedBattery always reports the same state; used with mock sensors.
type FixedBattery BatteryStatus

func (f FixedBattery) ReadBattery() (BatteryStatus, error) {
	return BatteryStatus(f), nil
}
