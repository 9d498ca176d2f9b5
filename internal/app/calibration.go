// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"

	"github.com/relabs-tech/sensor_node/internal/config"
	"github.com/relabs-tech/sensor_node/internal/imu"
	"github.com/relabs-tech/sensor_node/internal/motion"
	"github.com/relabs-tech/sensor_node/internal/schedule"
	"github.com/relabs-tech/sensor_node/internal/store"
)

// RunCalibration measures and stores a fresh IMU calibration, replacing any
// stored one. The node daemon must not be running.
func RunCalibration(ctx context.Context, cfg *config.Config) (imu.Calibration, error) {
	prefs, err := store.Open(cfg.StorePath)
	if err != nil {
		return imu.Calibration{}, err
	}

	r, err := OpenIMU(cfg)
	if err != nil {
		return imu.Calibration{}, err
	}

	s := motion.NewSampler(r, prefs, schedule.SystemClock{})
	if err := s.Initialize(ctx, true); err != nil {
		return imu.Calibration{}, err
	}
	return s.Calibration(), nil
}
