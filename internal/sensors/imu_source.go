// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/sensor_node/internal/config"
	"github.com/relabs-tech/sensor_node/internal/imu"
)

type imuSource struct {
	imu        *mpu9250.MPU9250
	accelRange byte
	gyroRange  byte
}

// NewIMUSource initializes the MPU9250 over SPI and returns a reader that
// reports acceleration in g and rotation in deg/s.
func NewIMUSource(cfg *config.Config) (imu.Reader, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("IMU: periph host init: %w", err)
	}

	cs := gpioreg.ByName(cfg.IMUCSPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU: CS pin %q not found", cfg.IMUCSPin)
	}

	tr, err := mpu9250.NewSpiTransport(cfg.IMUSPIDevice, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU: SPI transport (%s): %w", cfg.IMUSPIDevice, err)
	}

	dev, err := mpu9250.New(*tr)
	if err != nil {
		return nil, fmt.Errorf("IMU: device creation: %w", err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("IMU: initialization: %w", err)
	}

	if err := dev.SetAccelRange(cfg.IMUAccelRange); err != nil {
		return nil, fmt.Errorf("IMU: set accel range: %w", err)
	}
	log.Printf("IMU: accelerometer range set to %d (±%dg)", cfg.IMUAccelRange, []int{2, 4, 8, 16}[cfg.IMUAccelRange])

	if err := dev.SetGyroRange(cfg.IMUGyroRange); err != nil {
		return nil, fmt.Errorf("IMU: set gyro range: %w", err)
	}
	log.Printf("IMU: gyroscope range set to %d (±%d°/s)", cfg.IMUGyroRange, []int{250, 500, 1000, 2000}[cfg.IMUGyroRange])

	// Offsets are handled by the motion sampler's own stationary calibration,
	// the chip's self-test is informational only.
	if res, err := dev.SelfTest(); err != nil {
		log.Warnf("IMU: self-test failed: %v", err)
	} else {
		log.Printf("IMU: self-test passed, accel deviation X: %.2f%% Y: %.2f%% Z: %.2f%%",
			res.AccelDeviation.X, res.AccelDeviation.Y, res.AccelDeviation.Z)
	}

	return &imuSource{
		imu:        dev,
		accelRange: cfg.IMUAccelRange,
		gyroRange:  cfg.IMUGyroRange,
	}, nil
}

// Read reads accelerometer and gyroscope registers and scales them.
func (s *imuSource) Read() (imu.Sample, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU accel X: %w", err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU accel Y: %w", err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU accel Z: %w", err)
	}

	gx, err := s.imu.GetRotationX()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU gyro X: %w", err)
	}
	gy, err := s.imu.GetRotationY()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU gyro Y: %w", err)
	}
	gz, err := s.imu.GetRotationZ()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU gyro Z: %w", err)
	}

	return imu.FromCounts(ax, ay, az, gx, gy, gz, s.accelRange, s.gyroRange), nil
}
