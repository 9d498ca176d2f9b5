// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

// Vec3 is an x/y/z triple.
type Vec3 [3]float64

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// Sample is a single IMU reading in physical units.
type Sample struct {
	Acc  Vec3 `json:"acc"`  // g
	Gyro Vec3 `json:"gyro"` // deg/s
}

// Reader returns one fresh IMU reading per call.
type Reader interface {
	Read() (Sample, error)
}

// Full-scale sensitivities for the MPU-9250 range codes 0..3.
var (
	AccelLSBPerG   = [4]float64{16384, 8192, 4096, 2048}
	GyroLSBPerDegS = [4]float64{131, 65.5, 32.8, 16.4}
)

// FromCounts converts raw register counts to g and deg/s for the given range codes.
func FromCounts(ax, ay, az, gx, gy, gz int16, accelRange, gyroRange byte) Sample {
	as := AccelLSBPerG[accelRange&3]
	gs := GyroLSBPerDegS[gyroRange&3]
	return Sample{
		Acc:  Vec3{float64(ax) / as, float64(ay) / as, float64(az) / as},
		Gyro: Vec3{float64(gx) / gs, float64(gy) / gs, float64(gz) / gs},
	}
}
