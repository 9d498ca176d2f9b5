// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Vec3Size is the persisted size of one offset vector: three little-endian float32.
const Vec3Size = 12

// Calibration holds the stationary offsets subtracted from every reading.
// AccOffset already has 1g removed from the vertical (Z) axis.
type Calibration struct {
	GyroOffset Vec3 `json:"gyro_offset"`
	AccOffset  Vec3 `json:"acc_offset"`
}

// Apply returns s with the offsets removed.
func (c Calibration) Apply(s Sample) Sample {
	return Sample{
		Acc:  s.Acc.Sub(c.AccOffset),
		Gyro: s.Gyro.Sub(c.GyroOffset),
	}
}

// EncodeVec3 packs v into the fixed 12-byte layout.
func EncodeVec3(v Vec3) []byte {
	b := make([]byte, Vec3Size)
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(float32(v[i])))
	}
	return b
}

// DecodeVec3 unpacks the fixed 12-byte layout.
func DecodeVec3(b []byte) (Vec3, error) {
	if len(b) != Vec3Size {
		return Vec3{}, fmt.Errorf("offset vector: want %d bytes, got %d", Vec3Size, len(b))
	}
	var v Vec3
	for i := 0; i < 3; i++ {
		v[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])))
	}
	return v, nil
}
