// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package audio

import "math"

// Calibration constants of the PDM microphone. Changing them changes the
// published values.
const (
	BaselineAlpha = 0.98   // weight of the previous auto-zero baseline
	DecibelGain   = 8.6859 // dB per neper
	DecibelOffset = 25.6699
)

// DecibelFloor is returned by ToDecibels for non-positive or NaN power.
const DecibelFloor = 0.0

// LevelEstimator turns blocks of PCM samples into an RMS power relative to a
// slowly tracked zero baseline, which removes the microphone's DC offset.
type LevelEstimator struct {
	filteredBase float64
}

// Baseline returns the current auto-zero level.
func (e *LevelEstimator) Baseline() float64 {
	return e.filteredBase
}

// ProcessBlock updates the baseline with the block mean and returns the
// block's RMS deviation from the baseline. An empty block returns 0 and
// leaves the baseline unchanged.
func (e *LevelEstimator) ProcessBlock(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	n := float64(len(samples))

	var base float64
	for _, v := range samples {
		base += float64(v)
	}
	base /= n

	e.filteredBase = e.filteredBase*BaselineAlpha + base*(1-BaselineAlpha)

	var sum float64
	for _, v := range samples {
		d := float64(v) - e.filteredBase
		sum += d * d
	}
	return math.Sqrt(sum / n)
}

// ToDecibels maps linear power onto the microphone's sound level curve.
func ToDecibels(power float64) float64 {
	if !(power > 0) {
		return DecibelFloor
	}
	return DecibelGain*math.Log(power) + DecibelOffset
}
