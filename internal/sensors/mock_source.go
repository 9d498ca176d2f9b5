// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/sensor_node/internal/imu"
)

// mockSettle is how long the mock IMU stays still after start, long enough
// for the stationary calibration to see a flat device.
const mockSettle = 2 * time.Second

// Constant offsets the calibration is expected to remove.
var (
	mockGyroBias = imu.Vec3{0.8, -0.4, 0.2}
	mockAccBias  = imu.Vec3{0.01, -0.02, 0.03}
)

type mockIMU struct {
	start time.Time
	now   func() time.Time
}

// NewMockIMU returns a reader that rocks smoothly in roll and pitch.
func NewMockIMU() imu.Reader {
	return &mockIMU{start: time.Now(), now: time.Now}
}

func (m *mockIMU) Read() (imu.Sample, error) {
	elapsed := m.now().Sub(m.start) - mockSettle
	if elapsed < 0 {
		elapsed = 0
	}
	t := elapsed.Seconds()

	rollDeg := 20 * math.Sin(t)
	pitchDeg := 15 * (math.Cos(t*0.7) - 1)
	rollRate := 20 * math.Cos(t)
	pitchRate := -15 * 0.7 * math.Sin(t*0.7)

	r := rollDeg * math.Pi / 180
	p := pitchDeg * math.Pi / 180

	s := imu.Sample{
		Acc: imu.Vec3{
			-math.Sin(p),
			math.Sin(r) * math.Cos(p),
			math.Cos(r) * math.Cos(p),
		},
		Gyro: imu.Vec3{rollRate, pitchRate, 0},
	}
	if elapsed == 0 {
		s.Gyro = imu.Vec3{}
	}
	for a := 0; a < 3; a++ {
		s.Acc[a] += mockAccBias[a]
		s.Gyro[a] += mockGyroBias[a]
	}
	return s, nil
}

// ToneCapture synthesizes a microphone signal: a DC offset plus a tone whose
// amplitude swells and fades every few seconds.
type ToneCapture struct {
	SampleRate float64
	DC         float64
	Amplitude  float64
	Frequency  float64

	n int
}

// NewToneCapture returns a 16 kHz, 440 Hz test source.
func NewToneCapture() *ToneCapture {
	return &ToneCapture{
		SampleRate: 16000,
		DC:         -1200,
		Amplitude:  3000,
		Frequency:  440,
	}
}

func (c *ToneCapture) ReadBlock(buf []int16) (int, error) {
	for i := range buf {
		t := float64(c.n) / c.SampleRate
		env := 0.5 + 0.5*math.Sin(2*math.Pi*t/4)
		v := c.DC + env*c.Amplitude*math.Sin(2*math.Pi*c.Frequency*t)
		buf[i] = int16(v)
		c.n++
	}
	return len(buf), nil
}
