// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

// MinDt is the smallest time step accepted by the filter, in seconds.
// Zero or negative steps (clock wraparound, duplicate timestamps) are raised to it.
const MinDt = 1e-6

// Default noise parameters for a single tilt axis.
const (
	DefaultQAngle   = 0.001 // process noise of the angle
	DefaultQBias    = 0.003 // process noise of the gyro bias
	DefaultRMeasure = 0.03  // accelerometer angle measurement noise
)

// Kalman is a two-state (angle, gyro bias) filter for one axis.
type Kalman struct {
	QAngle   float64
	QBias    float64
	RMeasure float64

	angle float64
	bias  float64
	p     [2][2]float64
}

// NewKalman returns a filter with the default noise parameters and zero state.
func NewKalman() *Kalman {
	return &Kalman{
		QAngle:   DefaultQAngle,
		QBias:    DefaultQBias,
		RMeasure: DefaultRMeasure,
	}
}

// SetAngle seeds the angle estimate. Bias and covariance are left untouched.
func (k *Kalman) SetAngle(deg float64) {
	k.angle = deg
}

// Angle returns the current estimate in degrees.
func (k *Kalman) Angle() float64 {
	return k.angle
}

// Bias returns the current gyro bias estimate in deg/s.
func (k *Kalman) Bias() float64 {
	return k.bias
}

// Update runs one predict/correct cycle and returns the filtered angle.
// measured is the accelerometer angle (deg), rate the gyro rate (deg/s), dt seconds.
func (k *Kalman) Update(measured, rate, dt float64) float64 {
	if !(dt > 0) {
		dt = MinDt
	}

	// predict
	k.angle += dt * (rate - k.bias)

	k.p[0][0] += dt * (dt*k.p[1][1] - k.p[0][1] - k.p[1][0] + k.QAngle)
	k.p[0][1] -= dt * k.p[1][1]
	k.p[1][0] -= dt * k.p[1][1]
	k.p[1][1] += k.QBias * dt

	// correct
	s := k.p[0][0] + k.RMeasure
	k0 := k.p[0][0] / s
	k1 := k.p[1][0] / s

	y := measured - k.angle
	k.angle += k0 * y
	k.bias += k1 * y

	p00, p01 := k.p[0][0], k.p[0][1]
	k.p[0][0] -= k0 * p00
	k.p[0][1] -= k0 * p01
	k.p[1][0] -= k1 * p00
	k.p[1][1] -= k1 * p01

	return k.angle
}
