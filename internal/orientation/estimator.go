package orientation

// Estimator fuses accelerometer tilt and gyro rates into roll/pitch,
// one Kalman filter per axis. Not safe for concurrent use; the motion
// sampler owns it.
type Estimator struct {
	roll  *Kalman
	pitch *Kalman
	pose  Pose
}

// NewEstimator returns an unseeded estimator.
func NewEstimator() *Estimator {
	return &Estimator{
		roll:  NewKalman(),
		pitch: NewKalman(),
	}
}

// Seed sets the starting angle of both axes. Call once before the first Update.
func (e *Estimator) Seed(p Pose) {
	e.roll.SetAngle(p.Roll)
	e.pitch.SetAngle(p.Pitch)
	e.pose = p
}

// Update feeds one calibrated reading. rollRate and pitchRate are the gyro
// rates about X and Y in deg/s; dt is the elapsed time in seconds.
func (e *Estimator) Update(measured Pose, rollRate, pitchRate, dt float64) Pose {
	e.pose = Pose{
		Roll:  e.roll.Update(measured.Roll, rollRate, dt),
		Pitch: e.pitch.Update(measured.Pitch, pitchRate, dt),
	}
	return e.pose
}

// Pose returns the last filtered orientation.
func (e *Estimator) Pose() Pose {
	return e.pose
}
