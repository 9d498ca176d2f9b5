// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/sensor_node/internal/imu"
	"github.com/relabs-tech/sensor_node/internal/orientation"
	"github.com/relabs-tech/sensor_node/internal/schedule"
	"github.com/relabs-tech/sensor_node/internal/store"
)

// Calibration routine parameters.
const (
	CalibrationSamples = 500
	CalibrationSpacing = 2 * time.Millisecond
)

// Preference namespace and keys of the stored calibration.
const (
	Namespace     = "imu_calibration"
	keyCalibrated = "calibrated"
	keyGyroOffset = "gyroOffset"
	keyAccOffset  = "accOffset"
)

// Snapshot is a copy of the sampler's latest state, safe to hand to another task.
type Snapshot struct {
	Acc  imu.Vec3         `json:"acc"`
	Gyro imu.Vec3         `json:"gyro"`
	Pose orientation.Pose `json:"rotation"`
}

// Sampler owns the IMU, its calibration and the orientation filters.
// It is not safe for concurrent use: callers serialize access with the IMU lock.
type Sampler struct {
	reader imu.Reader
	prefs  *store.Prefs
	clock  schedule.Clock

	cal      imu.Calibration
	est      *orientation.Estimator
	last     imu.Sample
	lastTime time.Time
}

// NewSampler wires a sampler; call Initialize before SampleOnce.
func NewSampler(r imu.Reader, prefs *store.Prefs, clock schedule.Clock) *Sampler {
	return &Sampler{
		reader: r,
		prefs:  prefs,
		clock:  clock,
		est:    orientation.NewEstimator(),
	}
}

// Initialize loads the stored calibration, or measures and stores a new one
// when none exists or force is set. It then seeds both filters from one
// accelerometer reading and starts the fusion time base.
func (s *Sampler) Initialize(ctx context.Context, force bool) error {
	cal, ok := s.loadCalibration()
	switch {
	case force:
		log.Println("imu: forced calibration, keep the device still")
	case !ok:
		log.Println("imu: no stored calibration, keep the device still")
	default:
		log.Printf("imu: loaded calibration gyro=%v acc=%v", cal.GyroOffset, cal.AccOffset)
	}

	if force || !ok {
		var err error
		if cal, err = s.Recalibrate(ctx); err != nil {
			return err
		}
	}

	seed, err := s.SeedReading()
	if err != nil {
		return err
	}
	s.Reseed(cal, seed)
	return nil
}

// Recalibrate measures and stores new offsets without touching the offsets
// or filters in use. It only reads the IMU and writes prefs, so it may run
// while Snapshot is served, but not alongside SampleOnce.
func (s *Sampler) Recalibrate(ctx context.Context) (imu.Calibration, error) {
	cal, err := s.Calibrate(ctx)
	if err != nil {
		return imu.Calibration{}, err
	}
	if err := s.saveCalibration(cal); err != nil {
		return imu.Calibration{}, err
	}
	log.Printf("imu: calibration stored gyro=%v acc=%v", cal.GyroOffset, cal.AccOffset)
	return cal, nil
}

// SeedReading takes the raw reading Reseed starts the filters from.
func (s *Sampler) SeedReading() (imu.Sample, error) {
	raw, err := s.reader.Read()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("imu: seed reading: %w", err)
	}
	return raw, nil
}

// Reseed puts cal in use, seeds both filters from the corrected seed reading
// and restarts the fusion time base. It does no I/O.
func (s *Sampler) Reseed(cal imu.Calibration, seed imu.Sample) {
	s.cal = cal
	s.last = s.cal.Apply(seed)
	s.est.Seed(orientation.AccelAngles(s.last.Acc[0], s.last.Acc[1], s.last.Acc[2]))
	s.lastTime = s.clock.Now()
}

// Calibrate averages CalibrationSamples stationary readings taken
// CalibrationSpacing apart. The accelerometer Z offset has 1g removed so a
// flat device reads (0, 0, 1) afterwards. Failed reads are skipped.
func (s *Sampler) Calibrate(ctx context.Context) (imu.Calibration, error) {
	var gyroSum, accSum imu.Vec3
	n := 0

	next := s.clock.Now()
	for i := 0; i < CalibrationSamples; i++ {
		raw, err := s.reader.Read()
		if err != nil {
			log.Debugf("imu: calibration read %d: %v", i, err)
		} else {
			for a := 0; a < 3; a++ {
				gyroSum[a] += raw.Gyro[a]
				accSum[a] += raw.Acc[a]
			}
			n++
		}

		next = next.Add(CalibrationSpacing)
		if err := s.clock.SleepUntil(ctx, next); err != nil {
			return imu.Calibration{}, fmt.Errorf("imu: calibration interrupted: %w", err)
		}
	}

	if n == 0 {
		return imu.Calibration{}, errors.New("imu: calibration: no successful reads")
	}

	var cal imu.Calibration
	for a := 0; a < 3; a++ {
		cal.GyroOffset[a] = gyroSum[a] / float64(n)
		cal.AccOffset[a] = accSum[a] / float64(n)
	}
	cal.AccOffset[2] -= 1.0 // gravity
	return cal, nil
}

// SampleOnce reads the IMU, removes the offsets and advances the filters by the
// wall-clock time since the previous sample. On a read error the previous
// values are kept and the error is returned for logging.
func (s *Sampler) SampleOnce() error {
	raw, err := s.reader.Read()
	if err != nil {
		return fmt.Errorf("imu: read: %w", err)
	}

	now := s.clock.Now()
	dt := now.Sub(s.lastTime).Seconds()
	s.lastTime = now

	s.last = s.cal.Apply(raw)
	measured := orientation.AccelAngles(s.last.Acc[0], s.last.Acc[1], s.last.Acc[2])
	s.est.Update(measured, s.last.Gyro[0], s.last.Gyro[1], dt)
	return nil
}

// Snapshot returns copies of the last corrected acceleration and rotation
// rate and the last filtered roll/pitch.
func (s *Sampler) Snapshot() Snapshot {
	return Snapshot{
		Acc:  s.last.Acc,
		Gyro: s.last.Gyro,
		Pose: s.est.Pose(),
	}
}

// Calibration returns the offsets in use.
func (s *Sampler) Calibration() imu.Calibration {
	return s.cal
}

func (s *Sampler) loadCalibration() (imu.Calibration, bool) {
	if !s.prefs.GetBool(Namespace, keyCalibrated, false) {
		return imu.Calibration{}, false
	}

	gb, ok1 := s.prefs.GetBytes(Namespace, keyGyroOffset)
	ab, ok2 := s.prefs.GetBytes(Namespace, keyAccOffset)
	if !ok1 || !ok2 {
		log.Warn("imu: calibration flag set but offsets missing")
		return imu.Calibration{}, false
	}

	gyro, err := imu.DecodeVec3(gb)
	if err != nil {
		log.Warnf("imu: stored gyro offset: %v", err)
		return imu.Calibration{}, false
	}
	acc, err := imu.DecodeVec3(ab)
	if err != nil {
		log.Warnf("imu: stored accel offset: %v", err)
		return imu.Calibration{}, false
	}
	return imu.Calibration{GyroOffset: gyro, AccOffset: acc}, true
}

func (s *Sampler) saveCalibration(cal imu.Calibration) error {
	if err := s.prefs.PutBytes(Namespace, keyGyroOffset, imu.EncodeVec3(cal.GyroOffset)); err != nil {
		return fmt.Errorf("imu: save gyro offset: %w", err)
	}
	if err := s.prefs.PutBytes(Namespace, keyAccOffset, imu.EncodeVec3(cal.AccOffset)); err != nil {
		return fmt.Errorf("imu: save accel offset: %w", err)
	}
	if err := s.prefs.PutBool(Namespace, keyCalibrated, true); err != nil {
		return fmt.Errorf("imu: save calibrated flag: %w", err)
	}
	return nil
}
