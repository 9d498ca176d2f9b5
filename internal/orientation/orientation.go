package orientation

import (
	"math"
)

// Pose is the roll/pitch orientation published by the node, in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
}

// AccelAngles computes roll and pitch from the accelerometer only.
// Valid for a device that is not accelerating; the result is the measurement
// fed to the filters, not the published orientation.
//
//	roll  = atan2(ay, sqrt(ax² + az²))
//	pitch = atan2(-ax, sqrt(ay² + az²))
func AccelAngles(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, math.Sqrt(ax*ax+az*az))
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
	}
}
