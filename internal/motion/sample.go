// Package motion defines motion/location samples and the time-windowed signal
// buffer the crash classifier evaluates against.
package motion

import (
	"math"
	"time"
)

// Location is a geographic fix attached to a sample when the location source
// had one available.
type Location struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
}

// MotionSample is a single motion/location observation. Immutable once
// created; produced by the sensor collaborator at a bounded, possibly
// irregular rate.
type MotionSample struct {
	// WallTime is the wall-clock timestamp of the observation.
	WallTime time.Time `json:"wall_time"`
	// MonotonicNanos is the sensor's monotonic clock reading, used to order
	// samples when the wall clock steps.
	MonotonicNanos int64 `json:"monotonic_nanos"`

	// Linear acceleration in m/s², device frame.
	AccelX float64 `json:"accel_x"`
	AccelY float64 `json:"accel_y"`
	AccelZ float64 `json:"accel_z"`

	// Angular rate in rad/s, device frame.
	GyroX float64 `json:"gyro_x"`
	GyroY float64 `json:"gyro_y"`
	GyroZ float64 `json:"gyro_z"`

	// SpeedMps is the instantaneous ground speed derived from location, m/s.
	SpeedMps float64 `json:"speed_mps"`

	// HeadingDeg is the heading in degrees, when known.
	HeadingDeg *float64 `json:"heading_deg,omitempty"`

	// Location is the last geographic fix, when known.
	Location *Location `json:"location,omitempty"`
}

// AccelMagnitude returns the magnitude of the linear acceleration vector.
func (s MotionSample) AccelMagnitude() float64 {
	return math.Sqrt(s.AccelX*s.AccelX + s.AccelY*s.AccelY + s.AccelZ*s.AccelZ)
}

// GyroMagnitude returns the magnitude of the angular rate vector.
func (s MotionSample) GyroMagnitude() float64 {
	return math.Sqrt(s.GyroX*s.GyroX + s.GyroY*s.GyroY + s.GyroZ*s.GyroZ)
}
