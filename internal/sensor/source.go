// Package sensor contains collaborator adapters that acquire motion samples
// and push them into the engine. The engine core never reads hardware or the
// network itself; each source runs in its own goroutine and hands samples to
// a Handler (normally Coordinator.SubmitSample).
package sensor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ridepulse-app/crashguard/internal/motion"
)

// Handler consumes decoded samples.
type Handler func(motion.MotionSample)

// Source acquires samples until its context is cancelled.
type Source interface {
	Run(ctx context.Context) error
}

// ParseCSVSample decodes one CSV telemetry line:
//
//	unix_ms,accel_x,accel_y,accel_z,gyro_x,gyro_y,gyro_z,speed_mps[,lat,lon]
//
// This is the line format IMU firmware emits over serial and what fixture
// files contain.
func ParseCSVSample(line string) (motion.MotionSample, error) {
	segments := strings.Split(strings.TrimSpace(line), ",")
	if len(segments) != 8 && len(segments) != 10 {
		return motion.MotionSample{}, fmt.Errorf("expected 8 or 10 fields, got %d", len(segments))
	}

	fields := make([]float64, len(segments))
	for i, seg := range segments {
		v, err := strconv.ParseFloat(strings.TrimSpace(seg), 64)
		if err != nil {
			return motion.MotionSample{}, fmt.Errorf("failed to parse field %d: %w", i, err)
		}
		fields[i] = v
	}

	unixMs := int64(fields[0])
	sample := motion.MotionSample{
		WallTime:       time.UnixMilli(unixMs),
		MonotonicNanos: unixMs * int64(time.Millisecond),
		AccelX:         fields[1],
		AccelY:         fields[2],
		AccelZ:         fields[3],
		GyroX:          fields[4],
		GyroY:          fields[5],
		GyroZ:          fields[6],
		SpeedMps:       fields[7],
	}
	if len(fields) == 10 {
		sample.Location = &motion.Location{Latitude: fields[8], Longitude: fields[9]}
	}
	return sample, nil
}
