// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ridepulse-app/crashguard/internal/motion"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

// CruiseSample returns a benign riding sample at t: gravity on the Z axis,
// negligible rotation, steady highway speed.
func CruiseSample(t time.Time) motion.MotionSample {
	return motion.MotionSample{
		WallTime:       t,
		MonotonicNanos: t.UnixNano(),
		AccelX:         0.1,
		AccelY:         0.0,
		AccelZ:         9.81,
		GyroX:          0.02,
		GyroY:          0.01,
		GyroZ:          0.0,
		SpeedMps:       25,
	}
}

// ImpactSample returns a sample with a violent acceleration spike and a speed
// collapse, the signature of a high-side or collision.
func ImpactSample(t time.Time) motion.MotionSample {
	return motion.MotionSample{
		WallTime:       t,
		MonotonicNanos: t.UnixNano(),
		AccelX:         55,
		AccelY:         30,
		AccelZ:         40,
		GyroX:          1.5,
		GyroY:          0.8,
		GyroZ:          0.5,
		SpeedMps:       2,
	}
}

// RolloverSample returns a sample dominated by angular velocity, the
// signature of a tumbling machine.
func RolloverSample(t time.Time) motion.MotionSample {
	return motion.MotionSample{
		WallTime:       t,
		MonotonicNanos: t.UnixNano(),
		AccelX:         8,
		AccelY:         6,
		AccelZ:         5,
		GyroX:          14,
		GyroY:          11,
		GyroZ:          9,
		SpeedMps:       10,
	}
}

// CruiseSeries returns n benign samples spaced step apart, starting at start.
func CruiseSeries(start time.Time, n int, step time.Duration) []motion.MotionSample {
	samples := make([]motion.MotionSample, 0, n)
	for i := 0; i < n; i++ {
		samples = append(samples, CruiseSample(start.Add(time.Duration(i)*step)))
	}
	return samples
}
