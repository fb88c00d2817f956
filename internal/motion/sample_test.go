package motion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMagnitudes(t *testing.T) {
	t.Parallel()

	s := MotionSample{AccelX: 3, AccelY: 4, GyroX: 6, GyroZ: 8}
	assert.InDelta(t, 5.0, s.AccelMagnitude(), 1e-9)
	assert.InDelta(t, 10.0, s.GyroMagnitude(), 1e-9)

	assert.Zero(t, MotionSample{}.AccelMagnitude())
	assert.Zero(t, MotionSample{}.GyroMagnitude())
}

func TestSampleJSONOmitsUnknownFields(t *testing.T) {
	t.Parallel()

	s := MotionSample{
		WallTime: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		AccelZ:   9.81,
		SpeedMps: 20,
	}
	data, err := json.Marshal(s)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "heading_deg")
	assert.NotContains(t, string(data), "location")

	var back MotionSample
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Nil(t, back.Location)
	assert.Equal(t, s.SpeedMps, back.SpeedMps)
}
