package sensor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridepulse-app/crashguard/internal/motion"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type sampleCollector struct {
	mu      sync.Mutex
	samples []motion.MotionSample
}

func (c *sampleCollector) handle(s motion.MotionSample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.samples = append(c.samples, s)
}

func (c *sampleCollector) all() []motion.MotionSample {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]motion.MotionSample(nil), c.samples...)
}

func TestReplaySource(t *testing.T) {
	t.Parallel()

	t.Run("replays mixed CSV and JSON lines", func(t *testing.T) {
		t.Parallel()
		path := writeFixture(t, `# recorded 2026-03-14
1770000000000,0.1,0.0,9.81,0.02,0.01,0.0,25.5
{"wall_time":"2026-03-14T09:00:01Z","accel_z":9.81,"speed_mps":26}

1770000002000,0.1,0.0,9.81,0.02,0.01,0.0,25.0,37.33,-121.89
`)

		var collector sampleCollector
		src := NewReplaySource(path, false, collector.handle)
		require.NoError(t, src.Run(context.Background()))

		samples := collector.all()
		require.Len(t, samples, 3)
		assert.Equal(t, 25.5, samples[0].SpeedMps)
		assert.Equal(t, 26.0, samples[1].SpeedMps)
		require.NotNil(t, samples[2].Location)
		assert.Equal(t, 37.33, samples[2].Location.Latitude)
	})

	t.Run("skips malformed lines", func(t *testing.T) {
		t.Parallel()
		path := writeFixture(t, `garbage line
{"wall_time": broken json
1770000000000,0.1,0.0,9.81,0.02,0.01,0.0,25.5
`)

		var collector sampleCollector
		src := NewReplaySource(path, false, collector.handle)
		require.NoError(t, src.Run(context.Background()))
		assert.Len(t, collector.all(), 1)
	})

	t.Run("errors on a missing file", func(t *testing.T) {
		t.Parallel()
		src := NewReplaySource(filepath.Join(t.TempDir(), "nope.txt"), false, func(motion.MotionSample) {})
		assert.Error(t, src.Run(context.Background()))
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		t.Parallel()
		path := writeFixture(t, `1770000000000,0.1,0.0,9.81,0.02,0.01,0.0,25.5
1770000001000,0.1,0.0,9.81,0.02,0.01,0.0,25.5
`)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		src := NewReplaySource(path, false, func(motion.MotionSample) {})
		assert.ErrorIs(t, src.Run(ctx), context.Canceled)
	})
}
