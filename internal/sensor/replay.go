package sensor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ridepulse-app/crashguard/internal/monitoring"
	"github.com/ridepulse-app/crashguard/internal/motion"
)

// ReplaySource feeds samples from a fixture file, one per line. Lines
// starting with '{' are JSON samples; anything else is parsed as CSV. Used in
// dev mode and by integration tests in place of live hardware.
type ReplaySource struct {
	path     string
	realtime bool
	handler  Handler
}

// NewReplaySource creates a source reading from path. With realtime set, the
// source sleeps between samples to reproduce the recorded timing; otherwise
// it pushes as fast as the file reads.
func NewReplaySource(path string, realtime bool, handler Handler) *ReplaySource {
	return &ReplaySource{path: path, realtime: realtime, handler: handler}
}

// Run replays the fixture file until EOF or cancellation.
func (s *ReplaySource) Run(ctx context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open fixtures file: %w", err)
	}
	defer f.Close()

	var prev time.Time
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sample, err := decodeLine(line)
		if err != nil {
			monitoring.Logf("skipping malformed fixture line: %v", err)
			continue
		}

		if s.realtime && !prev.IsZero() {
			if gap := sample.WallTime.Sub(prev); gap > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(gap):
				}
			}
		}
		prev = sample.WallTime

		s.handler(sample)
	}
	return scanner.Err()
}

func decodeLine(line string) (motion.MotionSample, error) {
	if strings.HasPrefix(line, "{") {
		var sample motion.MotionSample
		if err := json.Unmarshal([]byte(line), &sample); err != nil {
			return motion.MotionSample{}, fmt.Errorf("failed to unmarshal JSON: %w", err)
		}
		return sample, nil
	}
	return ParseCSVSample(line)
}
