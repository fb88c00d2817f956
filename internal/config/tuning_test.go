package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTuningConfig(t *testing.T) {
	t.Parallel()

	t.Run("loads a full config", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "tuning.json", `{
			"window_duration": "8s",
			"trigger_threshold": 0.9,
			"retraction_threshold": 0.3,
			"countdown_duration": "30s"
		}`)

		cfg, err := LoadTuningConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 8*time.Second, cfg.GetWindowDuration())
		assert.Equal(t, 0.9, cfg.GetTriggerThreshold())
		assert.Equal(t, 0.3, cfg.GetRetractionThreshold())
		assert.Equal(t, 30*time.Second, cfg.GetCountdownDuration())
	})

	t.Run("partial config keeps defaults for omitted fields", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "tuning.json", `{"trigger_threshold": 0.85}`)

		cfg, err := LoadTuningConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 0.85, cfg.GetTriggerThreshold())
		assert.Equal(t, 10*time.Second, cfg.GetWindowDuration())
		assert.Equal(t, 150*time.Millisecond, cfg.GetSkewTolerance())
		assert.Equal(t, 45*time.Second, cfg.GetCountdownDuration())
	})

	t.Run("rejects non-json extension", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "tuning.yaml", `{}`)
		_, err := LoadTuningConfig(path)
		assert.ErrorContains(t, err, ".json extension")
	})

	t.Run("rejects missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadTuningConfig(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "tuning.json", `{"trigger_threshold": `)
		_, err := LoadTuningConfig(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	f := func(v float64) *float64 { return &v }
	s := func(v string) *string { return &v }

	t.Run("empty config is valid", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, EmptyTuningConfig().Validate())
	})

	t.Run("probability fields must be in range", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, (&TuningConfig{TriggerThreshold: f(1.5)}).Validate())
		assert.Error(t, (&TuningConfig{MinFillRatio: f(-0.1)}).Validate())
	})

	t.Run("retraction must stay below trigger", func(t *testing.T) {
		t.Parallel()
		cfg := &TuningConfig{TriggerThreshold: f(0.6), RetractionThreshold: f(0.6)}
		assert.ErrorContains(t, cfg.Validate(), "retraction_threshold")
	})

	t.Run("classifier scales must be positive", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, (&TuningConfig{ImpactScaleG: f(0)}).Validate())
	})

	t.Run("durations must parse", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, (&TuningConfig{WindowDuration: s("ten seconds")}).Validate())
		assert.NoError(t, (&TuningConfig{WindowDuration: s("10s")}).Validate())
	})

	t.Run("countdown must be positive", func(t *testing.T) {
		t.Parallel()
		assert.ErrorContains(t, (&TuningConfig{CountdownDuration: s("-5s")}).Validate(), "positive")
	})
}

func TestDefaultsFile(t *testing.T) {
	t.Parallel()

	// The shipped defaults file must load cleanly and agree with the
	// compiled-in defaults.
	cfg, err := LoadTuningConfig(filepath.Join("..", "..", DefaultConfigPath))
	require.NoError(t, err)

	empty := EmptyTuningConfig()
	assert.Equal(t, empty.GetWindowDuration(), cfg.GetWindowDuration())
	assert.Equal(t, empty.GetSkewTolerance(), cfg.GetSkewTolerance())
	assert.Equal(t, empty.GetEvalCadence(), cfg.GetEvalCadence())
	assert.Equal(t, empty.GetMinFillRatio(), cfg.GetMinFillRatio())
	assert.Equal(t, empty.GetProbabilityFloor(), cfg.GetProbabilityFloor())
	assert.Equal(t, empty.GetTriggerThreshold(), cfg.GetTriggerThreshold())
	assert.Equal(t, empty.GetRetractionThreshold(), cfg.GetRetractionThreshold())
	assert.Equal(t, empty.GetCorroborationWindow(), cfg.GetCorroborationWindow())
	assert.Equal(t, empty.GetCountdownDuration(), cfg.GetCountdownDuration())
}
