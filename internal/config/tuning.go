package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for detection and escalation
// tuning parameters. Fields are pointers so a partial JSON file only overrides
// what it names; the Get* accessors supply defaults for everything else.
type TuningConfig struct {
	// Signal buffer params
	WindowDuration *string `json:"window_duration,omitempty"` // duration string like "10s"
	SkewTolerance  *string `json:"skew_tolerance,omitempty"`  // duration string like "150ms"

	// Evaluation loop params
	EvalCadence *string `json:"eval_cadence,omitempty"` // duration string like "1s"

	// Classifier params
	MinFillRatio       *float64 `json:"min_fill_ratio,omitempty"`
	ProbabilityFloor   *float64 `json:"probability_floor,omitempty"`
	ImpactScaleG       *float64 `json:"impact_scale_g,omitempty"`
	DecelScaleMps2     *float64 `json:"decel_scale_mps2,omitempty"`
	RolloverScaleRadps *float64 `json:"rollover_scale_radps,omitempty"`

	// Escalation params
	TriggerThreshold    *float64 `json:"trigger_threshold,omitempty"`
	RetractionThreshold *float64 `json:"retraction_threshold,omitempty"`
	CorroborationWindow *string  `json:"corroboration_window,omitempty"` // duration string like "2s"
	CountdownDuration   *string  `json:"countdown_duration,omitempty"`   // duration string like "45s"
}

// EmptyTuningConfig returns a TuningConfig with all fields unset so every
// accessor falls back to its default.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file is
// validated to ensure it has a .json extension and is under the max file
// size. Fields omitted from the JSON retain their defaults, so partial
// configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	for name, v := range map[string]*float64{
		"min_fill_ratio":       c.MinFillRatio,
		"probability_floor":    c.ProbabilityFloor,
		"trigger_threshold":    c.TriggerThreshold,
		"retraction_threshold": c.RetractionThreshold,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
	}

	if c.TriggerThreshold != nil && c.RetractionThreshold != nil &&
		*c.RetractionThreshold >= *c.TriggerThreshold {
		return fmt.Errorf("retraction_threshold (%f) must be below trigger_threshold (%f)",
			*c.RetractionThreshold, *c.TriggerThreshold)
	}

	for name, v := range map[string]*float64{
		"impact_scale_g":       c.ImpactScaleG,
		"decel_scale_mps2":     c.DecelScaleMps2,
		"rollover_scale_radps": c.RolloverScaleRadps,
	} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, *v)
		}
	}

	for name, v := range map[string]*string{
		"window_duration":      c.WindowDuration,
		"skew_tolerance":       c.SkewTolerance,
		"eval_cadence":         c.EvalCadence,
		"corroboration_window": c.CorroborationWindow,
		"countdown_duration":   c.CountdownDuration,
	} {
		if v != nil && *v != "" {
			if _, err := time.ParseDuration(*v); err != nil {
				return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
			}
		}
	}

	if c.CountdownDuration != nil && *c.CountdownDuration != "" {
		d, _ := time.ParseDuration(*c.CountdownDuration)
		if d <= 0 {
			return fmt.Errorf("countdown_duration must be positive, got %s", *c.CountdownDuration)
		}
	}

	return nil
}

func (c *TuningConfig) duration(v *string, fallback time.Duration) time.Duration {
	if v == nil || *v == "" {
		return fallback
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fallback
	}
	return d
}

// GetWindowDuration returns the signal window duration or the default.
func (c *TuningConfig) GetWindowDuration() time.Duration {
	return c.duration(c.WindowDuration, 10*time.Second)
}

// GetSkewTolerance returns the out-of-order clock-skew tolerance or the default.
func (c *TuningConfig) GetSkewTolerance() time.Duration {
	return c.duration(c.SkewTolerance, 150*time.Millisecond)
}

// GetEvalCadence returns the evaluation loop cadence or the default.
func (c *TuningConfig) GetEvalCadence() time.Duration {
	return c.duration(c.EvalCadence, time.Second)
}

// GetCorroborationWindow returns the corroboration window or the default.
// Zero means the countdown starts in the same tick the candidate is detected.
func (c *TuningConfig) GetCorroborationWindow() time.Duration {
	return c.duration(c.CorroborationWindow, 2*time.Second)
}

// GetCountdownDuration returns the countdown duration or the default.
func (c *TuningConfig) GetCountdownDuration() time.Duration {
	return c.duration(c.CountdownDuration, 45*time.Second)
}

// GetMinFillRatio returns the min_fill_ratio value or the default.
func (c *TuningConfig) GetMinFillRatio() float64 {
	if c.MinFillRatio == nil {
		return 0.5
	}
	return *c.MinFillRatio
}

// GetProbabilityFloor returns the probability_floor value or the default.
func (c *TuningConfig) GetProbabilityFloor() float64 {
	if c.ProbabilityFloor == nil {
		return 0.2
	}
	return *c.ProbabilityFloor
}

// GetImpactScaleG returns the impact_scale_g value or the default.
func (c *TuningConfig) GetImpactScaleG() float64 {
	if c.ImpactScaleG == nil {
		return 4.0
	}
	return *c.ImpactScaleG
}

// GetDecelScaleMps2 returns the decel_scale_mps2 value or the default.
func (c *TuningConfig) GetDecelScaleMps2() float64 {
	if c.DecelScaleMps2 == nil {
		return 12.0
	}
	return *c.DecelScaleMps2
}

// GetRolloverScaleRadps returns the rollover_scale_radps value or the default.
func (c *TuningConfig) GetRolloverScaleRadps() float64 {
	if c.RolloverScaleRadps == nil {
		return 6.0
	}
	return *c.RolloverScaleRadps
}

// GetTriggerThreshold returns the trigger_threshold value or the default.
func (c *TuningConfig) GetTriggerThreshold() float64 {
	if c.TriggerThreshold == nil {
		return 0.75
	}
	return *c.TriggerThreshold
}

// GetRetractionThreshold returns the retraction_threshold value or the default.
func (c *TuningConfig) GetRetractionThreshold() float64 {
	if c.RetractionThreshold == nil {
		return 0.4
	}
	return *c.RetractionThreshold
}
