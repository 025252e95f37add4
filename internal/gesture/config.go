package gesture

import (
	"fmt"
	"time"
)

// Config holds the classifier tunables. Values are validated up front;
// out-of-range tunables are construction errors, never silently clamped.
type Config struct {
	// CalibrationSamples is the number of warm-up samples collected before
	// any gesture can be emitted.
	CalibrationSamples int `json:"calibrationSamples"`
	// LeanLeftThreshold and LeanRightThreshold are nose-X cutoffs in the
	// mirrored camera frame.
	LeanLeftThreshold  float64 `json:"leanLeftThreshold"`
	LeanRightThreshold float64 `json:"leanRightThreshold"`
	// JumpThresholdY is the upward torso displacement that registers a jump.
	JumpThresholdY float64 `json:"jumpThresholdY"`
	// JumpCooldown and LaneChangeCooldown space out repeated gestures.
	JumpCooldown       time.Duration `json:"jumpCooldown"`
	LaneChangeCooldown time.Duration `json:"laneChangeCooldown"`
	// BaselineDriftWindow bounds the excursion treated as posture drift
	// rather than a jump; BaselineDriftRate is the per-sample nudge factor.
	BaselineDriftWindow float64 `json:"baselineDriftWindow"`
	BaselineDriftRate   float64 `json:"baselineDriftRate"`
}

// DefaultConfig returns the tuning the game ships with.
func DefaultConfig() Config {
	return Config{
		CalibrationSamples:  30,
		LeanLeftThreshold:   0.60,
		LeanRightThreshold:  0.40,
		JumpThresholdY:      0.05,
		JumpCooldown:        800 * time.Millisecond,
		LaneChangeCooldown:  400 * time.Millisecond,
		BaselineDriftWindow: 0.05,
		BaselineDriftRate:   0.05,
	}
}

// ConfigError reports an out-of-range tunable rejected at construction time.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("gesture config: %s %s", e.Field, e.Reason)
}

// Validate rejects tunables that would make the classifier degenerate.
func (cfg Config) Validate() error {
	if cfg.CalibrationSamples < 1 {
		return &ConfigError{Field: "calibrationSamples", Reason: "must be at least 1"}
	}
	if cfg.LeanLeftThreshold <= 0 || cfg.LeanLeftThreshold >= 1 {
		return &ConfigError{Field: "leanLeftThreshold", Reason: "must be inside (0,1)"}
	}
	if cfg.LeanRightThreshold <= 0 || cfg.LeanRightThreshold >= 1 {
		return &ConfigError{Field: "leanRightThreshold", Reason: "must be inside (0,1)"}
	}
	if cfg.LeanRightThreshold >= cfg.LeanLeftThreshold {
		return &ConfigError{Field: "leanRightThreshold", Reason: "must be below leanLeftThreshold"}
	}
	if cfg.JumpThresholdY <= 0 {
		return &ConfigError{Field: "jumpThresholdY", Reason: "must be positive"}
	}
	if cfg.JumpCooldown < 0 {
		return &ConfigError{Field: "jumpCooldown", Reason: "must not be negative"}
	}
	if cfg.LaneChangeCooldown < 0 {
		return &ConfigError{Field: "laneChangeCooldown", Reason: "must not be negative"}
	}
	if cfg.BaselineDriftWindow <= 0 {
		return &ConfigError{Field: "baselineDriftWindow", Reason: "must be positive"}
	}
	if cfg.BaselineDriftRate < 0 || cfg.BaselineDriftRate > 1 {
		return &ConfigError{Field: "baselineDriftRate", Reason: "must be inside [0,1]"}
	}
	return nil
}
