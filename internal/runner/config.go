package runner

import (
	"fmt"
	"strings"
	"time"
)

const (
	laneCount = 3
	laneMin   = 0
	laneMax   = laneCount - 1

	// spawnSpeedReference is the scroll speed at which the spawn interval
	// equals SpawnIntervalBase; faster worlds spawn proportionally denser.
	spawnSpeedReference = 15.0

	// decorationsPerSpawn is how many decorations a qualifying check emits.
	decorationsPerSpawn = 2

	// decorationIntervalDivisor scales the obstacle interval down for the
	// cosmetic stream.
	decorationIntervalDivisor = 8
)

const DefaultSeed = "runner"

// Config holds the simulation tunables. Construction rejects out-of-range
// values instead of clamping them.
type Config struct {
	Seed string `json:"seed"`

	// StartSpeed and MaxSpeed bound the score-derived scroll speed.
	StartSpeed float64 `json:"startSpeed"`
	MaxSpeed   float64 `json:"maxSpeed"`
	// SpeedScoreDivisor converts cumulative score into speed gain.
	SpeedScoreDivisor float64 `json:"speedScoreDivisor"`

	Lives             int `json:"lives"`
	PointsPerObstacle int `json:"pointsPerObstacle"`

	JumpHeight    float64       `json:"jumpHeight"`
	JumpDuration  time.Duration `json:"jumpDuration"`
	JumpClearance float64       `json:"jumpClearance"`

	// SpawnIntervalBase is in seconds of game time at the reference speed.
	SpawnIntervalBase float64 `json:"spawnIntervalBase"`
	SpawnDepth        float64 `json:"spawnDepth"`

	// HitWindow is the half-width of the depth gate around the player.
	HitWindow float64 `json:"hitWindow"`

	ObstacleCullZ   float64 `json:"obstacleCullZ"`
	DecorationCullZ float64 `json:"decorationCullZ"`

	DecorationMinOffset float64 `json:"decorationMinOffset"`
	DecorationMaxOffset float64 `json:"decorationMaxOffset"`
	DecorationZJitter   float64 `json:"decorationZJitter"`

	InvincibilityDuration time.Duration `json:"invincibilityDuration"`
}

// DefaultConfig returns the tuning the game ships with.
func DefaultConfig() Config {
	return Config{
		Seed:                  DefaultSeed,
		StartSpeed:            15,
		MaxSpeed:              40,
		SpeedScoreDivisor:     50,
		Lives:                 3,
		PointsPerObstacle:     10,
		JumpHeight:            2.0,
		JumpDuration:          700 * time.Millisecond,
		JumpClearance:         1.1,
		SpawnIntervalBase:     1.5,
		SpawnDepth:            -80,
		HitWindow:             1.0,
		ObstacleCullZ:         5,
		DecorationCullZ:       20,
		DecorationMinOffset:   6,
		DecorationMaxOffset:   14,
		DecorationZJitter:     10,
		InvincibilityDuration: 2 * time.Second,
	}
}

// ConfigError reports an out-of-range tunable rejected at construction time.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("runner config: %s %s", e.Field, e.Reason)
}

// Validate rejects tunables that would break the simulation invariants.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Seed) == "" {
		return &ConfigError{Field: "seed", Reason: "must not be empty"}
	}
	if cfg.StartSpeed <= 0 {
		return &ConfigError{Field: "startSpeed", Reason: "must be positive"}
	}
	if cfg.MaxSpeed < cfg.StartSpeed {
		return &ConfigError{Field: "maxSpeed", Reason: "must be at least startSpeed"}
	}
	if cfg.SpeedScoreDivisor <= 0 {
		return &ConfigError{Field: "speedScoreDivisor", Reason: "must be positive"}
	}
	if cfg.Lives < 1 {
		return &ConfigError{Field: "lives", Reason: "must be at least 1"}
	}
	if cfg.PointsPerObstacle < 0 {
		return &ConfigError{Field: "pointsPerObstacle", Reason: "must not be negative"}
	}
	if cfg.JumpDuration <= 0 {
		return &ConfigError{Field: "jumpDuration", Reason: "must be positive"}
	}
	if cfg.JumpHeight <= cfg.JumpClearance {
		return &ConfigError{Field: "jumpHeight", Reason: "must exceed jumpClearance or jumps can never clear"}
	}
	if cfg.JumpClearance <= 0 {
		return &ConfigError{Field: "jumpClearance", Reason: "must be positive"}
	}
	if cfg.SpawnIntervalBase <= 0 {
		return &ConfigError{Field: "spawnIntervalBase", Reason: "must be positive"}
	}
	if cfg.SpawnDepth >= 0 {
		return &ConfigError{Field: "spawnDepth", Reason: "must be ahead of the camera (negative)"}
	}
	if cfg.HitWindow <= 0 {
		return &ConfigError{Field: "hitWindow", Reason: "must be positive"}
	}
	if cfg.ObstacleCullZ <= cfg.HitWindow {
		return &ConfigError{Field: "obstacleCullZ", Reason: "must be beyond the hit window"}
	}
	if cfg.DecorationCullZ <= 0 {
		return &ConfigError{Field: "decorationCullZ", Reason: "must be positive"}
	}
	if cfg.DecorationMinOffset <= 0 || cfg.DecorationMaxOffset < cfg.DecorationMinOffset {
		return &ConfigError{Field: "decorationMaxOffset", Reason: "offsets must be positive and ordered"}
	}
	if cfg.DecorationZJitter < 0 {
		return &ConfigError{Field: "decorationZJitter", Reason: "must not be negative"}
	}
	if cfg.InvincibilityDuration < 0 {
		return &ConfigError{Field: "invincibilityDuration", Reason: "must not be negative"}
	}
	return nil
}
