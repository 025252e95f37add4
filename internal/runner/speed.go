package runner

import "math"

// speedForScore is the only writer of scroll speed: a pure, monotonic
// function of cumulative score, capped at MaxSpeed.
func speedForScore(cfg Config, score int) float64 {
	return math.Min(cfg.MaxSpeed, cfg.StartSpeed+float64(score)/cfg.SpeedScoreDivisor)
}
