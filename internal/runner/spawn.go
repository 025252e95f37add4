package runner

import (
	"math"
	"math/rand"
	"time"
)

var decorationKinds = []string{DecorationKindRock, DecorationKindShrub, DecorationKindPost}

var obstacleKinds = []string{ObstacleKindBarrier, ObstacleKindCrate}

// Spawner decides when to introduce obstacles and decorations as a function
// of elapsed time and the current scroll speed. Obstacle density tracks
// difficulty; the cosmetic stream runs eight times denser regardless.
type Spawner struct {
	cfg Config

	rng      *rand.Rand
	decorRNG *rand.Rand

	lastObstacle   time.Time
	lastDecoration time.Time
}

func newSpawner(cfg Config) *Spawner {
	return &Spawner{
		cfg:      cfg,
		rng:      NewDeterministicRNG(cfg.Seed, "runner.spawn"),
		decorRNG: NewDeterministicRNG(cfg.Seed, "runner.decor"),
	}
}

// Reset rebases both spawn timers to the session start and reseeds the RNG
// streams so every run of the same seed is identical.
func (s *Spawner) Reset(now time.Time) {
	s.rng = NewDeterministicRNG(s.cfg.Seed, "runner.spawn")
	s.decorRNG = NewDeterministicRNG(s.cfg.Seed, "runner.decor")
	s.lastObstacle = now
	s.lastDecoration = now
}

// obstacleInterval shrinks as speed rises above the reference speed.
func (s *Spawner) obstacleInterval(speed float64) time.Duration {
	if speed <= 0 {
		speed = s.cfg.StartSpeed
	}
	millis := s.cfg.SpawnIntervalBase * 1000 / (speed / spawnSpeedReference)
	return time.Duration(millis * float64(time.Millisecond))
}

// ShouldSpawnObstacle consults and, on a yes, resets the obstacle timer.
func (s *Spawner) ShouldSpawnObstacle(now time.Time, speed float64) bool {
	if now.Sub(s.lastObstacle) < s.obstacleInterval(speed) {
		return false
	}
	s.lastObstacle = now
	return true
}

// ShouldSpawnDecoration consults and, on a yes, resets the decoration timer.
func (s *Spawner) ShouldSpawnDecoration(now time.Time, speed float64) bool {
	if now.Sub(s.lastDecoration) < s.obstacleInterval(speed)/decorationIntervalDivisor {
		return false
	}
	s.lastDecoration = now
	return true
}

// NewObstacle rolls a uniformly random lane at the fixed spawn depth.
func (s *Spawner) NewObstacle() Obstacle {
	return Obstacle{
		Lane: s.rng.Intn(laneCount),
		Z:    s.cfg.SpawnDepth,
		Kind: obstacleKinds[s.rng.Intn(len(obstacleKinds))],
	}
}

// NewDecoration places scenery off-track, jittered around the spawn depth.
func (s *Spawner) NewDecoration() Decoration {
	side := 1.0
	if s.decorRNG.Intn(2) == 0 {
		side = -1.0
	}
	offset := randomDistance(s.decorRNG, s.cfg.DecorationMinOffset, s.cfg.DecorationMaxOffset)
	jitter := (s.decorRNG.Float64()*2 - 1) * s.cfg.DecorationZJitter
	return Decoration{
		X:        side * offset,
		Z:        s.cfg.SpawnDepth + jitter,
		Kind:     decorationKinds[s.decorRNG.Intn(len(decorationKinds))],
		Rotation: s.decorRNG.Float64() * 2 * math.Pi,
	}
}
