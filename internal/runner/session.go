package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pose-runner/core/internal/gesture"
	"pose-runner/core/logging"
	logginggameplay "pose-runner/core/logging/gameplay"
	logginglifecycle "pose-runner/core/logging/lifecycle"
	loggingvision "pose-runner/core/logging/vision"
)

// ErrInvalidCommand marks a host command that is a no-op for the current
// session state. It is a signal for the host to log, never fatal to the core.
var ErrInvalidCommand = errors.New("runner: invalid command")

// State is the session lifecycle phase.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StatePaused   State = "paused"
	StateGameOver State = "game_over"
)

const (
	// defaultTickDelta substitutes for a non-positive dt.
	defaultTickDelta = time.Second / 60
	// maxTickDelta clamps the first tick after a stall or resume so entities
	// never teleport through the hit window.
	maxTickDelta = 250 * time.Millisecond
)

// SessionState is the externally readable snapshot of one tick's outcome.
type SessionState struct {
	Tick                 uint64  `json:"t"`
	State                State   `json:"state"`
	Score                int     `json:"score"`
	Lives                int     `json:"lives"`
	Speed                float64 `json:"speed"`
	ElapsedMillis        int64   `json:"elapsedMillis"`
	InvincibleUntilMilli int64   `json:"invincibleUntilMillis,omitempty"`
	GameOver             bool    `json:"gameOver"`
}

// Snapshot bundles everything the presentation layer needs to place meshes
// for one frame.
type Snapshot struct {
	Session     SessionState `json:"session"`
	Player      PlayerPose   `json:"player"`
	Obstacles   []Obstacle   `json:"obstacles"`
	Decorations []Decoration `json:"decorations"`
}

// Session orchestrates one fixed logical tick per rendered frame: classifier,
// kinematics, difficulty, entity advance, spawning, collision, scoring, in
// that order. It owns every piece of gameplay state and is the single
// mutator; hosts drive it from exactly one goroutine.
type Session struct {
	cfg Config

	classifier *gesture.Classifier
	player     *Player
	spawner    *Spawner
	field      *Field

	publisher logging.Publisher
	ref       logging.EntityRef

	state           State
	tick            uint64
	score           int
	lives           int
	speed           float64
	elapsed         time.Duration
	invincibleUntil time.Time

	wasCalibrated bool
	events        []Event
}

// NewSession validates both configs and assembles an idle session.
func NewSession(id string, cfg Config, gestureCfg gesture.Config, publisher logging.Publisher) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	classifier, err := gesture.NewClassifier(gestureCfg)
	if err != nil {
		return nil, err
	}
	if publisher == nil {
		publisher = logging.NopPublisher{}
	}
	return &Session{
		cfg:        cfg,
		classifier: classifier,
		player:     newPlayer(cfg),
		spawner:    newSpawner(cfg),
		field:      newField(),
		publisher:  publisher,
		ref:        logging.EntityRef{ID: id, Kind: logging.EntityKindSession},
		state:      StateIdle,
		lives:      cfg.Lives,
		speed:      cfg.StartSpeed,
	}, nil
}

// State reports the current lifecycle phase.
func (s *Session) State() State { return s.state }

// Start begins a fresh run from idle.
func (s *Session) Start(now time.Time) error {
	if s.state != StateIdle {
		return s.rejectCommand("start")
	}
	s.resetRun(now)
	s.state = StateRunning
	logginglifecycle.SessionStarted(context.Background(), s.publisher, s.tick, s.ref,
		logginglifecycle.SessionStartedPayload{Seed: s.cfg.Seed, StartSpeed: s.cfg.StartSpeed, Lives: s.cfg.Lives}, nil)
	return nil
}

// Pause suspends ticking. Timers observe no elapsed time while paused; the
// host's clock re-baselines across the gap.
func (s *Session) Pause(now time.Time) error {
	if s.state != StateRunning {
		return s.rejectCommand("pause")
	}
	s.state = StatePaused
	return nil
}

// Resume continues a paused run.
func (s *Session) Resume(now time.Time) error {
	if s.state != StatePaused {
		return s.rejectCommand("resume")
	}
	s.state = StateRunning
	return nil
}

// Restart resets every piece of owned state and begins a new run from any
// phase. A partial reset is a correctness bug, so everything funnels through
// resetRun.
func (s *Session) Restart(now time.Time) error {
	previousScore := s.score
	previousState := s.state
	s.resetRun(now)
	s.state = StateRunning
	logginglifecycle.SessionRestarted(context.Background(), s.publisher, s.tick, s.ref,
		logginglifecycle.SessionRestartedPayload{PreviousScore: previousScore, PreviousState: string(previousState)}, nil)
	return nil
}

// resetRun clears classifier calibration and cooldowns, player pose, both
// entity arenas, spawn timers, and the session tallies, in one place.
func (s *Session) resetRun(now time.Time) {
	s.classifier.Reset()
	s.player.Reset()
	s.field.Reset()
	s.spawner.Reset(now)
	s.tick = 0
	s.score = 0
	s.lives = s.cfg.Lives
	s.speed = s.cfg.StartSpeed
	s.elapsed = 0
	s.invincibleUntil = time.Time{}
	s.wasCalibrated = false
	s.events = s.events[:0]
}

// Tick advances the simulation by one frame. sample is the newest pose
// available, or nil when none arrived since the last tick; a nil sample
// implies no gesture. The per-step order is load-bearing: collision must see
// freshly advanced entity positions.
func (s *Session) Tick(dt time.Duration, now time.Time, sample *gesture.PoseSample) (SessionState, error) {
	switch s.state {
	case StateRunning:
	case StateGameOver:
		return s.sessionState(), fmt.Errorf("%w: tick after game over", ErrInvalidCommand)
	default:
		return s.sessionState(), fmt.Errorf("%w: tick while %s", ErrInvalidCommand, s.state)
	}

	if dt <= 0 {
		dt = defaultTickDelta
	}
	if dt > maxTickDelta {
		dt = maxTickDelta
	}

	s.tick++
	s.elapsed += dt

	g := s.classifySample(sample)
	if g != gesture.None {
		s.player.ApplyGesture(g, now)
		s.emit(Event{Kind: EventGestureDetected, Tick: s.tick, Gesture: g})
		logginggameplay.GestureDetected(context.Background(), s.publisher, s.tick, s.ref,
			logginggameplay.GestureDetectedPayload{Gesture: g.String()}, nil)
	}

	s.player.Advance(now)

	s.speed = speedForScore(s.cfg, s.score)
	s.field.Advance(dt.Seconds(), s.speed)

	if s.spawner.ShouldSpawnObstacle(now, s.speed) {
		s.field.AddObstacle(s.spawner.NewObstacle())
	}
	if s.spawner.ShouldSpawnDecoration(now, s.speed) {
		for i := 0; i < decorationsPerSpawn; i++ {
			s.field.AddDecoration(s.spawner.NewDecoration())
		}
	}

	res := resolveCollisions(s.player, s.field, now, s.invincibleUntil, s.cfg)
	if res.Hit {
		s.applyHit(res, now)
	}
	for _, h := range res.Scored {
		s.score += s.cfg.PointsPerObstacle
		s.emit(Event{Kind: EventObstacleScored, Tick: s.tick, Obstacle: h, Score: s.score})
		logginggameplay.ObstacleScored(context.Background(), s.publisher, s.tick, s.ref,
			logging.EntityRef{ID: handleID(h), Kind: logging.EntityKindObstacle},
			logginggameplay.ObstacleScoredPayload{Points: s.cfg.PointsPerObstacle, Score: s.score}, nil)
	}

	s.field.CullObstacles(s.cfg.ObstacleCullZ)
	s.field.CullDecorations(s.cfg.DecorationCullZ)

	return s.sessionState(), nil
}

// classifySample feeds the newest sample to the classifier, degrading a
// malformed frame to "no gesture this tick" rather than aborting the tick.
func (s *Session) classifySample(sample *gesture.PoseSample) gesture.Gesture {
	if sample == nil {
		return gesture.None
	}
	g, err := s.classifier.Classify(*sample)
	if err != nil {
		loggingvision.SampleRejected(context.Background(), s.publisher, s.tick, s.ref,
			loggingvision.SampleRejectedPayload{Reason: err.Error()}, nil)
		return gesture.None
	}
	if !s.wasCalibrated && s.classifier.Calibrated() {
		s.wasCalibrated = true
		loggingvision.CalibrationComplete(context.Background(), s.publisher, s.tick, s.ref,
			loggingvision.CalibrationCompletePayload{Baseline: s.classifier.Baseline(), Samples: s.classifier.CalibrationTarget()}, nil)
	}
	return g
}

func (s *Session) applyHit(res CollisionResult, now time.Time) {
	s.lives--
	if s.lives < 0 {
		s.lives = 0
	}
	s.invincibleUntil = res.InvincibleUntil
	s.emit(Event{Kind: EventPlayerHit, Tick: s.tick, Obstacle: res.HitObstacle, Lives: s.lives})
	logginggameplay.PlayerHit(context.Background(), s.publisher, s.tick, s.ref,
		logging.EntityRef{ID: handleID(res.HitObstacle), Kind: logging.EntityKindObstacle},
		logginggameplay.PlayerHitPayload{
			Lane:          s.player.Lane(),
			LivesLeft:     s.lives,
			InvincibleFor: int(s.cfg.InvincibilityDuration.Milliseconds()),
		}, nil)

	if s.lives == 0 {
		s.state = StateGameOver
		s.emit(Event{Kind: EventGameOver, Tick: s.tick, Score: s.score})
		logginggameplay.GameOver(context.Background(), s.publisher, s.tick, s.ref,
			logginggameplay.GameOverPayload{Score: s.score, ElapsedMillis: s.elapsed.Milliseconds()}, nil)
	}
}

func (s *Session) emit(event Event) {
	s.events = append(s.events, event)
}

// DrainEvents returns the presentation events accumulated since the last
// drain and clears the queue.
func (s *Session) DrainEvents() []Event {
	if len(s.events) == 0 {
		return nil
	}
	drained := make([]Event, len(s.events))
	copy(drained, s.events)
	s.events = s.events[:0]
	return drained
}

func (s *Session) rejectCommand(name string) error {
	logginglifecycle.CommandRejected(context.Background(), s.publisher, s.tick, s.ref,
		logginglifecycle.CommandRejectedPayload{Command: name, State: string(s.state)}, nil)
	return fmt.Errorf("%w: %s while %s", ErrInvalidCommand, name, s.state)
}

func (s *Session) sessionState() SessionState {
	state := SessionState{
		Tick:          s.tick,
		State:         s.state,
		Score:         s.score,
		Lives:         s.lives,
		Speed:         s.speed,
		ElapsedMillis: s.elapsed.Milliseconds(),
		GameOver:      s.state == StateGameOver,
	}
	if !s.invincibleUntil.IsZero() {
		state.InvincibleUntilMilli = s.invincibleUntil.UnixMilli()
	}
	return state
}

// Snapshot copies the session, player pose, and live entities for broadcast.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Session:     s.sessionState(),
		Player:      s.player.Pose(),
		Obstacles:   s.field.Obstacles(),
		Decorations: s.field.Decorations(),
	}
}

func handleID(h Handle) string {
	return fmt.Sprintf("%d.%d", h.Index, h.Gen)
}
