package gameplay

import (
	"context"

	"pose-runner/core/logging"
)

const (
	// EventGestureDetected is emitted when the classifier resolves a sample into a gesture.
	EventGestureDetected logging.EventType = "gameplay.gesture_detected"
	// EventObstacleScored is emitted when an obstacle is passed safely and awards points.
	EventObstacleScored logging.EventType = "gameplay.obstacle_scored"
	// EventPlayerHit is emitted when a collision lands outside the invincibility window.
	EventPlayerHit logging.EventType = "gameplay.player_hit"
	// EventGameOver is emitted when the last life is lost and the session turns terminal.
	EventGameOver logging.EventType = "gameplay.game_over"
)

// GestureDetectedPayload captures the resolved gesture for a pose sample.
type GestureDetectedPayload struct {
	Gesture string `json:"gesture"`
}

// GestureDetected publishes a gesture resolution event.
func GestureDetected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload GestureDetectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGestureDetected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

// ObstacleScoredPayload captures the award for passing an obstacle.
type ObstacleScoredPayload struct {
	Points int `json:"points"`
	Score  int `json:"score"`
}

// ObstacleScored publishes a scoring event for a safely passed obstacle.
func ObstacleScored(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload ObstacleScoredPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventObstacleScored,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

// PlayerHitPayload captures the damage outcome of a collision.
type PlayerHitPayload struct {
	Lane          int `json:"lane"`
	LivesLeft     int `json:"livesLeft"`
	InvincibleFor int `json:"invincibleForMillis"`
}

// PlayerHit publishes a collision event that cost a life.
func PlayerHit(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload PlayerHitPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerHit,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

// GameOverPayload captures the final tallies for a terminal session.
type GameOverPayload struct {
	Score         int   `json:"score"`
	ElapsedMillis int64 `json:"elapsedMillis"`
}

// GameOver publishes the terminal event for a session.
func GameOver(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload GameOverPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGameOver,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}
