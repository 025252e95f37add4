package runner

import "pose-runner/core/internal/gesture"

// EventKind enumerates the discrete feedback events a host may use to
// trigger audio or visual cues. The core performs no drawing or audio.
type EventKind string

const (
	EventGestureDetected EventKind = "gesture_detected"
	EventObstacleScored  EventKind = "obstacle_scored"
	EventPlayerHit       EventKind = "player_hit"
	EventGameOver        EventKind = "game_over"
)

// Event is one discrete presentation event. Fields beyond Kind are populated
// per kind and omitted otherwise.
type Event struct {
	Kind     EventKind       `json:"kind"`
	Tick     uint64          `json:"tick"`
	Gesture  gesture.Gesture `json:"gesture,omitempty"`
	Obstacle Handle          `json:"obstacle,omitempty"`
	Score    int             `json:"score,omitempty"`
	Lives    int             `json:"lives,omitempty"`
}
