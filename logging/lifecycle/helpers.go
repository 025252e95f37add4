package lifecycle

import (
	"context"

	"pose-runner/core/logging"
)

const (
	// EventSessionStarted is emitted when a session begins ticking.
	EventSessionStarted logging.EventType = "lifecycle.session_started"
	// EventSessionRestarted is emitted when a session is reset to a fresh run.
	EventSessionRestarted logging.EventType = "lifecycle.session_restarted"
	// EventSessionClosed is emitted when the host tears a session down.
	EventSessionClosed logging.EventType = "lifecycle.session_closed"
	// EventCommandRejected is emitted when a host command is invalid for the current state.
	EventCommandRejected logging.EventType = "lifecycle.command_rejected"
)

// SessionStartedPayload captures the tuning snapshot a run begins with.
type SessionStartedPayload struct {
	Seed       string  `json:"seed"`
	StartSpeed float64 `json:"startSpeed"`
	Lives      int     `json:"lives"`
}

// SessionStarted publishes a session start event.
func SessionStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SessionStartedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSessionStarted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}

// SessionRestartedPayload captures the state the previous run ended in.
type SessionRestartedPayload struct {
	PreviousScore int    `json:"previousScore"`
	PreviousState string `json:"previousState"`
}

// SessionRestarted publishes a session restart event.
func SessionRestarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SessionRestartedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSessionRestarted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}

// SessionClosedPayload captures why a session went away.
type SessionClosedPayload struct {
	Reason string `json:"reason"`
}

// SessionClosed publishes a session teardown event.
func SessionClosed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SessionClosedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSessionClosed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}

// CommandRejectedPayload captures an out-of-state host command.
type CommandRejectedPayload struct {
	Command string `json:"command"`
	State   string `json:"state"`
}

// CommandRejected publishes a misuse signal for the host to log.
func CommandRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CommandRejectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCommandRejected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}
