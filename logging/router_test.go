package logging_test

import (
	"context"
	"testing"
	"time"

	"pose-runner/core/logging"
	"pose-runner/core/logging/sinks"
)

func newMemoryRouter(t *testing.T, cfg logging.Config) (*logging.Router, *sinks.MemorySink) {
	t.Helper()
	memory := sinks.NewMemorySink()
	router, err := logging.NewRouter(nil, cfg, []logging.NamedSink{{Name: "memory", Sink: memory}})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return router, memory
}

func closeRouter(t *testing.T, router *logging.Router) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := router.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRouterDeliversToSink(t *testing.T) {
	router, memory := newMemoryRouter(t, logging.DefaultConfig())

	router.Publish(context.Background(), logging.Event{
		Type:     "gameplay.player_hit",
		Tick:     12,
		Severity: logging.SeverityInfo,
		Actor:    logging.EntityRef{ID: "s1", Kind: logging.EntityKindSession},
	})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("delivered %d events, want 1", len(events))
	}
	if events[0].Type != "gameplay.player_hit" || events[0].Tick != 12 {
		t.Fatalf("unexpected event: %+v", events[0])
	}
	if events[0].Time.IsZero() {
		t.Fatalf("router did not stamp the event time")
	}
	if stats := router.Stats(); stats.EventsTotal != 1 || stats.DroppedTotal != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityWarn
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Type: "vision.sample_rejected", Severity: logging.SeverityInfo})
	router.Publish(context.Background(), logging.Event{Type: "lifecycle.command_rejected", Severity: logging.SeverityWarn})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("delivered %d events, want only the warning", len(events))
	}
	if events[0].Type != "lifecycle.command_rejected" {
		t.Fatalf("wrong event survived the filter: %+v", events[0])
	}
}

func TestRouterStampsConfiguredFields(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"service": "pose-runner"}
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Type: "lifecycle.session_started", Severity: logging.SeverityInfo})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("delivered %d events, want 1", len(events))
	}
	if events[0].Extra["service"] != "pose-runner" {
		t.Fatalf("configured field not stamped: %+v", events[0].Extra)
	}
}

func TestRouterIgnoresUntypedEvents(t *testing.T) {
	router, memory := newMemoryRouter(t, logging.DefaultConfig())
	router.Publish(context.Background(), logging.Event{Tick: 3})
	closeRouter(t, router)

	if events := memory.Events(); len(events) != 0 {
		t.Fatalf("untyped event was delivered: %+v", events)
	}
}

func TestWithFieldsScopesPublisher(t *testing.T) {
	var captured []logging.Event
	base := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		captured = append(captured, event)
	})

	scoped := logging.WithFields(base, map[string]any{"sessionId": "abc"})
	scoped.Publish(context.Background(), logging.Event{Type: "gameplay.gesture_detected"})
	scoped.Publish(context.Background(), logging.Event{
		Type:  "gameplay.obstacle_scored",
		Extra: map[string]any{"sessionId": "explicit"},
	})

	if len(captured) != 2 {
		t.Fatalf("captured %d events, want 2", len(captured))
	}
	if captured[0].Extra["sessionId"] != "abc" {
		t.Fatalf("scoped field missing: %+v", captured[0].Extra)
	}
	// An explicit value wins over the scoped one.
	if captured[1].Extra["sessionId"] != "explicit" {
		t.Fatalf("scoped field overwrote explicit value: %+v", captured[1].Extra)
	}
}
