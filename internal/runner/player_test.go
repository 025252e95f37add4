package runner

import (
	"math"
	"testing"
	"time"

	"pose-runner/core/internal/gesture"
)

func TestLaneChangesClampAtTrackEdges(t *testing.T) {
	p := newPlayer(DefaultConfig())
	now := time.UnixMilli(0)

	if p.Lane() != 1 {
		t.Fatalf("start lane = %d, want center lane 1", p.Lane())
	}

	for i := 0; i < 5; i++ {
		p.ApplyGesture(gesture.Left, now)
	}
	if p.Lane() != laneMin {
		t.Fatalf("after repeated Left, lane = %d, want %d", p.Lane(), laneMin)
	}

	for i := 0; i < 5; i++ {
		p.ApplyGesture(gesture.Right, now)
	}
	if p.Lane() != laneMax {
		t.Fatalf("after repeated Right, lane = %d, want %d", p.Lane(), laneMax)
	}
}

func TestJumpArcIsSymmetricParabola(t *testing.T) {
	cfg := DefaultConfig()
	p := newPlayer(cfg)
	start := time.UnixMilli(0)

	p.ApplyGesture(gesture.Jump, start)
	if !p.Jumping() {
		t.Fatal("jump gesture should start a jump")
	}

	p.Advance(start)
	if p.Height() != 0 {
		t.Fatalf("height at t=0 is %f, want 0", p.Height())
	}

	mid := start.Add(cfg.JumpDuration / 2)
	p.Advance(mid)
	if math.Abs(p.Height()-cfg.JumpHeight) > 1e-9 {
		t.Fatalf("height at midpoint = %f, want %f", p.Height(), cfg.JumpHeight)
	}

	quarter := start.Add(cfg.JumpDuration / 4)
	p.Advance(quarter)
	want := cfg.JumpHeight * 4 * 0.25 * 0.75
	if math.Abs(p.Height()-want) > 1e-9 {
		t.Fatalf("height at quarter = %f, want %f", p.Height(), want)
	}

	end := start.Add(cfg.JumpDuration)
	p.Advance(end)
	if p.Height() != 0 || p.Jumping() {
		t.Fatalf("at t=1 height=%f jumping=%v, want grounded", p.Height(), p.Jumping())
	}
}

func TestDoubleJumpIgnored(t *testing.T) {
	cfg := DefaultConfig()
	p := newPlayer(cfg)
	start := time.UnixMilli(0)

	p.ApplyGesture(gesture.Jump, start)

	// A second jump mid-air must not restart the arc.
	mid := start.Add(cfg.JumpDuration / 2)
	p.ApplyGesture(gesture.Jump, mid)
	if p.jumpStart != start {
		t.Fatal("mid-air jump restarted the arc")
	}

	// After landing, jumping again works.
	end := start.Add(cfg.JumpDuration)
	p.Advance(end)
	p.ApplyGesture(gesture.Jump, end)
	if !p.Jumping() || p.jumpStart != end {
		t.Fatal("jump after landing should start a fresh arc")
	}
}

func TestPlayerResetReturnsToCenterGround(t *testing.T) {
	p := newPlayer(DefaultConfig())
	now := time.UnixMilli(0)
	p.ApplyGesture(gesture.Right, now)
	p.ApplyGesture(gesture.Jump, now)
	p.Advance(now.Add(100 * time.Millisecond))

	p.Reset()

	if p.Lane() != 1 || p.Height() != 0 || p.Jumping() {
		t.Fatalf("after reset: lane=%d height=%f jumping=%v", p.Lane(), p.Height(), p.Jumping())
	}
}
