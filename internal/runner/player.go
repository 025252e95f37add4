package runner

import (
	"time"

	"pose-runner/core/internal/gesture"
)

// Player owns the runner's lane, jump timer, and derived height. The discrete
// lane index plus height is the authoritative position; sliding toward a
// lane's world offset is a presentation concern.
type Player struct {
	lane      int
	jumping   bool
	jumpStart time.Time
	height    float64

	jumpHeight   float64
	jumpDuration time.Duration
}

func newPlayer(cfg Config) *Player {
	return &Player{
		lane:         laneCount / 2,
		jumpHeight:   cfg.JumpHeight,
		jumpDuration: cfg.JumpDuration,
	}
}

// ApplyGesture turns a classified gesture into a lane change or jump start.
// Lane changes clamp at the track edges; a jump mid-air is ignored.
func (p *Player) ApplyGesture(g gesture.Gesture, now time.Time) {
	switch g {
	case gesture.Left:
		if p.lane > laneMin {
			p.lane--
		}
	case gesture.Right:
		if p.lane < laneMax {
			p.lane++
		}
	case gesture.Jump:
		if !p.jumping {
			p.jumping = true
			p.jumpStart = now
		}
	}
}

// Advance recomputes height along the jump arc for the current tick.
func (p *Player) Advance(now time.Time) {
	if !p.jumping {
		p.height = 0
		return
	}
	t := float64(now.Sub(p.jumpStart)) / float64(p.jumpDuration)
	if t >= 1 {
		p.jumping = false
		p.height = 0
		return
	}
	if t < 0 {
		t = 0
	}
	// Symmetric parabola peaking at t=0.5.
	p.height = p.jumpHeight * 4 * t * (1 - t)
}

// Reset returns the player to the center lane on the ground.
func (p *Player) Reset() {
	p.lane = laneCount / 2
	p.jumping = false
	p.jumpStart = time.Time{}
	p.height = 0
}

func (p *Player) Lane() int       { return p.lane }
func (p *Player) Height() float64 { return p.height }
func (p *Player) Jumping() bool   { return p.jumping }

// PlayerPose is the read-only snapshot exposed to the presentation layer.
type PlayerPose struct {
	Lane    int     `json:"lane"`
	Height  float64 `json:"height"`
	Jumping bool    `json:"jumping"`
}

func (p *Player) Pose() PlayerPose {
	return PlayerPose{Lane: p.lane, Height: p.height, Jumping: p.jumping}
}
