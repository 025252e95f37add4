package runner

import "time"

// CollisionResult reports the outcome of one tick's collision and scoring
// pass.
type CollisionResult struct {
	// Hit is set when a collision landed outside the invincibility window.
	Hit bool
	// HitObstacle identifies the obstacle that landed the hit.
	HitObstacle Handle
	// InvincibleUntil carries the refreshed window when Hit is set.
	InvincibleUntil time.Time
	// Scored lists obstacles that crossed the scoring line this tick, each
	// exactly once for its lifetime.
	Scored []Handle
}

// resolveCollisions tests the player's pose against the obstacle field.
// An obstacle collides iff it shares the player's lane, sits inside the hit
// window, and the player has not jumped clear. Hits inside the invincibility
// window are silently ignored. Independently, every obstacle crossing the
// cull line is marked passed and queued for scoring, collided or not.
func resolveCollisions(player *Player, field *Field, now, invincibleUntil time.Time, cfg Config) CollisionResult {
	var res CollisionResult

	field.obstacles.each(func(ob *Obstacle) {
		if !res.Hit &&
			ob.Lane == player.Lane() &&
			player.Height() < cfg.JumpClearance &&
			ob.Z > -cfg.HitWindow && ob.Z < cfg.HitWindow &&
			now.After(invincibleUntil) {
			res.Hit = true
			res.HitObstacle = ob.Handle
			res.InvincibleUntil = now.Add(cfg.InvincibilityDuration)
		}

		if ob.Z > cfg.ObstacleCullZ && !ob.passed {
			ob.passed = true
			res.Scored = append(res.Scored, ob.Handle)
		}
	})

	return res
}
