package runner

import "testing"

func TestFieldAdvanceScrollsTowardCamera(t *testing.T) {
	f := newField()
	h := f.AddObstacle(Obstacle{Lane: 0, Z: -80, Kind: ObstacleKindBarrier})
	d := f.AddDecoration(Decoration{X: 8, Z: -80, Kind: DecorationKindRock})

	f.Advance(0.1, 15)

	if ob := f.Obstacle(h); ob == nil || ob.Z != -78.5 {
		t.Fatalf("obstacle z after advance = %v, want -78.5", f.Obstacle(h))
	}
	decs := f.Decorations()
	if len(decs) != 1 || decs[0].Z != -78.5 {
		t.Fatalf("decoration z after advance = %+v, want -78.5", decs)
	}
	_ = d
}

func TestCullThresholdsDifferForDecorations(t *testing.T) {
	cfg := DefaultConfig()
	f := newField()
	obNear := f.AddObstacle(Obstacle{Lane: 0, Z: 4.9})
	obPast := f.AddObstacle(Obstacle{Lane: 1, Z: 5.1})
	f.AddDecoration(Decoration{X: 8, Z: 6})
	decPast := f.AddDecoration(Decoration{X: -8, Z: 20.5})

	removed := f.CullObstacles(cfg.ObstacleCullZ)
	if len(removed) != 1 || removed[0] != obPast {
		t.Fatalf("culled obstacles = %v, want only %v", removed, obPast)
	}
	if f.Obstacle(obNear) == nil {
		t.Fatal("obstacle inside the visible range was culled")
	}

	removedDecs := f.CullDecorations(cfg.DecorationCullZ)
	if len(removedDecs) != 1 || removedDecs[0] != decPast {
		t.Fatalf("culled decorations = %v, want only %v", removedDecs, decPast)
	}
	if f.DecorationCount() != 1 {
		t.Fatalf("decoration count = %d, want 1", f.DecorationCount())
	}
}

func TestArenaHandlesAreGenerationChecked(t *testing.T) {
	f := newField()
	first := f.AddObstacle(Obstacle{Lane: 0, Z: -10})

	if got := f.Obstacle(first); got == nil || got.Handle != first {
		t.Fatalf("live handle did not resolve: %v", got)
	}

	f.obstacles.release(first)
	if f.Obstacle(first) != nil {
		t.Fatal("released handle still resolves")
	}

	// The freed slot is reused with a bumped generation, so the stale
	// handle must stay dead.
	second := f.AddObstacle(Obstacle{Lane: 2, Z: -20})
	if second.Index != first.Index {
		t.Fatalf("expected slot reuse: first=%v second=%v", first, second)
	}
	if second.Gen == first.Gen {
		t.Fatal("slot reuse did not bump the generation")
	}
	if f.Obstacle(first) != nil {
		t.Fatal("stale handle resolves to the new entity")
	}
	if ob := f.Obstacle(second); ob == nil || ob.Lane != 2 {
		t.Fatalf("new handle resolves wrong: %v", ob)
	}
}

func TestFieldResetDropsEverything(t *testing.T) {
	f := newField()
	f.AddObstacle(Obstacle{Lane: 0, Z: -10})
	f.AddDecoration(Decoration{X: 8, Z: -10})

	f.Reset()

	if f.ObstacleCount() != 0 || f.DecorationCount() != 0 {
		t.Fatalf("counts after reset: %d obstacles, %d decorations",
			f.ObstacleCount(), f.DecorationCount())
	}
}
