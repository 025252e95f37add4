package runner

// Entity kinds carried on snapshots so the renderer can pick meshes.
const (
	ObstacleKindBarrier = "barrier"
	ObstacleKindCrate   = "crate"

	DecorationKindRock  = "rock"
	DecorationKindShrub = "shrub"
	DecorationKindPost  = "post"
)

// Handle addresses an entity slot and stays unique for the entity's lifetime:
// reusing a slot bumps the generation, so stale handles never resolve.
type Handle struct {
	Index int    `json:"index"`
	Gen   uint32 `json:"gen"`
}

// Obstacle occupies a lane at world depth Z; negative Z is ahead of the
// player. passed flips false→true exactly once when the obstacle is scored.
type Obstacle struct {
	Handle Handle  `json:"id"`
	Lane   int     `json:"lane"`
	Z      float64 `json:"z"`
	Kind   string  `json:"kind"`

	passed bool
}

// Decoration is purely cosmetic and never participates in collision or
// scoring.
type Decoration struct {
	Handle   Handle  `json:"id"`
	X        float64 `json:"x"`
	Z        float64 `json:"z"`
	Kind     string  `json:"kind"`
	Rotation float64 `json:"rotation"`
}

type slot[T any] struct {
	gen   uint32
	live  bool
	value T
}

// arena is a slot store addressed by generation-checked handles. It is the
// single source of truth for live entities; there is no parallel id-to-
// presentation bookkeeping.
type arena[T any] struct {
	slots []slot[T]
	free  []int
	count int
}

func (a *arena[T]) alloc(value T) Handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.gen++
		s.live = true
		s.value = value
		a.count++
		return Handle{Index: idx, Gen: s.gen}
	}
	a.slots = append(a.slots, slot[T]{gen: 1, live: true, value: value})
	a.count++
	return Handle{Index: len(a.slots) - 1, Gen: 1}
}

func (a *arena[T]) get(h Handle) *T {
	if h.Index < 0 || h.Index >= len(a.slots) {
		return nil
	}
	s := &a.slots[h.Index]
	if !s.live || s.gen != h.Gen {
		return nil
	}
	return &s.value
}

func (a *arena[T]) release(h Handle) bool {
	if h.Index < 0 || h.Index >= len(a.slots) {
		return false
	}
	s := &a.slots[h.Index]
	if !s.live || s.gen != h.Gen {
		return false
	}
	s.live = false
	var zero T
	s.value = zero
	a.free = append(a.free, h.Index)
	a.count--
	return true
}

func (a *arena[T]) each(fn func(*T)) {
	for i := range a.slots {
		if a.slots[i].live {
			fn(&a.slots[i].value)
		}
	}
}

func (a *arena[T]) len() int { return a.count }

func (a *arena[T]) reset() {
	a.slots = a.slots[:0]
	a.free = a.free[:0]
	a.count = 0
}

// Field holds the live obstacle and decoration arenas and advances them
// toward the camera each tick.
type Field struct {
	obstacles   arena[Obstacle]
	decorations arena[Decoration]
}

func newField() *Field {
	return &Field{}
}

// AddObstacle allocates a slot and stamps the handle into the obstacle.
func (f *Field) AddObstacle(ob Obstacle) Handle {
	h := f.obstacles.alloc(ob)
	f.obstacles.get(h).Handle = h
	return h
}

// AddDecoration allocates a slot and stamps the handle into the decoration.
func (f *Field) AddDecoration(dec Decoration) Handle {
	h := f.decorations.alloc(dec)
	f.decorations.get(h).Handle = h
	return h
}

// Advance scrolls every live entity toward the camera by speed·dt along Z.
func (f *Field) Advance(dt, speed float64) {
	delta := speed * dt
	f.obstacles.each(func(ob *Obstacle) {
		ob.Z += delta
	})
	f.decorations.each(func(dec *Decoration) {
		dec.Z += delta
	})
}

// CullObstacles removes obstacles that have scrolled past the visibility
// threshold and returns their handles.
func (f *Field) CullObstacles(cullZ float64) []Handle {
	var removed []Handle
	f.obstacles.each(func(ob *Obstacle) {
		if ob.Z > cullZ {
			removed = append(removed, ob.Handle)
		}
	})
	for _, h := range removed {
		f.obstacles.release(h)
	}
	return removed
}

// CullDecorations removes decorations past their (further) threshold; they
// sit off-track and are allowed to linger longer than obstacles.
func (f *Field) CullDecorations(cullZ float64) []Handle {
	var removed []Handle
	f.decorations.each(func(dec *Decoration) {
		if dec.Z > cullZ {
			removed = append(removed, dec.Handle)
		}
	})
	for _, h := range removed {
		f.decorations.release(h)
	}
	return removed
}

// Obstacle resolves a handle, or nil if it has been culled or reused.
func (f *Field) Obstacle(h Handle) *Obstacle {
	return f.obstacles.get(h)
}

// ObstacleCount reports the number of live obstacles.
func (f *Field) ObstacleCount() int { return f.obstacles.len() }

// DecorationCount reports the number of live decorations.
func (f *Field) DecorationCount() int { return f.decorations.len() }

// Obstacles copies the live obstacles into a broadcast-friendly slice.
func (f *Field) Obstacles() []Obstacle {
	out := make([]Obstacle, 0, f.obstacles.len())
	f.obstacles.each(func(ob *Obstacle) {
		out = append(out, *ob)
	})
	return out
}

// Decorations copies the live decorations into a broadcast-friendly slice.
func (f *Field) Decorations() []Decoration {
	out := make([]Decoration, 0, f.decorations.len())
	f.decorations.each(func(dec *Decoration) {
		out = append(out, *dec)
	})
	return out
}

// Reset drops every live entity and recycles the arenas.
func (f *Field) Reset() {
	f.obstacles.reset()
	f.decorations.reset()
}
