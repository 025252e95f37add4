package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"pose-runner/core/internal/gesture"
	"pose-runner/core/internal/runner"
	"pose-runner/core/internal/telemetry"
	"pose-runner/core/logging"
)

// DefaultTickRate is the simulation frequency in ticks per second.
const DefaultTickRate = 60

// Options configures a hub. Zero-value fields fall back to defaults.
type Options struct {
	TickRate  int
	Runner    runner.Config
	Gesture   gesture.Config
	Publisher logging.Publisher
	Logger    telemetry.Logger
	Counters  *Counters
}

// Hub owns every live session runtime and hands out new ones at join time.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*SessionRuntime

	tickRate   int
	runnerCfg  runner.Config
	gestureCfg gesture.Config
	publisher  logging.Publisher
	logger     telemetry.Logger
	counters   *Counters
}

// NewHub constructs an empty hub.
func NewHub(opts Options) *Hub {
	if opts.TickRate <= 0 {
		opts.TickRate = DefaultTickRate
	}
	if opts.Publisher == nil {
		opts.Publisher = logging.NopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = telemetry.LoggerFunc(func(string, ...any) {})
	}
	if opts.Counters == nil {
		opts.Counters = NewCounters()
	}
	return &Hub{
		sessions:   make(map[string]*SessionRuntime),
		tickRate:   opts.TickRate,
		runnerCfg:  opts.Runner,
		gestureCfg: opts.Gesture,
		publisher:  opts.Publisher,
		logger:     opts.Logger,
		counters:   opts.Counters,
	}
}

// TickRate reports the simulation frequency sessions run at.
func (h *Hub) TickRate() int { return h.tickRate }

// RunnerConfig returns the tuning handed to new sessions.
func (h *Hub) RunnerConfig() runner.Config { return h.runnerCfg }

// GestureConfig returns the classifier tuning handed to new sessions.
func (h *Hub) GestureConfig() gesture.Config { return h.gestureCfg }

// CreateSession builds a fresh session, registers it, and starts its tick
// loop.
func (h *Hub) CreateSession() (*SessionRuntime, error) {
	id := uuid.NewString()
	session, err := runner.NewSession(id, h.runnerCfg, h.gestureCfg, h.publisher)
	if err != nil {
		return nil, err
	}

	rt := &SessionRuntime{
		id:       id,
		hub:      h,
		session:  session,
		interval: time.Second / time.Duration(h.tickRate),
		commands: make(chan string, commandBufferSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	rt.touch(time.Now())

	h.mu.Lock()
	h.sessions[id] = rt
	h.mu.Unlock()
	h.counters.Add(CounterSessionsCreated, 1)

	go rt.run()
	return rt, nil
}

// Session looks up a live runtime by identifier.
func (h *Hub) Session(id string) (*SessionRuntime, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rt, ok := h.sessions[id]
	return rt, ok
}

// SessionCount reports the number of live runtimes.
func (h *Hub) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

// Close stops every live runtime and blocks until their loops exit.
func (h *Hub) Close() {
	h.mu.Lock()
	runtimes := make([]*SessionRuntime, 0, len(h.sessions))
	for _, rt := range h.sessions {
		runtimes = append(runtimes, rt)
	}
	h.mu.Unlock()

	for _, rt := range runtimes {
		rt.Close()
	}
}

// SessionDiagnostics describes one live session for the diagnostics endpoint.
type SessionDiagnostics struct {
	ID            string `json:"id"`
	State         string `json:"state"`
	Score         int    `json:"score"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rtt"`
}

// Diagnostics is the payload served by the diagnostics endpoint.
type Diagnostics struct {
	Sessions []SessionDiagnostics `json:"sessions"`
	Counters CountersSnapshot     `json:"counters"`
}

// DiagnosticsSnapshot exposes per-session liveness plus the counter totals.
// Session fields come from the runtime's state mirror, which trails the tick
// loop by at most one frame.
func (h *Hub) DiagnosticsSnapshot() Diagnostics {
	h.mu.Lock()
	sessions := make([]SessionDiagnostics, 0, len(h.sessions))
	for _, rt := range h.sessions {
		state := rt.SessionState()
		sessions = append(sessions, SessionDiagnostics{
			ID:            rt.id,
			State:         string(state.State),
			Score:         state.Score,
			LastHeartbeat: rt.lastHeartbeat.Load(),
			RTTMillis:     rt.lastRTT.Load(),
		})
	}
	h.mu.Unlock()

	return Diagnostics{
		Sessions: sessions,
		Counters: h.counters.Snapshot(),
	}
}
