package hub

import (
	"sync/atomic"
	"time"

	"pose-runner/core/internal/telemetry"
)

var _ telemetry.Metrics = (*Counters)(nil)

// Counters aggregates host-side counters across every session runtime. All
// fields are atomics so runtimes record without coordination.
type Counters struct {
	ticks              atomic.Uint64
	broadcasts         atomic.Uint64
	bytesSent          atomic.Uint64
	posesReceived      atomic.Uint64
	posesDropped       atomic.Uint64
	commandsAccepted   atomic.Uint64
	commandsRejected   atomic.Uint64
	sessionsCreated    atomic.Uint64
	sessionsClosed     atomic.Uint64
	tickDurationMillis atomic.Int64
}

// CountersSnapshot is the JSON shape served by the diagnostics endpoint.
type CountersSnapshot struct {
	Ticks              uint64 `json:"ticks"`
	Broadcasts         uint64 `json:"broadcasts"`
	BytesSent          uint64 `json:"bytesSent"`
	PosesReceived      uint64 `json:"posesReceived"`
	PosesDropped       uint64 `json:"posesDropped"`
	CommandsAccepted   uint64 `json:"commandsAccepted"`
	CommandsRejected   uint64 `json:"commandsRejected"`
	SessionsCreated    uint64 `json:"sessionsCreated"`
	SessionsClosed     uint64 `json:"sessionsClosed"`
	TickDurationMillis int64  `json:"tickDurationMillis"`
}

// NewCounters constructs a zeroed counter set.
func NewCounters() *Counters {
	return &Counters{}
}

// Counter keys accepted by Add and Store.
const (
	CounterTicks            = "hub.ticks"
	CounterBroadcasts       = "hub.broadcasts"
	CounterBytesSent        = "hub.bytes_sent"
	CounterPosesReceived    = "hub.poses_received"
	CounterPosesDropped     = "hub.poses_dropped"
	CounterCommandsAccepted = "hub.commands_accepted"
	CounterCommandsRejected = "hub.commands_rejected"
	CounterSessionsCreated  = "hub.sessions_created"
	CounterSessionsClosed   = "hub.sessions_closed"
)

// Add increments the named counter. Unknown keys are dropped.
func (c *Counters) Add(key string, delta uint64) {
	if c == nil {
		return
	}
	if field := c.field(key); field != nil {
		field.Add(delta)
	}
}

// Store overwrites the named counter. Unknown keys are dropped.
func (c *Counters) Store(key string, value uint64) {
	if c == nil {
		return
	}
	if field := c.field(key); field != nil {
		field.Store(value)
	}
}

func (c *Counters) field(key string) *atomic.Uint64 {
	switch key {
	case CounterTicks:
		return &c.ticks
	case CounterBroadcasts:
		return &c.broadcasts
	case CounterBytesSent:
		return &c.bytesSent
	case CounterPosesReceived:
		return &c.posesReceived
	case CounterPosesDropped:
		return &c.posesDropped
	case CounterCommandsAccepted:
		return &c.commandsAccepted
	case CounterCommandsRejected:
		return &c.commandsRejected
	case CounterSessionsCreated:
		return &c.sessionsCreated
	case CounterSessionsClosed:
		return &c.sessionsClosed
	default:
		return nil
	}
}

// RecordBroadcast tallies one outbound state frame.
func (c *Counters) RecordBroadcast(bytes int) {
	if c == nil {
		return
	}
	if bytes < 0 {
		bytes = 0
	}
	c.broadcasts.Add(1)
	c.bytesSent.Add(uint64(bytes))
}

// RecordTickDuration stores the wall-clock cost of the latest tick.
func (c *Counters) RecordTickDuration(duration time.Duration) {
	if c == nil {
		return
	}
	millis := duration.Milliseconds()
	if millis < 0 {
		millis = 0
	}
	c.tickDurationMillis.Store(millis)
}

// Snapshot copies every counter for the diagnostics endpoint.
func (c *Counters) Snapshot() CountersSnapshot {
	if c == nil {
		return CountersSnapshot{}
	}
	return CountersSnapshot{
		Ticks:              c.ticks.Load(),
		Broadcasts:         c.broadcasts.Load(),
		BytesSent:          c.bytesSent.Load(),
		PosesReceived:      c.posesReceived.Load(),
		PosesDropped:       c.posesDropped.Load(),
		CommandsAccepted:   c.commandsAccepted.Load(),
		CommandsRejected:   c.commandsRejected.Load(),
		SessionsCreated:    c.sessionsCreated.Load(),
		SessionsClosed:     c.sessionsClosed.Load(),
		TickDurationMillis: c.tickDurationMillis.Load(),
	}
}
