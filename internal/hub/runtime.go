package hub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"pose-runner/core/internal/gesture"
	"pose-runner/core/internal/net/proto"
	"pose-runner/core/internal/runner"
	"pose-runner/core/logging"
	logginglifecycle "pose-runner/core/logging/lifecycle"
)

const (
	writeWait         = 10 * time.Second
	commandBufferSize = 8
)

// ErrCommandBacklog signals that the runtime's command queue is full and the
// client should retry.
var ErrCommandBacklog = errors.New("hub: command backlog full")

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// SessionRuntime drives one session's fixed-rate tick loop on a dedicated
// goroutine. Pose frames and lifecycle commands arrive from the websocket
// read goroutine; the latest-pose slot and the command queue are the only
// crossing points, so the session itself stays single-threaded.
type SessionRuntime struct {
	id  string
	hub *Hub

	session  *runner.Session
	interval time.Duration

	latest   atomic.Pointer[gesture.PoseSample]
	commands chan string

	// lastState mirrors the session state for readers outside the tick
	// goroutine. The session itself is never touched off-loop.
	lastState atomic.Pointer[runner.SessionState]

	subMu sync.Mutex
	sub   *subscriber

	lastHeartbeat atomic.Int64
	lastRTT       atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// ID reports the session identifier issued at join time.
func (rt *SessionRuntime) ID() string { return rt.id }

// SessionState returns the state mirror published by the latest tick.
func (rt *SessionRuntime) SessionState() runner.SessionState {
	if state := rt.lastState.Load(); state != nil {
		return *state
	}
	return runner.SessionState{State: runner.StateIdle}
}

// SubmitPose stores the newest pose frame for the next tick. Only the most
// recent frame survives; an unconsumed predecessor counts as dropped.
func (rt *SessionRuntime) SubmitPose(sample gesture.PoseSample) {
	rt.touch(time.Now())
	if prev := rt.latest.Swap(&sample); prev != nil {
		rt.hub.counters.Add(CounterPosesDropped, 1)
	}
	rt.hub.counters.Add(CounterPosesReceived, 1)
}

// Command enqueues a lifecycle verb for the tick goroutine.
func (rt *SessionRuntime) Command(verb string) error {
	rt.touch(time.Now())
	select {
	case rt.commands <- verb:
		return nil
	default:
		rt.hub.counters.Add(CounterCommandsRejected, 1)
		return ErrCommandBacklog
	}
}

// Attach hands the runtime a websocket connection for state broadcasts,
// closing any previous one.
func (rt *SessionRuntime) Attach(conn *websocket.Conn) {
	rt.subMu.Lock()
	previous := rt.sub
	rt.sub = &subscriber{conn: conn}
	rt.subMu.Unlock()
	if previous != nil {
		previous.conn.Close()
	}
	rt.touch(time.Now())
}

// Send writes a frame to the attached connection, sharing the broadcast
// path's write lock and deadline. It fails when no connection is attached.
func (rt *SessionRuntime) Send(data []byte) error {
	sub := rt.subscriber()
	if sub == nil {
		return errors.New("hub: no connection attached")
	}
	if err := sub.write(data); err != nil {
		rt.detach(sub)
		return err
	}
	return nil
}

// Heartbeat records liveness and computes the round trip against the
// client-reported send time.
func (rt *SessionRuntime) Heartbeat(receivedAt time.Time, clientSent int64) time.Duration {
	rt.touch(receivedAt)
	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			rt.lastRTT.Store(rtt.Milliseconds())
		}
	}
	return time.Duration(rt.lastRTT.Load()) * time.Millisecond
}

func (rt *SessionRuntime) touch(now time.Time) {
	rt.lastHeartbeat.Store(now.UnixMilli())
}

// Close stops the tick loop and detaches the session from the hub. It is safe
// to call from any goroutine and more than once.
func (rt *SessionRuntime) Close() {
	rt.stopOnce.Do(func() { close(rt.stop) })
	<-rt.done
}

func (rt *SessionRuntime) run() {
	ticker := time.NewTicker(rt.interval)
	defer ticker.Stop()
	defer rt.finish()

	last := time.Now()
	for {
		select {
		case <-rt.stop:
			return
		case verb := <-rt.commands:
			rt.applyCommand(verb, time.Now())
		case now := <-ticker.C:
			rt.drainCommands(now)

			dt := now.Sub(last)
			last = now

			if rt.session.State() != runner.StateRunning {
				state := rt.session.Snapshot().Session
				rt.lastState.Store(&state)
				if !rt.broadcast(now) {
					return
				}
				continue
			}

			sample := rt.latest.Swap(nil)
			started := time.Now()
			state, err := rt.session.Tick(dt, now, sample)
			if err != nil {
				continue
			}
			rt.lastState.Store(&state)
			rt.hub.counters.Add(CounterTicks, 1)
			rt.hub.counters.RecordTickDuration(time.Since(started))

			if !rt.broadcast(now) {
				return
			}
		}
	}
}

func (rt *SessionRuntime) drainCommands(now time.Time) {
	for {
		select {
		case verb := <-rt.commands:
			rt.applyCommand(verb, now)
		default:
			return
		}
	}
}

// applyCommand maps a wire verb onto the session lifecycle. Invalid commands
// are answered with a reject frame rather than dropping the connection.
func (rt *SessionRuntime) applyCommand(verb string, now time.Time) {
	var err error
	switch verb {
	case proto.TypeStart:
		err = rt.session.Start(now)
	case proto.TypePause:
		err = rt.session.Pause(now)
	case proto.TypeResume:
		err = rt.session.Resume(now)
	case proto.TypeRestart:
		err = rt.session.Restart(now)
	default:
		rt.hub.logger.Printf("session %s: unknown command %q", rt.id, verb)
		return
	}
	if err != nil {
		rt.hub.counters.Add(CounterCommandsRejected, 1)
		rt.sendReject(verb, err)
		return
	}
	rt.hub.counters.Add(CounterCommandsAccepted, 1)
}

func (rt *SessionRuntime) sendReject(verb string, cause error) {
	sub := rt.subscriber()
	if sub == nil {
		return
	}
	data, err := proto.EncodeCommandReject(proto.CommandReject{
		Command: verb,
		Reason:  cause.Error(),
	})
	if err != nil {
		rt.hub.logger.Printf("session %s: marshal command reject: %v", rt.id, err)
		return
	}
	if err := sub.write(data); err != nil {
		rt.detach(sub)
	}
}

// broadcast ships the current snapshot to the subscriber, if any. It returns
// false once the connection is gone so the loop can wind the session down.
func (rt *SessionRuntime) broadcast(now time.Time) bool {
	sub := rt.subscriber()
	if sub == nil {
		return true
	}

	snapshot := rt.session.Snapshot()
	data, err := proto.EncodeStateSnapshotV1(proto.StateSnapshotV1{
		Session:     snapshot.Session,
		Player:      snapshot.Player,
		Obstacles:   snapshot.Obstacles,
		Decorations: snapshot.Decorations,
		Events:      rt.session.DrainEvents(),
		ServerTime:  now.UnixMilli(),
	})
	if err != nil {
		rt.hub.logger.Printf("session %s: marshal state: %v", rt.id, err)
		return true
	}

	if err := sub.write(data); err != nil {
		rt.hub.logger.Printf("session %s: broadcast failed: %v", rt.id, err)
		rt.detach(sub)
		return false
	}
	rt.hub.counters.RecordBroadcast(len(data))
	return true
}

func (rt *SessionRuntime) subscriber() *subscriber {
	rt.subMu.Lock()
	defer rt.subMu.Unlock()
	return rt.sub
}

func (rt *SessionRuntime) detach(sub *subscriber) {
	rt.subMu.Lock()
	if rt.sub == sub {
		rt.sub = nil
	}
	rt.subMu.Unlock()
	sub.conn.Close()
}

func (rt *SessionRuntime) finish() {
	rt.subMu.Lock()
	sub := rt.sub
	rt.sub = nil
	rt.subMu.Unlock()
	if sub != nil {
		sub.conn.Close()
	}

	rt.hub.remove(rt.id)
	rt.hub.counters.Add(CounterSessionsClosed, 1)
	logginglifecycle.SessionClosed(context.Background(), rt.hub.publisher, 0,
		logging.EntityRef{ID: rt.id, Kind: logging.EntityKindSession},
		logginglifecycle.SessionClosedPayload{Reason: "runtime stopped"}, nil)
	close(rt.done)
}
