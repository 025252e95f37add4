package ws

import (
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	"pose-runner/core/internal/hub"
	"pose-runner/core/internal/net/proto"
	"pose-runner/core/internal/telemetry"
)

// Handler upgrades websocket requests and pumps inbound frames into a
// session runtime.
type Handler struct {
	hub      *hub.Hub
	logger   telemetry.Logger
	upgrader websocket.Upgrader
}

// NewHandler constructs a websocket handler bound to the given hub.
func NewHandler(h *hub.Hub, logger telemetry.Logger) *Handler {
	if logger == nil {
		logger = telemetry.LoggerFunc(func(string, ...any) {})
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}
	return &Handler{hub: h, logger: logger, upgrader: upgrader}
}

// Handle serves one websocket session: it creates a runtime, sends the join
// response, then relays pose frames and lifecycle commands until the
// connection drops.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed: %v", err)
		return
	}

	rt, err := h.hub.CreateSession()
	if err != nil {
		h.logger.Printf("session create failed: %v", err)
		message := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "session unavailable")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}
	rt.Attach(conn)

	join, err := proto.EncodeJoinResponseV1(proto.JoinResponseV1{
		ID:       rt.ID(),
		TickRate: h.hub.TickRate(),
		Config:   h.hub.RunnerConfig(),
		Gesture:  h.hub.GestureConfig(),
	})
	if err != nil {
		h.logger.Printf("marshal join for %s: %v", rt.ID(), err)
		rt.Close()
		return
	}
	if err := rt.Send(join); err != nil {
		rt.Close()
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			rt.Close()
			return
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			h.logger.Printf("discarding malformed message from %s: %v", rt.ID(), err)
			continue
		}

		switch msg.Type {
		case proto.TypePose:
			sample, ok := proto.PoseSample(msg, time.Now().UnixMilli())
			if !ok {
				continue
			}
			rt.SubmitPose(sample)
		case proto.TypeStart, proto.TypePause, proto.TypeResume, proto.TypeRestart:
			verb, _ := proto.SessionCommand(msg)
			if err := rt.Command(verb); err != nil {
				reject, encodeErr := proto.EncodeCommandReject(proto.CommandReject{
					Command: verb,
					Reason:  err.Error(),
				})
				if encodeErr != nil {
					h.logger.Printf("marshal command reject for %s: %v", rt.ID(), encodeErr)
					continue
				}
				if err := rt.Send(reject); err != nil {
					rt.Close()
					return
				}
			}
		case proto.TypeHeartbeat:
			now := time.Now()
			rtt := rt.Heartbeat(now, msg.SentAt)
			ack, err := proto.EncodeHeartbeat(proto.Heartbeat{
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			})
			if err != nil {
				h.logger.Printf("marshal heartbeat ack for %s: %v", rt.ID(), err)
				continue
			}
			if err := rt.Send(ack); err != nil {
				rt.Close()
				return
			}
		default:
			h.logger.Printf("unknown message type %q from %s", msg.Type, rt.ID())
		}
	}
}
