package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"pose-runner/core/internal/gesture"
	"pose-runner/core/internal/hub"
	"pose-runner/core/internal/net/proto"
	"pose-runner/core/internal/runner"
)

func newTestServer(t *testing.T) (*hub.Hub, *httptest.Server) {
	t.Helper()
	h := hub.NewHub(hub.Options{
		TickRate: 100,
		Runner:   runner.DefaultConfig(),
		Gesture:  gesture.DefaultConfig(),
	})
	t.Cleanup(h.Close)

	handler := NewHandler(h, nil)
	srv := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(srv.Close)
	return h, srv
}

func dialTestServer(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var frame map[string]any
	if err := json.Unmarshal(payload, &frame); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return frame
}

// readUntil pumps frames until the predicate matches or the frame limit runs
// out. Broadcasts stream continuously, so tests scan rather than assume the
// next frame is the interesting one.
func readUntil(t *testing.T, conn *websocket.Conn, match func(map[string]any) bool) map[string]any {
	t.Helper()
	for i := 0; i < 200; i++ {
		frame := readFrame(t, conn)
		if match(frame) {
			return frame
		}
	}
	t.Fatalf("no matching frame within 200 reads")
	return nil
}

func TestHandleSendsJoinResponseFirst(t *testing.T) {
	h, srv := newTestServer(t)
	conn := dialTestServer(t, srv)

	frame := readFrame(t, conn)
	if frame["type"] != proto.TypeJoin {
		t.Fatalf("first frame type = %v, want %q", frame["type"], proto.TypeJoin)
	}
	id, ok := frame["id"].(string)
	if !ok || id == "" {
		t.Fatalf("join frame missing session id: %v", frame)
	}
	if tickRate, ok := frame["tickRate"].(float64); !ok || int(tickRate) != h.TickRate() {
		t.Fatalf("join tickRate = %v, want %d", frame["tickRate"], h.TickRate())
	}
	if _, ok := h.Session(id); !ok {
		t.Fatalf("session %q not registered with hub", id)
	}
}

func TestStartCommandBeginsBroadcasts(t *testing.T) {
	_, srv := newTestServer(t)
	conn := dialTestServer(t, srv)
	readFrame(t, conn)

	if err := conn.WriteJSON(map[string]any{"type": "start"}); err != nil {
		t.Fatalf("send start: %v", err)
	}

	frame := readUntil(t, conn, func(frame map[string]any) bool {
		if frame["type"] != proto.TypeState {
			return false
		}
		session, ok := frame["session"].(map[string]any)
		return ok && session["state"] == string(runner.StateRunning)
	})
	session := frame["session"].(map[string]any)
	if lives, ok := session["lives"].(float64); !ok || int(lives) != runner.DefaultConfig().Lives {
		t.Fatalf("state frame lives = %v, want %d", session["lives"], runner.DefaultConfig().Lives)
	}
}

func TestOutOfStateCommandGetsReject(t *testing.T) {
	_, srv := newTestServer(t)
	conn := dialTestServer(t, srv)
	readFrame(t, conn)

	if err := conn.WriteJSON(map[string]any{"type": "pause"}); err != nil {
		t.Fatalf("send pause: %v", err)
	}

	frame := readUntil(t, conn, func(frame map[string]any) bool {
		return frame["type"] == "commandReject"
	})
	if frame["command"] != "pause" {
		t.Fatalf("reject command = %v, want pause", frame["command"])
	}
	reason, ok := frame["reason"].(string)
	if !ok || reason == "" {
		t.Fatalf("reject frame missing reason: %v", frame)
	}
}

func TestHeartbeatEchoesClientTime(t *testing.T) {
	_, srv := newTestServer(t)
	conn := dialTestServer(t, srv)
	readFrame(t, conn)

	sentAt := time.Now().UnixMilli()
	if err := conn.WriteJSON(map[string]any{"type": "heartbeat", "sentAt": sentAt}); err != nil {
		t.Fatalf("send heartbeat: %v", err)
	}

	frame := readUntil(t, conn, func(frame map[string]any) bool {
		return frame["type"] == "heartbeat"
	})
	if clientTime, ok := frame["clientTime"].(float64); !ok || int64(clientTime) != sentAt {
		t.Fatalf("heartbeat clientTime = %v, want %d", frame["clientTime"], sentAt)
	}
	if _, ok := frame["serverTime"].(float64); !ok {
		t.Fatalf("heartbeat missing serverTime: %v", frame)
	}
}

func TestMalformedMessageKeepsConnectionAlive(t *testing.T) {
	_, srv := newTestServer(t)
	conn := dialTestServer(t, srv)
	readFrame(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":`)); err != nil {
		t.Fatalf("send malformed: %v", err)
	}
	if err := conn.WriteJSON(map[string]any{"type": "heartbeat", "sentAt": time.Now().UnixMilli()}); err != nil {
		t.Fatalf("send heartbeat: %v", err)
	}

	readUntil(t, conn, func(frame map[string]any) bool {
		return frame["type"] == "heartbeat"
	})
}

func TestDisconnectTearsDownSession(t *testing.T) {
	h, srv := newTestServer(t)
	conn := dialTestServer(t, srv)
	readFrame(t, conn)

	if h.SessionCount() != 1 {
		t.Fatalf("session count = %d, want 1", h.SessionCount())
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.SessionCount() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session still registered after disconnect")
}
