package proto

import (
	"encoding/json"
	"testing"

	"pose-runner/core/internal/gesture"
	"pose-runner/core/internal/runner"
)

func TestDecodeClientMessage(t *testing.T) {
	t.Run("defaults missing version", func(t *testing.T) {
		msg, err := DecodeClientMessage([]byte(`{"type":"start"}`))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Ver != Version {
			t.Fatalf("expected version %d, got %d", Version, msg.Ver)
		}
	})

	t.Run("rejects unknown version", func(t *testing.T) {
		if _, err := DecodeClientMessage([]byte(`{"ver":99,"type":"start"}`)); err == nil {
			t.Fatalf("expected version mismatch to be rejected")
		}
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		if _, err := DecodeClientMessage([]byte(`{"type":`)); err == nil {
			t.Fatalf("expected truncated payload to be rejected")
		}
	})

	t.Run("pose frame round trip", func(t *testing.T) {
		msg, err := DecodeClientMessage([]byte(`{"type":"pose","capturedAt":1200,"landmarks":[{"x":0.5,"y":0.35}]}`))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Type != TypePose {
			t.Fatalf("expected pose type, got %q", msg.Type)
		}
		if len(msg.Landmarks) != 1 || msg.Landmarks[0].X != 0.5 {
			t.Fatalf("unexpected landmarks: %+v", msg.Landmarks)
		}
	})
}

func TestPoseSample(t *testing.T) {
	t.Run("converts pose frame", func(t *testing.T) {
		sample, ok := PoseSample(ClientMessage{
			Type:       TypePose,
			CapturedAt: 5000,
			Landmarks:  []Landmark{{X: 0.5, Y: 0.35}, {X: 0.4, Y: 0.6}},
		}, 9000)
		if !ok {
			t.Fatalf("expected pose frame to convert")
		}
		if got := sample.Timestamp.UnixMilli(); got != 9000 {
			t.Fatalf("expected receive time 9000, got %d", got)
		}
		if len(sample.Landmarks) != 2 {
			t.Fatalf("expected two landmarks, got %d", len(sample.Landmarks))
		}
		if sample.Landmarks[1] != (gesture.Landmark{X: 0.4, Y: 0.6}) {
			t.Fatalf("unexpected landmark: %+v", sample.Landmarks[1])
		}
	})

	t.Run("rejects empty frame", func(t *testing.T) {
		if _, ok := PoseSample(ClientMessage{Type: TypePose}, 9000); ok {
			t.Fatalf("expected empty landmark list to be rejected")
		}
	})

	t.Run("rejects non pose messages", func(t *testing.T) {
		if _, ok := PoseSample(ClientMessage{Type: TypeStart}, 9000); ok {
			t.Fatalf("expected control message to be rejected")
		}
	})
}

func TestSessionCommand(t *testing.T) {
	for _, verb := range []string{TypeStart, TypePause, TypeResume, TypeRestart} {
		cmd, ok := SessionCommand(ClientMessage{Type: verb})
		if !ok || cmd != verb {
			t.Fatalf("expected %q to map to itself, got %q, %v", verb, cmd, ok)
		}
	}
	if _, ok := SessionCommand(ClientMessage{Type: TypePose}); ok {
		t.Fatalf("expected pose frame to be ignored")
	}
	if _, ok := SessionCommand(ClientMessage{Type: TypeHeartbeat}); ok {
		t.Fatalf("expected heartbeat to be ignored")
	}
}

func TestEncodeStateSnapshotV1SetsVersionAndType(t *testing.T) {
	snapshot := StateSnapshotV1{
		Session: runner.SessionState{
			Tick:  42,
			State: runner.StateRunning,
			Score: 120,
			Lives: 2,
			Speed: 17.4,
		},
		Player: runner.PlayerPose{Lane: 2, Height: 1.5, Jumping: true},
		Obstacles: []runner.Obstacle{{
			Handle: runner.Handle{Index: 0, Gen: 1},
			Lane:   1,
			Z:      -12,
			Kind:   runner.ObstacleKindBarrier,
		}},
		Events: []runner.Event{{
			Kind:  runner.EventObstacleScored,
			Tick:  42,
			Score: 120,
		}},
		ServerTime: 1234,
	}

	encoded, err := EncodeStateSnapshotV1(snapshot)
	if err != nil {
		t.Fatalf("encode state snapshot v1: %v", err)
	}
	if snapshot.Ver != 0 {
		t.Fatalf("expected encode to operate on a copy, got version %d", snapshot.Ver)
	}

	var decoded struct {
		Ver     int    `json:"ver"`
		Type    string `json:"type"`
		Session struct {
			Tick  uint64 `json:"t"`
			Score int    `json:"score"`
		} `json:"session"`
		ServerTime int64 `json:"serverTime"`
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal encoded snapshot: %v", err)
	}
	if decoded.Ver != Version {
		t.Fatalf("expected version %d, got %d", Version, decoded.Ver)
	}
	if decoded.Type != TypeState {
		t.Fatalf("expected type %q, got %q", TypeState, decoded.Type)
	}
	if decoded.Session.Tick != 42 || decoded.Session.Score != 120 {
		t.Fatalf("unexpected session payload: %+v", decoded.Session)
	}
	if decoded.ServerTime != 1234 {
		t.Fatalf("expected server time 1234, got %d", decoded.ServerTime)
	}
}

func TestEncodeJoinResponseV1SetsVersionAndType(t *testing.T) {
	encoded, err := EncodeJoinResponseV1(JoinResponseV1{
		ID:       "session-1",
		TickRate: 60,
		Config:   runner.DefaultConfig(),
		Gesture:  gesture.DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("encode join response v1: %v", err)
	}

	var decoded struct {
		Ver      int    `json:"ver"`
		Type     string `json:"type"`
		ID       string `json:"id"`
		TickRate int    `json:"tickRate"`
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal join response: %v", err)
	}
	if decoded.Ver != Version {
		t.Fatalf("expected version %d, got %d", Version, decoded.Ver)
	}
	if decoded.Type != TypeJoin {
		t.Fatalf("expected type %q, got %q", TypeJoin, decoded.Type)
	}
	if decoded.ID != "session-1" || decoded.TickRate != 60 {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestEncodeCommandReject(t *testing.T) {
	encoded, err := EncodeCommandReject(CommandReject{
		Command: "pause",
		Reason:  "pause while idle",
		Tick:    7,
	})
	if err != nil {
		t.Fatalf("encode command reject: %v", err)
	}

	var decoded struct {
		Ver     int    `json:"ver"`
		Type    string `json:"type"`
		Command string `json:"command"`
		Reason  string `json:"reason"`
		Tick    uint64 `json:"tick"`
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal command reject: %v", err)
	}
	if decoded.Ver != Version || decoded.Type != "commandReject" {
		t.Fatalf("unexpected frame header: %+v", decoded)
	}
	if decoded.Command != "pause" || decoded.Reason != "pause while idle" || decoded.Tick != 7 {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}
