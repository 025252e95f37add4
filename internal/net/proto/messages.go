package proto

import (
	"encoding/json"
	"fmt"
	"time"

	"pose-runner/core/internal/gesture"
	"pose-runner/core/internal/runner"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1

	// Type identifiers for websocket payloads.
	typeJoin          = "join"
	typeState         = "state"
	typeCommandReject = "commandReject"
	typeHeartbeat     = "heartbeat"
)

// Client message type identifiers.
const (
	TypePose      = "pose"
	TypeStart     = "start"
	TypePause     = "pause"
	TypeResume    = "resume"
	TypeRestart   = "restart"
	TypeHeartbeat = "heartbeat"
)

// Exported aliases for outbound message type identifiers.
const (
	TypeJoin  = typeJoin
	TypeState = typeState
)

// Landmark is one normalized pose point on the wire.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ClientMessage captures an inbound websocket message from the client.
type ClientMessage struct {
	Ver        int        `json:"ver,omitempty"`
	Type       string     `json:"type"`
	Landmarks  []Landmark `json:"landmarks,omitempty"`
	CapturedAt int64      `json:"capturedAt,omitempty"`
	SentAt     int64      `json:"sentAt,omitempty"`
}

// DecodeClientMessage converts raw websocket payloads into a structured message.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	return msg, nil
}

// PoseSample converts a pose frame into the classifier's sample type. The
// second return is false for non-pose messages or frames with no landmarks.
// The sample is stamped with the host receive time; the client's capturedAt
// travels only as diagnostic metadata, since gesture cooldowns must never
// depend on a client clock.
func PoseSample(msg ClientMessage, receivedAtMilli int64) (gesture.PoseSample, bool) {
	if msg.Type != TypePose || len(msg.Landmarks) == 0 {
		return gesture.PoseSample{}, false
	}
	landmarks := make([]gesture.Landmark, len(msg.Landmarks))
	for i, lm := range msg.Landmarks {
		landmarks[i] = gesture.Landmark{X: lm.X, Y: lm.Y}
	}
	return gesture.PoseSample{
		Timestamp: time.UnixMilli(receivedAtMilli),
		Landmarks: landmarks,
	}, true
}

// SessionCommand maps a control message onto the session lifecycle verb it
// carries. The second return is false for pose frames, heartbeats, and
// unknown types.
func SessionCommand(msg ClientMessage) (string, bool) {
	switch msg.Type {
	case TypeStart, TypePause, TypeResume, TypeRestart:
		return msg.Type, true
	default:
		return "", false
	}
}

// JoinResponseV1 captures the version 1 join response layout.
type JoinResponseV1 struct {
	Ver      int            `json:"ver"`
	Type     string         `json:"type"`
	ID       string         `json:"id"`
	TickRate int            `json:"tickRate"`
	Config   runner.Config  `json:"config"`
	Gesture  gesture.Config `json:"gesture"`
}

// EncodeJoinResponseV1 renders a versioned join response payload.
func EncodeJoinResponseV1(msg JoinResponseV1) ([]byte, error) {
	msg.Ver = Version
	msg.Type = typeJoin
	return json.Marshal(msg)
}

// StateSnapshotV1 captures the version 1 websocket state payload layout.
type StateSnapshotV1 struct {
	Ver         int                 `json:"ver"`
	Type        string              `json:"type"`
	Session     runner.SessionState `json:"session"`
	Player      runner.PlayerPose   `json:"player"`
	Obstacles   []runner.Obstacle   `json:"obstacles,omitempty"`
	Decorations []runner.Decoration `json:"decorations,omitempty"`
	Events      []runner.Event      `json:"events,omitempty"`
	ServerTime  int64               `json:"serverTime"`
}

// EncodeStateSnapshotV1 renders a versioned snapshot payload.
func EncodeStateSnapshotV1(msg StateSnapshotV1) ([]byte, error) {
	msg.Ver = Version
	if msg.Type == "" {
		msg.Type = typeState
	}
	return json.Marshal(msg)
}

// CommandReject notifies the client that a control message was refused.
type CommandReject struct {
	Command string
	Reason  string
	Tick    uint64
}

// EncodeCommandReject renders a command rejection response.
func EncodeCommandReject(msg CommandReject) ([]byte, error) {
	frame := struct {
		Ver     int    `json:"ver"`
		Type    string `json:"type"`
		Command string `json:"command"`
		Reason  string `json:"reason"`
		Tick    uint64 `json:"tick,omitempty"`
	}{
		Ver:     Version,
		Type:    typeCommandReject,
		Command: msg.Command,
		Reason:  msg.Reason,
	}
	if msg.Tick > 0 {
		frame.Tick = msg.Tick
	}
	return json.Marshal(frame)
}

// Heartbeat echoes timing metadata back to the client.
type Heartbeat struct {
	ServerTime int64
	ClientTime int64
	RTTMillis  int64
}

// EncodeHeartbeat renders a heartbeat acknowledgement payload.
func EncodeHeartbeat(msg Heartbeat) ([]byte, error) {
	frame := struct {
		Ver        int    `json:"ver"`
		Type       string `json:"type"`
		ServerTime int64  `json:"serverTime"`
		ClientTime int64  `json:"clientTime"`
		RTTMillis  int64  `json:"rtt"`
	}{
		Ver:        Version,
		Type:       typeHeartbeat,
		ServerTime: msg.ServerTime,
		ClientTime: msg.ClientTime,
		RTTMillis:  msg.RTTMillis,
	}
	return json.Marshal(frame)
}
