package gesture

import "time"

// Landmark indices follow the MediaPipe pose topology, which is what the
// vision pipelines feeding this core emit. Implementations may send a richer
// set; only these five are read.
const (
	LandmarkNose          = 0
	LandmarkLeftShoulder  = 11
	LandmarkRightShoulder = 12
	LandmarkLeftHip       = 23
	LandmarkRightHip      = 24
)

// minLandmarkCount is the smallest landmark list that can carry every
// required index.
const minLandmarkCount = LandmarkRightHip + 1

// Landmark is a screen-normalized 2-D position, x and y in [0,1] with the
// origin at the top-left of the camera frame.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PoseSample is one camera frame worth of body landmarks. Timestamp is the
// host's monotonic receive time; client clocks are never trusted.
type PoseSample struct {
	Timestamp time.Time
	Landmarks []Landmark
}

// Gesture is the discrete outcome of classifying one pose sample.
type Gesture int

const (
	None Gesture = iota
	Left
	Right
	Jump
)

// MarshalJSON renders the gesture by name so hosts never parse enum ints.
func (g Gesture) MarshalJSON() ([]byte, error) {
	return []byte(`"` + g.String() + `"`), nil
}

func (g Gesture) String() string {
	switch g {
	case None:
		return "none"
	case Left:
		return "left"
	case Right:
		return "right"
	case Jump:
		return "jump"
	default:
		return "unknown"
	}
}
