package gesture

import (
	"errors"
	"math"
	"time"
)

// ErrInvalidInput marks a pose sample missing required landmarks. Classifier
// state is untouched when it is returned.
var ErrInvalidInput = errors.New("gesture: invalid pose sample")

// Classifier turns a stream of timestamped pose samples into at most one
// discrete gesture per sample. It owns its calibration and cooldown state
// explicitly so sessions and tests never leak posture into one another.
// Not safe for concurrent use; the session invokes it once per tick.
type Classifier struct {
	cfg Config

	samples  []float64
	baseline float64

	lastJump       time.Time
	lastLaneChange time.Time
}

// NewClassifier validates the config and returns a fresh, uncalibrated
// classifier.
func NewClassifier(cfg Config) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{
		cfg:     cfg,
		samples: make([]float64, 0, cfg.CalibrationSamples),
	}, nil
}

// Reset clears the calibration buffer, baseline, and cooldowns. Must run at
// session (re)start so a previous player's posture does not bias a new game.
func (c *Classifier) Reset() {
	c.samples = c.samples[:0]
	c.baseline = 0
	c.lastJump = time.Time{}
	c.lastLaneChange = time.Time{}
}

// Calibrated reports whether the warm-up buffer has filled.
func (c *Classifier) Calibrated() bool {
	return len(c.samples) >= c.cfg.CalibrationSamples
}

// CalibrationTarget reports the configured warm-up length.
func (c *Classifier) CalibrationTarget() int {
	return c.cfg.CalibrationSamples
}

// Baseline exposes the rolling standing torso-Y estimate for diagnostics.
func (c *Classifier) Baseline() float64 {
	return c.baseline
}

// Classify consumes one sample and returns the gesture it resolves to.
// During the fixed warm-up phase every sample feeds the baseline and the
// result is None. Jump outranks lean within a single sample.
func (c *Classifier) Classify(sample PoseSample) (Gesture, error) {
	torsoY, noseX, err := extractSignals(sample)
	if err != nil {
		return None, err
	}

	if !c.Calibrated() {
		c.samples = append(c.samples, torsoY)
		c.baseline = mean(c.samples)
		return None, nil
	}

	// Slow posture drift is absorbed; a jump's displacement is not.
	if math.Abs(torsoY-c.baseline) < c.cfg.BaselineDriftWindow {
		c.baseline += c.cfg.BaselineDriftRate * (torsoY - c.baseline)
	}

	now := sample.Timestamp

	// Lower Y is higher in the image, so a positive diff means the body
	// moved up.
	jumpDiff := c.baseline - torsoY
	if jumpDiff > c.cfg.JumpThresholdY &&
		now.Sub(c.lastJump) > c.cfg.JumpCooldown &&
		now.Sub(c.lastLaneChange) > c.cfg.LaneChangeCooldown {
		c.lastJump = now
		return Jump, nil
	}

	if now.Sub(c.lastLaneChange) < c.cfg.LaneChangeCooldown {
		return None, nil
	}

	if noseX > c.cfg.LeanLeftThreshold {
		c.lastLaneChange = now
		return Left, nil
	}
	if noseX < c.cfg.LeanRightThreshold {
		c.lastLaneChange = now
		return Right, nil
	}

	return None, nil
}

// extractSignals pulls torso-Y and nose-X out of a sample, rejecting frames
// that cannot carry the required landmarks.
func extractSignals(sample PoseSample) (torsoY, noseX float64, err error) {
	if len(sample.Landmarks) < minLandmarkCount {
		return 0, 0, ErrInvalidInput
	}

	nose := sample.Landmarks[LandmarkNose]
	leftShoulder := sample.Landmarks[LandmarkLeftShoulder]
	rightShoulder := sample.Landmarks[LandmarkRightShoulder]
	leftHip := sample.Landmarks[LandmarkLeftHip]
	rightHip := sample.Landmarks[LandmarkRightHip]

	torsoY = (leftShoulder.Y + rightShoulder.Y + leftHip.Y + rightHip.Y) / 4
	noseX = nose.X

	if math.IsNaN(torsoY) || math.IsInf(torsoY, 0) || math.IsNaN(noseX) || math.IsInf(noseX, 0) {
		return 0, 0, ErrInvalidInput
	}
	return torsoY, noseX, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
