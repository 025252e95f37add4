package vision

import (
	"context"

	"pose-runner/core/logging"
)

const (
	// EventSampleRejected is emitted when a pose sample is missing required landmarks.
	EventSampleRejected logging.EventType = "vision.sample_rejected"
	// EventCalibrationComplete is emitted once the classifier's warm-up buffer fills.
	EventCalibrationComplete logging.EventType = "vision.calibration_complete"
)

// SampleRejectedPayload captures why a pose sample was discarded.
type SampleRejectedPayload struct {
	Reason string `json:"reason"`
}

// SampleRejected publishes a rejected-sample event. The sample is dropped and
// the tick proceeds gestureless.
func SampleRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SampleRejectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSampleRejected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryVision,
		Payload:  payload,
		Extra:    extra,
	})
}

// CalibrationCompletePayload captures the settled baseline.
type CalibrationCompletePayload struct {
	Baseline float64 `json:"baseline"`
	Samples  int     `json:"samples"`
}

// CalibrationComplete publishes the end of the classifier warm-up phase.
func CalibrationComplete(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CalibrationCompletePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCalibrationComplete,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryVision,
		Payload:  payload,
		Extra:    extra,
	})
}
