package app

import (
	"encoding/json"
	"fmt"
	"os"

	"pose-runner/core/internal/gesture"
	"pose-runner/core/internal/runner"
)

// TuningDocument bundles every gameplay tunable in one file-loadable,
// schema-reflectable shape. Fields absent from an override file keep their
// defaults.
type TuningDocument struct {
	Runner  runner.Config  `json:"runner"`
	Gesture gesture.Config `json:"gesture"`
}

// DefaultTuning returns the stock tuning.
func DefaultTuning() TuningDocument {
	return TuningDocument{
		Runner:  runner.DefaultConfig(),
		Gesture: gesture.DefaultConfig(),
	}
}

// Validate checks both config sections.
func (d TuningDocument) Validate() error {
	if err := d.Runner.Validate(); err != nil {
		return fmt.Errorf("runner: %w", err)
	}
	if err := d.Gesture.Validate(); err != nil {
		return fmt.Errorf("gesture: %w", err)
	}
	return nil
}

// LoadTuning reads a tuning override file on top of the defaults. An empty
// path returns the defaults unchanged.
func LoadTuning(path string) (TuningDocument, error) {
	doc := DefaultTuning()
	if path == "" {
		return doc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("read tuning file: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decode tuning file %s: %w", path, err)
	}
	if err := doc.Validate(); err != nil {
		return doc, fmt.Errorf("tuning file %s: %w", path, err)
	}
	return doc, nil
}
