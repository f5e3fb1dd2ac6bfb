// Package codex defines the single persisted document that holds all pipeline
// state for one run, and the store that owns every write to it.
package codex

import (
	"encoding/json"
	"fmt"
	"time"
)

// SchemaVersion is the document version this build reads and writes.
const SchemaVersion = 1

// Metadata identifies a run. Immutable after creation except SchemaVersion,
// which only changes on migration.
type Metadata struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	SchemaVersion int       `json:"schema_version"`
}

// StepStatus enumerates step log outcomes.
type StepStatus string

const (
	StepStatusCompleted StepStatus = "completed"
)

// StepRecord is one append-only completion entry. Entries are never deleted,
// so the log keeps full run history even though only the latest payload per
// step is retained.
type StepRecord struct {
	Phase       string     `json:"phase"`
	Step        string     `json:"step"`
	Status      StepStatus `json:"status"`
	CompletedAt time.Time  `json:"completed_at"`
	DurationSec float64    `json:"duration_sec,omitempty"`
}

// Codex is the single persisted aggregate.
type Codex struct {
	Metadata Metadata     `json:"metadata"`
	Outputs  PhaseOutputs `json:"phase_outputs"`
	StepLog  []StepRecord `json:"step_log"`
}

// Completed reports whether the latest log entry for (phase, step) is a
// completion. Last entry wins per key.
func (c *Codex) Completed(phase, step string) bool {
	for i := len(c.StepLog) - 1; i >= 0; i-- {
		rec := c.StepLog[i]
		if rec.Phase == phase && rec.Step == step {
			return rec.Status == StepStatusCompleted
		}
	}
	return false
}

// PhaseStarted reports whether any step of the phase has ever completed,
// which is the dependency bar for phase-level ordering.
func (c *Codex) PhaseStarted(phase string) bool {
	for _, rec := range c.StepLog {
		if rec.Phase == phase && rec.Status == StepStatusCompleted {
			return true
		}
	}
	return false
}

// Clone returns a deep copy via a JSON round trip so callers can hand out
// snapshots without aliasing the payload slices.
func (c *Codex) Clone() (*Codex, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("codex: clone encode: %w", err)
	}
	var out Codex
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("codex: clone decode: %w", err)
	}
	return &out, nil
}

func (c *Codex) validate() error {
	if c.Metadata.ID == "" {
		return fmt.Errorf("metadata.id is empty")
	}
	if c.Metadata.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unknown schema_version %d (want %d)", c.Metadata.SchemaVersion, SchemaVersion)
	}
	return nil
}

// Fragment is one step's complete contribution to the phase output table.
// Merge must touch only the data owned by the step that produced the
// fragment; fragments belonging to other steps stay intact.
type Fragment interface {
	Phase() string
	Merge(*PhaseOutputs)
}
