package codex

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when no document exists at the store path.
var ErrNotFound = errors.New("codex: document not found")

// ErrAlreadyExists is returned by Create when a document for the run already
// exists at the store path.
var ErrAlreadyExists = errors.New("codex: document already exists")

// CorruptError indicates the document at Path could not be parsed or failed
// schema validation. It is fatal; the run halts immediately.
type CorruptError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("codex: corrupt document %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("codex: corrupt document %s: %s", e.Path, e.Reason)
}

func (e *CorruptError) Unwrap() error { return e.Err }
