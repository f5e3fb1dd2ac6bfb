package codex

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store owns the codex document on disk. The document is the only shared
// mutable resource in a run, so every write goes through Commit under the
// store's write lock, and persistence uses write-to-temp-then-rename so a
// crash never leaves a log entry without its payload or vice versa.
type Store struct {
	path  string
	mu    sync.Mutex
	clock func() time.Time
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewStore creates a store for the document at path. The file does not need
// to exist yet; Create writes it.
func NewStore(path string, opts ...StoreOption) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("codex: store path is required")
	}
	store := &Store{path: path, clock: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Path returns the document path. The same path passed to any later
// invocation resumes the run.
func (s *Store) Path() string { return s.path }

// Load reads and validates the persisted document.
func (s *Store) Load() (*Codex, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("codex: read %s: %w", s.path, err)
	}
	var c Codex
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, &CorruptError{Path: s.path, Reason: "invalid JSON", Err: err}
	}
	if err := c.validate(); err != nil {
		return nil, &CorruptError{Path: s.path, Reason: err.Error()}
	}
	return &c, nil
}

// Create writes an empty document with fresh metadata for the run.
func (s *Store) Create(runID string) (*Codex, error) {
	if runID == "" {
		return nil, fmt.Errorf("codex: run id is required")
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, s.path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("codex: stat %s: %w", s.path, err)
	}
	c := &Codex{
		Metadata: Metadata{
			ID:            runID,
			CreatedAt:     s.clock().UTC(),
			SchemaVersion: SchemaVersion,
		},
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Commit atomically merges the fragment into the phase outputs, appends a
// completed step log entry, and persists the whole document. All or nothing:
// the in-memory codex is only mutated once the swap on disk succeeded.
func (s *Store) Commit(c *Codex, phase, step string, frag Fragment, elapsed time.Duration) error {
	if c == nil {
		return fmt.Errorf("codex: commit requires a codex")
	}
	if frag == nil {
		return fmt.Errorf("codex: commit requires a fragment for %s/%s", phase, step)
	}
	if frag.Phase() != phase {
		return fmt.Errorf("codex: fragment for phase %s committed under phase %s", frag.Phase(), phase)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged, err := c.Clone()
	if err != nil {
		return err
	}
	frag.Merge(&staged.Outputs)
	record := StepRecord{
		Phase:       phase,
		Step:        step,
		Status:      StepStatusCompleted,
		CompletedAt: s.clock().UTC(),
	}
	if elapsed > 0 {
		record.DurationSec = elapsed.Seconds()
	}
	staged.StepLog = append(staged.StepLog, record)
	if err := s.persist(staged); err != nil {
		return err
	}
	*c = *staged
	return nil
}

// persist writes the document to a temp file in the same directory and
// renames it over the target, which is the durable-swap primitive on every
// platform we care about.
func (s *Store) persist(c *Codex) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("codex: ensure %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("codex: encode: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".codex-*.json")
	if err != nil {
		return fmt.Errorf("codex: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("codex: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("codex: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("codex: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("codex: swap %s: %w", s.path, err)
	}
	return nil
}
