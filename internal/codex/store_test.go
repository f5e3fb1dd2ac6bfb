package codex

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type seedFragment struct {
	prompt string
}

func (seedFragment) Phase() string { return "seed" }

func (f seedFragment) Merge(out *PhaseOutputs) {
	if out.Seed == nil {
		out.Seed = &SeedPayload{}
	}
	out.Seed.StoryPrompt = f.prompt
}

type outlineFragment struct {
	title string
}

func (outlineFragment) Phase() string { return "outline" }

func (f outlineFragment) Merge(out *PhaseOutputs) {
	if out.Outline == nil {
		out.Outline = &OutlinePayload{}
	}
	out.Outline.Title = f.title
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codex.json")
	store, err := NewStore(path, WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, path
}

func TestCreateThenLoadRoundTrips(t *testing.T) {
	store, _ := newTestStore(t)
	created, err := store.Create("20250601120000")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Metadata.ID != created.Metadata.ID {
		t.Fatalf("loaded id = %q, want %q", loaded.Metadata.ID, created.Metadata.ID)
	}
	if loaded.Metadata.SchemaVersion != SchemaVersion {
		t.Fatalf("schema version = %d, want %d", loaded.Metadata.SchemaVersion, SchemaVersion)
	}
	if len(loaded.StepLog) != 0 {
		t.Fatalf("fresh codex has %d log entries, want 0", len(loaded.StepLog))
	}
}

func TestCreateRefusesExistingDocument(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.Create("run-a"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := store.Create("run-b")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("second create err = %v, want ErrAlreadyExists", err)
	}
}

func TestLoadMissingDocument(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Load()
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("load err = %v, want ErrNotFound", err)
	}
}

func TestLoadCorruptDocument(t *testing.T) {
	store, path := newTestStore(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var corrupt *CorruptError
	if _, err := store.Load(); !errors.As(err, &corrupt) {
		t.Fatalf("load err = %v, want CorruptError", err)
	}
}

func TestLoadRejectsUnknownSchemaVersion(t *testing.T) {
	store, path := newTestStore(t)
	doc := `{"metadata":{"id":"run","created_at":"2025-06-01T12:00:00Z","schema_version":99},"phase_outputs":{},"step_log":[]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var corrupt *CorruptError
	if _, err := store.Load(); !errors.As(err, &corrupt) {
		t.Fatalf("load err = %v, want CorruptError", err)
	}
}

func TestCommitMergesAndLogs(t *testing.T) {
	store, _ := newTestStore(t)
	c, err := store.Create("run")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Commit(c, "seed", "story-prompt", seedFragment{prompt: "a heist"}, 3*time.Second); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if c.Outputs.Seed == nil || c.Outputs.Seed.StoryPrompt != "a heist" {
		t.Fatalf("seed payload not merged: %+v", c.Outputs.Seed)
	}
	if !c.Completed("seed", "story-prompt") {
		t.Fatal("step not marked completed")
	}
	if got := c.StepLog[0].DurationSec; got != 3 {
		t.Fatalf("duration = %v, want 3", got)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Outputs.Seed.StoryPrompt != "a heist" {
		t.Fatalf("persisted prompt = %q", loaded.Outputs.Seed.StoryPrompt)
	}
}

func TestCommitPreservesOtherFragments(t *testing.T) {
	store, _ := newTestStore(t)
	c, err := store.Create("run")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Commit(c, "seed", "story-prompt", seedFragment{prompt: "original"}, 0); err != nil {
		t.Fatalf("commit seed: %v", err)
	}
	if err := store.Commit(c, "outline", "scenes", outlineFragment{title: "The Long Way Home"}, 0); err != nil {
		t.Fatalf("commit outline: %v", err)
	}
	if c.Outputs.Seed.StoryPrompt != "original" {
		t.Fatalf("seed prompt changed to %q", c.Outputs.Seed.StoryPrompt)
	}
	if c.Outputs.Outline.Title != "The Long Way Home" {
		t.Fatalf("outline title = %q", c.Outputs.Outline.Title)
	}
}

func TestCommitRerunKeepsFullHistory(t *testing.T) {
	store, _ := newTestStore(t)
	c, err := store.Create("run")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Commit(c, "seed", "story-prompt", seedFragment{prompt: "first"}, 0); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if err := store.Commit(c, "seed", "story-prompt", seedFragment{prompt: "second"}, 0); err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if c.Outputs.Seed.StoryPrompt != "second" {
		t.Fatalf("payload = %q, want latest", c.Outputs.Seed.StoryPrompt)
	}
	if len(c.StepLog) != 2 {
		t.Fatalf("log has %d entries, want 2 (append-only)", len(c.StepLog))
	}
	if !c.Completed("seed", "story-prompt") {
		t.Fatal("latest entry should win")
	}
}

func TestCommitRejectsFragmentPhaseMismatch(t *testing.T) {
	store, _ := newTestStore(t)
	c, err := store.Create("run")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Commit(c, "outline", "scenes", seedFragment{prompt: "x"}, 0); err == nil {
		t.Fatal("expected phase mismatch error")
	}
	if len(c.StepLog) != 0 {
		t.Fatal("failed commit must not touch the codex")
	}
}

func TestCommitLeavesNoTempFiles(t *testing.T) {
	store, path := newTestStore(t)
	c, err := store.Create("run")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Commit(c, "seed", "story-prompt", seedFragment{prompt: "x"}, 0); err != nil {
		t.Fatalf("commit: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("directory has %v, want only the codex", names)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := &Codex{
		Metadata: Metadata{ID: "run", SchemaVersion: SchemaVersion},
		Outputs:  PhaseOutputs{Seed: &SeedPayload{StoryPrompt: "before"}},
	}
	clone, err := c.Clone()
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	clone.Outputs.Seed.StoryPrompt = "after"
	if c.Outputs.Seed.StoryPrompt != "before" {
		t.Fatalf("clone aliases original: %q", c.Outputs.Seed.StoryPrompt)
	}
}
