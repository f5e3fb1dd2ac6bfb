package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/kingrea/storyforge/internal/codex"
	"github.com/kingrea/storyforge/internal/config"
)

type promptFragment struct {
	prompt string
}

func (promptFragment) Phase() string { return "seed" }

func (f promptFragment) Merge(out *codex.PhaseOutputs) {
	if out.Seed == nil {
		out.Seed = &codex.SeedPayload{}
	}
	out.Seed.StoryPrompt = f.prompt
}

type titleFragment struct {
	title string
}

func (titleFragment) Phase() string { return "outline" }

func (f titleFragment) Merge(out *codex.PhaseOutputs) {
	if out.Outline == nil {
		out.Outline = &codex.OutlinePayload{}
	}
	out.Outline.Title = f.title
}

func newTestStore(t *testing.T) *codex.Store {
	t.Helper()
	store, err := codex.NewStore(filepath.Join(t.TempDir(), "codex.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Create("test-run"); err != nil {
		t.Fatalf("create: %v", err)
	}
	return store
}

func newTestExecutor(t *testing.T, store *codex.Store) *Executor {
	t.Helper()
	exec, err := NewExecutor(store, config.Default(), nil, nil, nil)
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}
	return exec
}

func staticStep(name string, frag codex.Fragment, deps ...StepID) Step {
	return Step{
		Name:      name,
		DependsOn: deps,
		Run: func(ctx context.Context, rc *RunContext) (codex.Fragment, error) {
			return frag, nil
		},
	}
}

func TestRunStepCommitsFragment(t *testing.T) {
	store := newTestStore(t)
	exec := newTestExecutor(t, store)
	phase := Phase{Name: "seed", Steps: []Step{staticStep("story-prompt", promptFragment{prompt: "a quiet war"})}}

	c, err := exec.RunStep(context.Background(), phase, phase.Steps[0])
	if err != nil {
		t.Fatalf("run step: %v", err)
	}
	if c.Outputs.Seed == nil || c.Outputs.Seed.StoryPrompt != "a quiet war" {
		t.Fatalf("seed = %+v, want committed prompt", c.Outputs.Seed)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.Completed("seed", "story-prompt") {
		t.Fatal("completion not persisted")
	}
}

func TestRunStepPreconditionNamesMissingDeps(t *testing.T) {
	store := newTestStore(t)
	exec := newTestExecutor(t, store)
	phase := Phase{
		Name:      "outline",
		DependsOn: []string{"seed"},
		Steps: []Step{staticStep("structure", titleFragment{title: "x"},
			StepID{Phase: "seed", Step: "story-prompt"})},
	}

	_, err := exec.RunStep(context.Background(), phase, phase.Steps[0])
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("err = %v, want PreconditionError", err)
	}
	if len(pre.Missing) != 2 {
		t.Fatalf("missing = %v, want phase and step dep", pre.Missing)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.StepLog) != 0 {
		t.Fatal("precondition failure must leave the codex untouched")
	}
}

func TestRunStepFailureCommitsNothing(t *testing.T) {
	store := newTestStore(t)
	exec := newTestExecutor(t, store)
	phase := Phase{Name: "seed", Steps: []Step{{
		Name: "story-prompt",
		Run: func(ctx context.Context, rc *RunContext) (codex.Fragment, error) {
			return nil, fmt.Errorf("generator unavailable")
		},
	}}}

	if _, err := exec.RunStep(context.Background(), phase, phase.Steps[0]); err == nil {
		t.Fatal("expected step error")
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.StepLog) != 0 || loaded.Outputs.Seed != nil {
		t.Fatal("failed step must commit nothing")
	}
}

func TestRunStepSnapshotMutationIsDiscarded(t *testing.T) {
	store := newTestStore(t)
	exec := newTestExecutor(t, store)
	seedPhase := Phase{Name: "seed", Steps: []Step{staticStep("story-prompt", promptFragment{prompt: "original"})}}
	if _, err := exec.RunStep(context.Background(), seedPhase, seedPhase.Steps[0]); err != nil {
		t.Fatalf("seed step: %v", err)
	}

	// A step that scribbles on payloads it does not own only corrupts its
	// private snapshot; the commit applies its fragment alone.
	rogue := Phase{Name: "outline", Steps: []Step{{
		Name: "structure",
		Run: func(ctx context.Context, rc *RunContext) (codex.Fragment, error) {
			rc.Codex.Outputs.Seed.StoryPrompt = "scribbled"
			return titleFragment{title: "clean"}, nil
		},
	}}}
	c, err := exec.RunStep(context.Background(), rogue, rogue.Steps[0])
	if err != nil {
		t.Fatalf("rogue step: %v", err)
	}
	if c.Outputs.Seed.StoryPrompt != "original" {
		t.Fatalf("seed prompt = %q, snapshot mutation leaked", c.Outputs.Seed.StoryPrompt)
	}
	if c.Outputs.Outline.Title != "clean" {
		t.Fatalf("outline title = %q", c.Outputs.Outline.Title)
	}
}

func TestRunStepNilFragment(t *testing.T) {
	store := newTestStore(t)
	exec := newTestExecutor(t, store)
	phase := Phase{Name: "seed", Steps: []Step{{
		Name: "story-prompt",
		Run: func(ctx context.Context, rc *RunContext) (codex.Fragment, error) {
			return nil, nil
		},
	}}}
	if _, err := exec.RunStep(context.Background(), phase, phase.Steps[0]); err == nil {
		t.Fatal("nil fragment without error must fail")
	}
}
