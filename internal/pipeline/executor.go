package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/kingrea/storyforge/internal/codex"
	"github.com/kingrea/storyforge/internal/config"
	"github.com/kingrea/storyforge/internal/debate"
	"github.com/kingrea/storyforge/internal/gateway"
	"github.com/kingrea/storyforge/internal/logging"
)

// Executor runs one named step of one phase: it validates preconditions
// against a fresh codex snapshot, invokes the step transform, and commits
// the complete result fragment exactly once. A step either commits its whole
// output or commits nothing.
type Executor struct {
	store *codex.Store
	cfg   config.Config
	gw    *gateway.Gateway
	deb   *debate.Engine
	log   *logging.Logger
	clock func() time.Time
}

// ExecutorOption customizes the executor.
type ExecutorOption func(*Executor)

// WithExecutorClock injects a deterministic clock (primarily for tests).
func WithExecutorClock(clock func() time.Time) ExecutorOption {
	return func(x *Executor) {
		if clock != nil {
			x.clock = clock
		}
	}
}

// NewExecutor wires a step executor to the codex store and the generation
// collaborators.
func NewExecutor(store *codex.Store, cfg config.Config, gw *gateway.Gateway, deb *debate.Engine, log *logging.Logger, opts ...ExecutorOption) (*Executor, error) {
	if store == nil {
		return nil, fmt.Errorf("pipeline: executor requires a codex store")
	}
	executor := &Executor{store: store, cfg: cfg, gw: gw, deb: deb, log: log, clock: time.Now}
	for _, opt := range opts {
		opt(executor)
	}
	return executor, nil
}

// RunStep executes one step and returns the updated codex. The snapshot is
// always read fresh from the store so no component carries a private mutable
// copy across step boundaries. On PreconditionError no side effect occurs.
func (x *Executor) RunStep(ctx context.Context, phase Phase, step Step) (*codex.Codex, error) {
	c, err := x.store.Load()
	if err != nil {
		return nil, err
	}
	if missing := missingDependencies(c, phase, step); len(missing) > 0 {
		return nil, &PreconditionError{Phase: phase.Name, Step: step.Name, Missing: missing}
	}
	snapshot, err := c.Clone()
	if err != nil {
		return nil, err
	}
	rc := &RunContext{
		Codex:   snapshot,
		Config:  x.cfg,
		Gateway: x.gw,
		Debate:  x.deb,
		Log:     x.log,
	}
	started := x.clock()
	frag, err := step.Run(ctx, rc)
	if err != nil {
		return nil, err
	}
	if frag == nil {
		return nil, fmt.Errorf("pipeline: step %s/%s returned no fragment", phase.Name, step.Name)
	}
	if err := x.store.Commit(c, phase.Name, step.Name, frag, x.clock().Sub(started)); err != nil {
		return nil, err
	}
	x.log.Printf("step %s/%s committed", phase.Name, step.Name)
	return c, nil
}
