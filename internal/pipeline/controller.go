package pipeline

import (
	"context"
	"fmt"

	"github.com/kingrea/storyforge/internal/codex"
	"github.com/kingrea/storyforge/internal/logging"
)

// Controller is the top-level driver: it resolves requested phases and steps
// against the declared pipeline order, skips work the codex already shows as
// completed, and halts the run on the first failure, leaving the codex at
// its last successful commit.
type Controller struct {
	pipeline Pipeline
	store    *codex.Store
	exec     *Executor
	log      *logging.Logger
	observer func(event StepEvent)
}

// StepEvent lets a UI follow progress without the controller knowing about
// rendering.
type StepEvent struct {
	ID      StepID
	Outcome StepOutcome
}

// StepOutcome enumerates what the controller did with a step.
type StepOutcome string

const (
	OutcomeCompleted StepOutcome = "completed"
	OutcomeSkipped   StepOutcome = "skipped"
	OutcomeFailed    StepOutcome = "failed"
)

// ControllerOption customizes the controller.
type ControllerOption func(*Controller)

// WithObserver registers a progress callback.
func WithObserver(fn func(StepEvent)) ControllerOption {
	return func(c *Controller) {
		if fn != nil {
			c.observer = fn
		}
	}
}

// NewController wires the driver to the pipeline definition, the store, and
// the executor.
func NewController(p Pipeline, store *codex.Store, exec *Executor, log *logging.Logger, opts ...ControllerOption) (*Controller, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("pipeline: controller requires a codex store")
	}
	if exec == nil {
		return nil, fmt.Errorf("pipeline: controller requires an executor")
	}
	ctl := &Controller{pipeline: p, store: store, exec: exec, log: log}
	for _, opt := range opts {
		opt(ctl)
	}
	return ctl, nil
}

// Request selects which work to run. Empty Phases means every phase.
// Naming a step in Steps forces it to re-run even if already completed;
// naming only a phase runs that phase's incomplete steps.
type Request struct {
	Phases []string
	Steps  map[string][]string
}

// Result summarizes a run. When Halted is non-nil the run stopped at that
// step and the codex on disk is exactly as of the last successful commit, so
// re-invoking with the same codex path resumes from there.
type Result struct {
	Completed []StepID
	Skipped   []StepID
	Halted    *StepID
}

// Run drives the requested phases and steps in declared order. It fails
// fast: a PreconditionError or any step failure halts the whole run with the
// offending phase and step named.
func (ctl *Controller) Run(ctx context.Context, req Request) (*Result, error) {
	phases, err := ctl.resolvePhases(req)
	if err != nil {
		return nil, err
	}
	c, err := ctl.store.Load()
	if err != nil {
		return nil, err
	}
	result := &Result{}
	for _, phase := range phases {
		steps, forced, err := ctl.resolveSteps(phase, req)
		if err != nil {
			return result, err
		}
		for _, step := range steps {
			id := StepID{Phase: phase.Name, Step: step.Name}
			if StateOf(c, phase, step) == StepCompleted && !forced[step.Name] {
				result.Skipped = append(result.Skipped, id)
				ctl.notify(StepEvent{ID: id, Outcome: OutcomeSkipped})
				continue
			}
			updated, err := ctl.exec.RunStep(ctx, phase, step)
			if err != nil {
				result.Halted = &id
				ctl.notify(StepEvent{ID: id, Outcome: OutcomeFailed})
				ctl.log.Printf("run halted at %s: %v", id, err)
				if _, ok := err.(*PreconditionError); ok {
					return result, err
				}
				return result, &StepFailure{Phase: phase.Name, Step: step.Name, Err: err}
			}
			c = updated
			result.Completed = append(result.Completed, id)
			ctl.notify(StepEvent{ID: id, Outcome: OutcomeCompleted})
		}
	}
	return result, nil
}

// States reports the derived state of every step for status display.
func (ctl *Controller) States() (map[StepID]StepState, error) {
	c, err := ctl.store.Load()
	if err != nil {
		return nil, err
	}
	states := make(map[StepID]StepState)
	for _, phase := range ctl.pipeline.Phases {
		for _, step := range phase.Steps {
			states[StepID{Phase: phase.Name, Step: step.Name}] = StateOf(c, phase, step)
		}
	}
	return states, nil
}

// Pipeline exposes the declared definition (for status ordering).
func (ctl *Controller) Pipeline() Pipeline { return ctl.pipeline }

func (ctl *Controller) resolvePhases(req Request) ([]Phase, error) {
	if len(req.Phases) == 0 && len(req.Steps) == 0 {
		return ctl.pipeline.Phases, nil
	}
	requested := make(map[string]bool, len(req.Phases))
	for _, name := range req.Phases {
		if _, ok := ctl.pipeline.Phase(name); !ok {
			return nil, fmt.Errorf("pipeline: unknown phase %q", name)
		}
		requested[name] = true
	}
	for name := range req.Steps {
		if _, ok := ctl.pipeline.Phase(name); !ok {
			return nil, fmt.Errorf("pipeline: unknown phase %q", name)
		}
		requested[name] = true
	}
	// Declared pipeline order, not request order.
	var phases []Phase
	for _, phase := range ctl.pipeline.Phases {
		if requested[phase.Name] {
			phases = append(phases, phase)
		}
	}
	return phases, nil
}

func (ctl *Controller) resolveSteps(phase Phase, req Request) ([]Step, map[string]bool, error) {
	names := req.Steps[phase.Name]
	forced := make(map[string]bool, len(names))
	if len(names) == 0 {
		return phase.Steps, forced, nil
	}
	for _, name := range names {
		if _, ok := phase.Step(name); !ok {
			return nil, nil, fmt.Errorf("pipeline: unknown step %q in phase %s", name, phase.Name)
		}
		forced[name] = true
	}
	// Declared step order within the phase.
	var steps []Step
	for _, step := range phase.Steps {
		if forced[step.Name] {
			steps = append(steps, step)
		}
	}
	return steps, forced, nil
}

func (ctl *Controller) notify(ev StepEvent) {
	if ctl.observer != nil {
		ctl.observer(ev)
	}
}
