// Package pipeline is the orchestration core: a fixed, ordered set of phases
// with declared dependencies, a step executor that commits results
// atomically, and a controller that drives requested work and resumes from a
// persisted codex.
package pipeline

import (
	"context"
	"fmt"

	"github.com/kingrea/storyforge/internal/codex"
	"github.com/kingrea/storyforge/internal/config"
	"github.com/kingrea/storyforge/internal/debate"
	"github.com/kingrea/storyforge/internal/gateway"
	"github.com/kingrea/storyforge/internal/logging"
)

// StepID names one step of one phase.
type StepID struct {
	Phase string
	Step  string
}

func (id StepID) String() string {
	return id.Phase + "/" + id.Step
}

// RunContext is what a step transform gets to work with. Codex is a fresh
// snapshot read at the start of the step; steps read only the payload
// subsets their declared dependencies cover.
type RunContext struct {
	Codex   *codex.Codex
	Config  config.Config
	Gateway *gateway.Gateway
	Debate  *debate.Engine
	Log     *logging.Logger
}

// Step is a named unit of work within a phase. Run is an idempotent
// transform from a codex snapshot to one complete payload fragment.
type Step struct {
	Name      string
	DependsOn []StepID
	Run       func(ctx context.Context, rc *RunContext) (codex.Fragment, error)
}

// Phase is a named unit with a fixed ordinal position. DependsOn lists
// phases that must have at least one completed step before this phase runs.
type Phase struct {
	Name      string
	DependsOn []string
	Steps     []Step
}

// Step finds a step by name.
func (p Phase) Step(name string) (Step, bool) {
	for _, step := range p.Steps {
		if step.Name == name {
			return step, true
		}
	}
	return Step{}, false
}

// Pipeline is the fixed ordered phase list. It is declared at build time;
// this is deliberately not a general workflow engine.
type Pipeline struct {
	Phases []Phase
}

// Phase finds a phase by name.
func (p Pipeline) Phase(name string) (Phase, bool) {
	for _, phase := range p.Phases {
		if phase.Name == name {
			return phase, true
		}
	}
	return Phase{}, false
}

// Validate checks that names are unique, every declared dependency exists,
// and dependencies only point backwards in declaration order.
func (p Pipeline) Validate() error {
	phaseIndex := make(map[string]int, len(p.Phases))
	for i, phase := range p.Phases {
		if phase.Name == "" {
			return fmt.Errorf("pipeline: phase %d has no name", i)
		}
		if _, dup := phaseIndex[phase.Name]; dup {
			return fmt.Errorf("pipeline: duplicate phase %s", phase.Name)
		}
		phaseIndex[phase.Name] = i
	}
	stepIndex := make(map[StepID]int)
	for pi, phase := range p.Phases {
		for _, dep := range phase.DependsOn {
			di, ok := phaseIndex[dep]
			if !ok {
				return fmt.Errorf("pipeline: phase %s depends on unknown phase %s", phase.Name, dep)
			}
			if di >= pi {
				return fmt.Errorf("pipeline: phase %s depends on later phase %s", phase.Name, dep)
			}
		}
		for si, step := range phase.Steps {
			if step.Name == "" {
				return fmt.Errorf("pipeline: phase %s step %d has no name", phase.Name, si)
			}
			id := StepID{Phase: phase.Name, Step: step.Name}
			if _, dup := stepIndex[id]; dup {
				return fmt.Errorf("pipeline: duplicate step %s", id)
			}
			stepIndex[id] = pi*1000 + si
			if step.Run == nil {
				return fmt.Errorf("pipeline: step %s has no transform", id)
			}
		}
	}
	for pi, phase := range p.Phases {
		for si, step := range phase.Steps {
			for _, dep := range step.DependsOn {
				order, ok := stepIndex[dep]
				if !ok {
					return fmt.Errorf("pipeline: step %s/%s depends on unknown step %s", phase.Name, step.Name, dep)
				}
				if order >= pi*1000+si {
					return fmt.Errorf("pipeline: step %s/%s depends on later step %s", phase.Name, step.Name, dep)
				}
			}
		}
	}
	return nil
}

// StepState is the derived readiness of one step. It is never stored
// separately from the codex.
type StepState string

const (
	StepPending   StepState = "pending"
	StepReady     StepState = "ready"
	StepCompleted StepState = "completed"
)

// StateOf derives a step's state from the codex log.
func StateOf(c *codex.Codex, phase Phase, step Step) StepState {
	if c.Completed(phase.Name, step.Name) {
		return StepCompleted
	}
	if len(missingDependencies(c, phase, step)) > 0 {
		return StepPending
	}
	return StepReady
}

// missingDependencies lists unmet phase- and step-level dependencies as
// "phase" or "phase/step" strings, in declaration order.
func missingDependencies(c *codex.Codex, phase Phase, step Step) []string {
	var missing []string
	for _, dep := range phase.DependsOn {
		if !c.PhaseStarted(dep) {
			missing = append(missing, dep)
		}
	}
	for _, dep := range step.DependsOn {
		if !c.Completed(dep.Phase, dep.Step) {
			missing = append(missing, dep.String())
		}
	}
	return missing
}
