// Package ux renders CLI output for the forge commands.
package ux

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/storyforge/internal/pipeline"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50C878"))
	skippedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	failedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
)

// Banner renders the run header with the codex path the run writes to.
func Banner(runID, codexPath string) string {
	head := headerStyle.Render("⬡ STORYFORGE · " + runID)
	return fmt.Sprintf("%s\n  codex: %s", head, codexPath)
}

// StepLine renders one progress line as a step finishes.
func StepLine(ev pipeline.StepEvent) string {
	switch ev.Outcome {
	case pipeline.OutcomeCompleted:
		return completedStyle.Render("  ✓ " + ev.ID.String())
	case pipeline.OutcomeSkipped:
		return skippedStyle.Render("  · " + ev.ID.String() + " (already complete)")
	default:
		return failedStyle.Render("  ✗ " + ev.ID.String())
	}
}

// Summary renders the end-of-run tally.
func Summary(res *pipeline.Result) string {
	line := fmt.Sprintf("%d completed, %d skipped", len(res.Completed), len(res.Skipped))
	if res.Halted != nil {
		return failedStyle.Render(fmt.Sprintf("halted at %s (%s)", res.Halted, line))
	}
	return completedStyle.Render("run complete: " + line)
}

// StatusBoard renders every pipeline step with its derived state, in
// declared order.
func StatusBoard(p pipeline.Pipeline, states map[pipeline.StepID]pipeline.StepState) string {
	var b strings.Builder
	for _, phase := range p.Phases {
		b.WriteString(headerStyle.Render(phase.Name))
		b.WriteString("\n")
		for _, step := range phase.Steps {
			id := pipeline.StepID{Phase: phase.Name, Step: step.Name}
			var line string
			switch states[id] {
			case pipeline.StepCompleted:
				line = completedStyle.Render("  ✓ " + step.Name)
			case pipeline.StepReady:
				line = pendingStyle.Render("  ▸ " + step.Name + " (ready)")
			default:
				line = skippedStyle.Render("  · " + step.Name)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
