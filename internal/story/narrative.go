package story

import (
	"context"
	"fmt"
	"strings"

	"github.com/kingrea/storyforge/internal/codex"
	"github.com/kingrea/storyforge/internal/debate"
	"github.com/kingrea/storyforge/internal/pipeline"
)

var narrativeDirections = []string{
	"Revise the flagged scenes",
	"Keep the manuscript as it is",
}

const narrativeKeepDirection = "Keep the manuscript as it is"

// priorProseTail is how much trailing prose each scene prompt carries for
// continuity with what came before.
const priorProseTail = 2000

// runNarrativeAct returns the step function that drafts prose for one act.
func runNarrativeAct(actNumber int) func(context.Context, *pipeline.RunContext) (codex.Fragment, error) {
	return func(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
		outline := rc.Codex.Outputs.Outline
		chars := rc.Codex.Outputs.Characters
		if outline == nil || chars == nil {
			return nil, fmt.Errorf("story: outline or characters missing")
		}
		var actOutline *codex.ActOutline
		for i := range outline.Acts {
			if outline.Acts[i].Number == actNumber {
				actOutline = &outline.Acts[i]
				break
			}
		}
		if actOutline == nil {
			return nil, fmt.Errorf("story: outline has no act %d", actNumber)
		}
		profile, err := rc.Config.Scope.Profile()
		if err != nil {
			return nil, err
		}
		mapping := nameMapping(chars)
		cast := charactersSummary(chars)

		var prior strings.Builder
		if narrative := rc.Codex.Outputs.Narrative; narrative != nil {
			for _, act := range narrative.Acts {
				if act.Number >= actNumber {
					continue
				}
				for _, scene := range act.Scenes {
					prior.WriteString(scene.Prose)
					prior.WriteString("\n\n")
				}
			}
		}

		act := codex.NarrativeAct{Number: actNumber, Name: actOutline.Name}
		for _, scene := range actOutline.Scenes {
			scene.Title = substituteNames(scene.Title, mapping)
			scene.Summary = substituteNames(scene.Summary, mapping)
			for i := range scene.Characters {
				scene.Characters[i] = substituteNames(scene.Characters[i], mapping)
			}
			prose, err := rc.Gateway.Text.Complete(ctx, writerSystem,
				sceneProsePrompt(scene, cast, tail(prior.String(), priorProseTail), profile))
			if err != nil {
				return nil, fmt.Errorf("story: draft scene %d: %w", scene.Number, err)
			}
			prose = strings.TrimSpace(prose)
			act.Scenes = append(act.Scenes, codex.SceneProse{
				Number:    scene.Number,
				Title:     scene.Title,
				Prose:     prose,
				WordCount: wordCount(prose),
			})
			prior.WriteString(prose)
			prior.WriteString("\n\n")
		}
		return narrativeActFragment{act: act}, nil
	}
}

func runNarrativeCritique(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	outline := rc.Codex.Outputs.Outline
	narrative := rc.Codex.Outputs.Narrative
	chars := rc.Codex.Outputs.Characters
	if outline == nil || narrative == nil || len(narrative.Acts) == 0 {
		return nil, fmt.Errorf("story: manuscript missing")
	}
	summary := outlineSummary(outline, nameMapping(chars))
	text, err := rc.Gateway.Text.Complete(ctx, critiqueSystem, manuscriptCritiquePrompt(summary, narrative.Acts))
	if err != nil {
		return nil, err
	}
	var decoded struct {
		Notes         string `json:"notes"`
		FlaggedScenes []int  `json:"flagged_scenes"`
	}
	if err := decodeInto(text, &decoded); err != nil {
		return nil, err
	}
	options := narrativeDirections
	if len(decoded.FlaggedScenes) == 0 {
		options = []string{narrativeKeepDirection}
	}
	session, err := rc.Debate.Decide(ctx, cardRoster(), debate.Context{
		Topic:      "whether the manuscript needs revision",
		Background: fmt.Sprintf("Editorial notes:\n%s\nFlagged scenes: %v", decoded.Notes, decoded.FlaggedScenes),
		Options:    options,
	})
	if err != nil {
		return nil, err
	}
	return narrativeCritiqueFragment{critique: codex.NarrativeCritique{
		Notes:         decoded.Notes,
		FlaggedScenes: decoded.FlaggedScenes,
		Direction:     session.WinnerOption(),
		Decision:      debateRecord(session),
	}}, nil
}

func runNarrativeRevise(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	narrative := rc.Codex.Outputs.Narrative
	if narrative == nil || narrative.Critique == nil {
		return nil, fmt.Errorf("story: manuscript critique missing")
	}
	critique := narrative.Critique
	rewrites := make(map[int]string)
	if critique.Direction == narrativeKeepDirection || len(critique.FlaggedScenes) == 0 {
		return narrativeReviseFragment{rewrites: rewrites}, nil
	}
	profile, err := rc.Config.Scope.Profile()
	if err != nil {
		return nil, err
	}
	flagged := make(map[int]bool, len(critique.FlaggedScenes))
	for _, n := range critique.FlaggedScenes {
		flagged[n] = true
	}
	for _, act := range narrative.Acts {
		for _, scene := range act.Scenes {
			if !flagged[scene.Number] {
				continue
			}
			prose, err := rc.Gateway.Text.Complete(ctx, writerSystem,
				sceneRevisePrompt(scene, critique.Notes, critique.Direction, profile))
			if err != nil {
				return nil, fmt.Errorf("story: revise scene %d: %w", scene.Number, err)
			}
			rewrites[scene.Number] = strings.TrimSpace(prose)
		}
	}
	return narrativeReviseFragment{rewrites: rewrites}, nil
}
