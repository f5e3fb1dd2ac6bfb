package story

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kingrea/storyforge/internal/codex"
	"github.com/kingrea/storyforge/internal/debate"
	"github.com/kingrea/storyforge/internal/pipeline"
)

// Editorial resolutions the outline critique debate chooses between.
var outlineDirections = []string{
	"Apply the structural critique",
	"Apply the pacing critique",
	"Apply both critiques",
	"Keep the outline as it is",
}

const outlineKeepDirection = "Keep the outline as it is"

func runOutlineStructure(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	seed := rc.Codex.Outputs.Seed
	if seed == nil || seed.StoryPrompt == "" {
		return nil, fmt.Errorf("story: seed payload missing story prompt")
	}
	profile, err := rc.Config.Scope.Profile()
	if err != nil {
		return nil, err
	}
	text, err := rc.Gateway.Text.Complete(ctx, writerSystem, structurePrompt(seed.StoryPrompt, seed.SettingPrompt, profile))
	if err != nil {
		return nil, err
	}
	var structure codex.StoryStructure
	if err := decodeInto(text, &structure); err != nil {
		return nil, err
	}
	if structure.Theme == "" || len(structure.ActSummaries) != 3 {
		return nil, fmt.Errorf("story: structure response incomplete (theme %q, %d act summaries)", structure.Theme, len(structure.ActSummaries))
	}
	return outlineStructureFragment{structure: structure}, nil
}

func runOutlineBeats(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	outline := rc.Codex.Outputs.Outline
	if outline == nil || outline.Structure == nil {
		return nil, fmt.Errorf("story: outline structure missing")
	}
	text, err := rc.Gateway.Text.Complete(ctx, writerSystem, beatsPrompt(outline.Structure))
	if err != nil {
		return nil, err
	}
	var decoded struct {
		Acts []codex.ActBeats `json:"acts"`
	}
	if err := decodeInto(text, &decoded); err != nil {
		return nil, err
	}
	if len(decoded.Acts) != 3 {
		return nil, fmt.Errorf("story: beat sheet has %d acts, want 3", len(decoded.Acts))
	}
	return outlineBeatsFragment{beats: decoded.Acts}, nil
}

func runOutlineScenes(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	outline := rc.Codex.Outputs.Outline
	if outline == nil || outline.Structure == nil || len(outline.BeatSheet) == 0 {
		return nil, fmt.Errorf("story: outline structure or beat sheet missing")
	}
	profile, err := rc.Config.Scope.Profile()
	if err != nil {
		return nil, err
	}
	text, err := rc.Gateway.Text.Complete(ctx, writerSystem, scenesPrompt(outline.Structure, outline.BeatSheet, profile))
	if err != nil {
		return nil, err
	}
	draft, err := decodeOutlineDraft(text, profile.SceneMin, profile.SceneMax)
	if err != nil {
		return nil, err
	}
	return outlineScenesFragment{title: draft.Title, logline: draft.Logline, acts: draft.Acts}, nil
}

type outlineDraft struct {
	Title   string             `json:"title"`
	Logline string             `json:"logline"`
	Acts    []codex.ActOutline `json:"acts"`
}

// decodeOutlineDraft parses and validates a scene outline against the
// scope's scene range.
func decodeOutlineDraft(text string, sceneMin, sceneMax int) (*outlineDraft, error) {
	var draft outlineDraft
	if err := decodeInto(text, &draft); err != nil {
		return nil, err
	}
	total := 0
	for _, act := range draft.Acts {
		total += len(act.Scenes)
	}
	if total < sceneMin || total > sceneMax {
		return nil, fmt.Errorf("story: outline has %d scenes, want %d-%d", total, sceneMin, sceneMax)
	}
	if draft.Title == "" {
		return nil, fmt.Errorf("story: outline draft has no title")
	}
	return &draft, nil
}

func runOutlineCritique(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	outline := rc.Codex.Outputs.Outline
	if outline == nil || len(outline.Acts) == 0 {
		return nil, fmt.Errorf("story: scene outline missing")
	}
	summary := outlineSummary(outline, nil)
	structureNotes, err := rc.Gateway.Text.Complete(ctx, critiqueSystem, structureCritiquePrompt(summary))
	if err != nil {
		return nil, err
	}
	pacingNotes, err := rc.Gateway.Text.Complete(ctx, critiqueSystem, pacingCritiquePrompt(summary))
	if err != nil {
		return nil, err
	}
	session, err := rc.Debate.Decide(ctx, cardRoster(), debate.Context{
		Topic:      "the outline revision direction",
		Background: fmt.Sprintf("Outline:\n%s\nStructural critique:\n%s\nPacing critique:\n%s", summary, structureNotes, pacingNotes),
		Options:    outlineDirections,
	})
	if err != nil {
		return nil, err
	}
	return outlineCritiqueFragment{critique: codex.OutlineCritique{
		Structure: structureNotes,
		Pacing:    pacingNotes,
		Direction: session.WinnerOption(),
		Decision:  debateRecord(session),
	}}, nil
}

func runOutlineRevise(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	outline := rc.Codex.Outputs.Outline
	if outline == nil || outline.Critique == nil {
		return nil, fmt.Errorf("story: outline critique missing")
	}
	if outline.Critique.Direction == outlineKeepDirection {
		return outlineScenesFragment{title: outline.Title, logline: outline.Logline, acts: outline.Acts, revised: true}, nil
	}
	profile, err := rc.Config.Scope.Profile()
	if err != nil {
		return nil, err
	}
	current, err := json.Marshal(outlineDraft{Title: outline.Title, Logline: outline.Logline, Acts: outline.Acts})
	if err != nil {
		return nil, fmt.Errorf("story: encode outline: %w", err)
	}
	text, err := rc.Gateway.Text.Complete(ctx, writerSystem,
		outlineRevisePrompt(string(current), outline.Critique.Direction, outline.Critique.Structure, outline.Critique.Pacing))
	if err != nil {
		return nil, err
	}
	draft, err := decodeOutlineDraft(text, profile.SceneMin, profile.SceneMax)
	if err != nil {
		return nil, err
	}
	return outlineScenesFragment{title: draft.Title, logline: draft.Logline, acts: draft.Acts, revised: true}, nil
}
