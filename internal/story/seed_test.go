package story

import (
	"context"
	"strings"
	"testing"

	"github.com/kingrea/storyforge/internal/codex"
	"github.com/kingrea/storyforge/internal/config"
	"github.com/kingrea/storyforge/internal/debate"
	"github.com/kingrea/storyforge/internal/pipeline"
)

// firstOptionGen always argues briefly and votes for option 1, so every
// debate resolves to the first drawn card.
type firstOptionGen struct{}

func (firstOptionGen) Complete(_ context.Context, _, prompt string) (string, error) {
	if strings.Contains(prompt, "cast your final vote") {
		return "1", nil
	}
	return "The first option serves the story best.", nil
}

func newSeedRunContext(t *testing.T) *pipeline.RunContext {
	t.Helper()
	engine, err := debate.NewEngine(firstOptionGen{})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return &pipeline.RunContext{
		Codex:  &codex.Codex{},
		Config: config.Default(),
		Debate: engine,
	}
}

func TestRunSeedStoryPrompt(t *testing.T) {
	rc := newSeedRunContext(t)
	frag, err := runSeedStoryPrompt(context.Background(), rc)
	if err != nil {
		t.Fatalf("seed story: %v", err)
	}
	var out codex.PhaseOutputs
	frag.Merge(&out)
	if out.Seed == nil || out.Seed.StoryPrompt == "" {
		t.Fatalf("seed = %+v, want composed prompt", out.Seed)
	}
	if len(out.Seed.StorySelections) != len(storyDeckOrder) {
		t.Fatalf("selections = %d, want one per category", len(out.Seed.StorySelections))
	}
	for i, sel := range out.Seed.StorySelections {
		if sel.Category != storyDeckOrder[i] {
			t.Fatalf("selection %d category = %s, want deck order", i, sel.Category)
		}
		if sel.Winner != sel.Candidates[0] {
			t.Fatalf("winner = %q, scripted vote should pick the first candidate", sel.Winner)
		}
		if sel.Debate == nil || len(sel.Debate.Rounds) != 2 {
			t.Fatalf("selection %d debate record = %+v", i, sel.Debate)
		}
		if !strings.Contains(out.Seed.StoryPrompt, sel.Winner) {
			t.Fatalf("prompt %q missing winner %q", out.Seed.StoryPrompt, sel.Winner)
		}
	}
}

func TestRunSeedSettingPromptFixesStyle(t *testing.T) {
	rc := newSeedRunContext(t)
	frag, err := runSeedSettingPrompt(context.Background(), rc)
	if err != nil {
		t.Fatalf("seed setting: %v", err)
	}
	var out codex.PhaseOutputs
	frag.Merge(&out)
	if out.Seed == nil || out.Seed.SettingPrompt == "" {
		t.Fatalf("seed = %+v", out.Seed)
	}
	if len(out.Seed.SettingSelections) != len(worldDeckOrder) {
		t.Fatalf("selections = %d", len(out.Seed.SettingSelections))
	}
	if out.Seed.VisualStyle == nil || out.Seed.VisualStyle.Name == "" {
		t.Fatalf("visual style = %+v, want one chosen", out.Seed.VisualStyle)
	}
}
