package story

import (
	"testing"

	"github.com/kingrea/storyforge/internal/codex"
	"github.com/kingrea/storyforge/internal/debate"
)

func TestNarrativeActFragmentReplacesOnlyItsAct(t *testing.T) {
	out := codex.PhaseOutputs{Narrative: &codex.NarrativePayload{Acts: []codex.NarrativeAct{
		{Number: 1, Scenes: []codex.SceneProse{{Number: 1, Prose: "act one"}}},
		{Number: 2, Scenes: []codex.SceneProse{{Number: 5, Prose: "act two"}}},
	}}}
	frag := narrativeActFragment{act: codex.NarrativeAct{
		Number: 2,
		Scenes: []codex.SceneProse{{Number: 5, Prose: "act two rewritten"}},
	}}
	frag.Merge(&out)
	if out.Narrative.Acts[0].Scenes[0].Prose != "act one" {
		t.Fatal("act 1 disturbed by act 2 commit")
	}
	if out.Narrative.Acts[1].Scenes[0].Prose != "act two rewritten" {
		t.Fatalf("act 2 = %+v", out.Narrative.Acts[1])
	}
	if len(out.Narrative.Acts) != 2 {
		t.Fatalf("acts = %d, rerun must replace not append", len(out.Narrative.Acts))
	}
}

func TestNarrativeReviseFragmentRewritesFlaggedScenesOnly(t *testing.T) {
	out := codex.PhaseOutputs{Narrative: &codex.NarrativePayload{Acts: []codex.NarrativeAct{
		{Number: 1, Scenes: []codex.SceneProse{
			{Number: 1, Prose: "keep me", WordCount: 2},
			{Number: 2, Prose: "replace me", WordCount: 2},
		}},
	}}}
	frag := narrativeReviseFragment{rewrites: map[int]string{2: "much better prose now"}}
	frag.Merge(&out)
	scenes := out.Narrative.Acts[0].Scenes
	if scenes[0].Prose != "keep me" {
		t.Fatal("unflagged scene rewritten")
	}
	if scenes[1].Prose != "much better prose now" || scenes[1].WordCount != 4 {
		t.Fatalf("flagged scene = %+v", scenes[1])
	}
	if !out.Narrative.Revised {
		t.Fatal("revise commit must mark the manuscript revised")
	}
}

func TestImagePromptsFragmentSlotsAreIndependent(t *testing.T) {
	out := codex.PhaseOutputs{}
	imagePromptsFragment{slot: slotCharacterPrompts, prompts: []codex.ImagePrompt{
		{SubjectID: "char_001", Prompt: "a sailor"},
	}}.Merge(&out)
	imagePromptsFragment{slot: slotScenePrompts, prompts: []codex.ImagePrompt{
		{SubjectID: "scene_001", Prompt: "a storm"},
	}}.Merge(&out)
	if len(out.Prompts.CharacterPrompts) != 1 || len(out.Prompts.ScenePrompts) != 1 {
		t.Fatalf("prompts = %+v", out.Prompts)
	}
	// Rerunning one slot leaves the other alone.
	imagePromptsFragment{slot: slotScenePrompts, prompts: []codex.ImagePrompt{
		{SubjectID: "scene_001", Prompt: "a calmer storm"},
	}}.Merge(&out)
	if out.Prompts.CharacterPrompts[0].Prompt != "a sailor" {
		t.Fatal("character prompts disturbed by scene rerun")
	}
	if out.Prompts.ScenePrompts[0].Prompt != "a calmer storm" {
		t.Fatalf("scene prompts = %+v", out.Prompts.ScenePrompts)
	}
}

func TestCharactersNamesFragmentRenamesProfiles(t *testing.T) {
	out := codex.PhaseOutputs{Characters: &codex.CharactersPayload{
		Characters: []codex.Character{
			{ID: "char_001", Name: "Mara"},
			{ID: "char_002", Name: "Tomas"},
		},
	}}
	charactersNamesFragment{decisions: []codex.NameDecision{
		{CharacterID: "char_001", OldName: "Mara", Name: "Ilsabet"},
	}}.Merge(&out)
	if out.Characters.Characters[0].Name != "Ilsabet" {
		t.Fatalf("renamed profile = %+v", out.Characters.Characters[0])
	}
	if out.Characters.Characters[1].Name != "Tomas" {
		t.Fatal("undebated profile renamed")
	}
	if len(out.Characters.NameDecisions) != 1 {
		t.Fatalf("decisions = %+v", out.Characters.NameDecisions)
	}
}

func TestDebateRostersHaveOneChair(t *testing.T) {
	rosters := map[string][]debate.Persona{
		"cards": cardRoster(),
		"names": nameRoster(),
	}
	for name, roster := range rosters {
		chairs := 0
		voters := 0
		seen := map[string]bool{}
		for _, persona := range roster {
			if seen[persona.Name] {
				t.Fatalf("%s roster repeats %s", name, persona.Name)
			}
			seen[persona.Name] = true
			if persona.System == "" {
				t.Fatalf("%s roster persona %s has no system prompt", name, persona.Name)
			}
			if persona.TieBreak {
				chairs++
			} else {
				voters++
			}
		}
		if chairs != 1 {
			t.Fatalf("%s roster has %d tie-breakers, want 1", name, chairs)
		}
		if voters < 3 {
			t.Fatalf("%s roster has %d voters, want at least 3", name, voters)
		}
	}
}
