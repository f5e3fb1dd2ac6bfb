package story

import (
	"fmt"
	"strings"

	"github.com/kingrea/storyforge/internal/codex"
	"github.com/kingrea/storyforge/internal/config"
)

// System prompts for the single-voice generation calls (as opposed to the
// debate personas, which carry their own stances).

const writerSystem = "You are a skilled novelist. You follow instructions precisely and return exactly the format requested, with no commentary around it."

const critiqueSystem = "You are an experienced story editor. You are specific, cite scene numbers, and never pad your notes."

const promptSmithSystem = "You write image generation prompts: concrete, visual, one paragraph, no camera jargon unless asked."

func structurePrompt(storyPrompt, settingPrompt string, profile config.ScopeProfile) string {
	return fmt.Sprintf(`Design the high-level three-act structure for a story.

Story seed: %s
Setting: %s
Target length: %s

Return JSON only:
{"theme": "...", "central_conflict": "...", "act_summaries": ["act 1 ...", "act 2 ...", "act 3 ..."]}`,
		storyPrompt, settingPrompt, profile.Description)
}

func beatsPrompt(structure *codex.StoryStructure) string {
	return fmt.Sprintf(`Expand this three-act structure into a beat sheet.

Theme: %s
Central conflict: %s
Act summaries:
1. %s
2. %s
3. %s

Return JSON only:
{"acts": [{"act": 1, "beats": ["...", "..."]}, {"act": 2, "beats": ["..."]}, {"act": 3, "beats": ["..."]}]}
Give each act 3-6 beats, each beat one sentence.`,
		structure.Theme, structure.CentralConflict,
		actSummary(structure, 0), actSummary(structure, 1), actSummary(structure, 2))
}

func actSummary(structure *codex.StoryStructure, i int) string {
	if i < len(structure.ActSummaries) {
		return structure.ActSummaries[i]
	}
	return ""
}

func scenesPrompt(structure *codex.StoryStructure, beats []codex.ActBeats, profile config.ScopeProfile) string {
	var beatText strings.Builder
	for _, act := range beats {
		fmt.Fprintf(&beatText, "Act %d:\n", act.Act)
		for _, beat := range act.Beats {
			fmt.Fprintf(&beatText, "- %s\n", beat)
		}
	}
	return fmt.Sprintf(`Turn this beat sheet into a scene-by-scene outline.

Theme: %s
Central conflict: %s
Beat sheet:
%s
The story must have between %d and %d scenes total across exactly 3 acts. Number scenes consecutively from 1 across the whole story. Use working character names freely; they will be finalized later.

Return JSON only:
{"title": "...", "logline": "...", "acts": [{"number": 1, "name": "...", "scenes": [{"number": 1, "title": "...", "summary": "...", "location": "...", "characters": ["..."]}]}]}`,
		structure.Theme, structure.CentralConflict, beatText.String(), profile.SceneMin, profile.SceneMax)
}

func structureCritiquePrompt(outline string) string {
	return fmt.Sprintf(`Critique the STRUCTURE of this outline: causality between scenes, act turns, setup and payoff. 3-5 specific notes citing scene numbers.

%s`, outline)
}

func pacingCritiquePrompt(outline string) string {
	return fmt.Sprintf(`Critique the PACING of this outline: scene density, sagging stretches, rushed turns. 3-5 specific notes citing scene numbers.

%s`, outline)
}

func outlineRevisePrompt(outline, direction, structureNotes, pacingNotes string) string {
	return fmt.Sprintf(`Revise this outline. Resolution chosen by the editorial panel: %s

Structural notes:
%s

Pacing notes:
%s

Current outline:
%s

Keep the same JSON shape as the outline ({"title", "logline", "acts": [...]}), keep scene numbering consecutive, and change only what the chosen resolution requires. Return JSON only.`,
		direction, structureNotes, pacingNotes, outline)
}

func profilesPrompt(outline, settingPrompt string, profile config.ScopeProfile) string {
	return fmt.Sprintf(`Create the cast and locations for this story.

Setting: %s

Outline:
%s

Return JSON only:
{"characters": [{"name": "...", "role": "protagonist|antagonist|supporting", "description": "...", "appearance": "...", "motivation": "..."}],
 "locations": [{"name": "...", "description": "...", "atmosphere": "..."}]}
At most %d characters and %d locations. Reuse the outline's working names so they can be matched.`,
		settingPrompt, outline, profile.MaxCharacters, profile.MaxLocations)
}

func nameCandidatesPrompt(ch codex.Character, settingPrompt string, count int, taken []string) string {
	return fmt.Sprintf(`Propose %d candidate full names for this character.

Setting: %s
Character: %s - %s (%s)
Names already taken in this cast: %s

Return JSON only: {"candidates": ["...", "..."]}`,
		count, settingPrompt, ch.Name, ch.Description, ch.Role, strings.Join(taken, ", "))
}

func sceneProsePrompt(scene codex.SceneOutline, cast, priorProse string, profile config.ScopeProfile) string {
	return fmt.Sprintf(`Write the prose for one scene.

Scene %d - %s
Summary: %s
Location: %s
Cast reference:
%s
End of the previous scene (for continuity, may be empty):
%s

Write %d-%d words in %d paragraphs, third person past tense. Return the prose only, no heading.`,
		scene.Number, scene.Title, scene.Summary, scene.Location, cast, priorProse,
		profile.WordsPerSceneMin, profile.WordsPerSceneMax, profile.ParagraphsPerScene)
}

func manuscriptCritiquePrompt(outline string, acts []codex.NarrativeAct) string {
	var b strings.Builder
	for _, act := range acts {
		fmt.Fprintf(&b, "Act %d - %s\n", act.Number, act.Name)
		for _, scene := range act.Scenes {
			fmt.Fprintf(&b, "[Scene %d] %s\n", scene.Number, scene.Prose)
		}
	}
	return fmt.Sprintf(`Critique this full manuscript against its outline: continuity, voice drift, scenes that fail their summary.

Outline:
%s

Manuscript:
%s

Return JSON only: {"notes": "...", "flagged_scenes": [scene numbers that need rework]}`, outline, b.String())
}

func sceneRevisePrompt(scene codex.SceneProse, notes, direction string, profile config.ScopeProfile) string {
	return fmt.Sprintf(`Rewrite this scene. Editorial resolution: %s
Editor notes for the manuscript:
%s

Scene %d current prose:
%s

Keep %d-%d words. Return the revised prose only.`,
		direction, notes, scene.Number, scene.Prose, profile.WordsPerSceneMin, profile.WordsPerSceneMax)
}

func shotsPrompt(scene codex.SceneOutline, prose string) string {
	return fmt.Sprintf(`Break this scene into 3-6 storyboard shots.

Scene %d - %s
Summary: %s
Prose:
%s

Return JSON only: {"shots": [{"type": "wide|medium|close|insert", "duration_seconds": 4.0, "description": "..."}]}`,
		scene.Number, scene.Title, scene.Summary, prose)
}

func portraitPrompt(ch codex.Character, style *codex.VisualStyle) string {
	return fmt.Sprintf(`Write one image generation prompt for a character portrait.

Character: %s, %s. %s Appearance: %s
Visual style: %s (%s)

Return the prompt text only.`,
		ch.Name, ch.Role, ch.Description, ch.Appearance, styleName(style), strings.Join(styleModifiers(style), ", "))
}

func locationImagePrompt(loc codex.Location, style *codex.VisualStyle) string {
	return fmt.Sprintf(`Write one image generation prompt for an establishing shot of a location.

Location: %s. %s Atmosphere: %s
Visual style: %s (%s)

Return the prompt text only.`,
		loc.Name, loc.Description, loc.Atmosphere, styleName(style), strings.Join(styleModifiers(style), ", "))
}

func sceneImagePrompt(scene codex.SceneOutline, shots []codex.Shot, style *codex.VisualStyle) string {
	key := scene.Summary
	if len(shots) > 0 {
		key = shots[0].Description
	}
	return fmt.Sprintf(`Write one image generation prompt for the key moment of a scene.

Scene %d - %s: %s
Key shot: %s
Visual style: %s (%s)

Return the prompt text only.`,
		scene.Number, scene.Title, scene.Summary, key, styleName(style), strings.Join(styleModifiers(style), ", "))
}

func styleName(style *codex.VisualStyle) string {
	if style == nil {
		return "neutral"
	}
	return style.Name
}

func styleModifiers(style *codex.VisualStyle) []string {
	if style == nil {
		return nil
	}
	return style.Modifiers
}
