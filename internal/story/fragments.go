package story

import "github.com/kingrea/storyforge/internal/codex"

// Phase names as they appear in the codex and on the CLI.
const (
	PhaseSeed       = "seed"
	PhaseOutline    = "outline"
	PhaseCharacters = "characters"
	PhaseNarrative  = "narrative"
	PhaseStoryboard = "storyboard"
	PhasePrompts    = "prompts"
	PhaseMedia      = "media"
)

// Each fragment type below is the complete output of exactly one step, and
// its Merge touches only the payload data that step owns.

type seedStoryFragment struct {
	prompt     string
	selections []codex.CardSelection
}

func (seedStoryFragment) Phase() string { return PhaseSeed }

func (f seedStoryFragment) Merge(out *codex.PhaseOutputs) {
	if out.Seed == nil {
		out.Seed = &codex.SeedPayload{}
	}
	out.Seed.StoryPrompt = f.prompt
	out.Seed.StorySelections = f.selections
}

type seedSettingFragment struct {
	prompt     string
	selections []codex.CardSelection
	style      codex.VisualStyle
}

func (seedSettingFragment) Phase() string { return PhaseSeed }

func (f seedSettingFragment) Merge(out *codex.PhaseOutputs) {
	if out.Seed == nil {
		out.Seed = &codex.SeedPayload{}
	}
	out.Seed.SettingPrompt = f.prompt
	out.Seed.SettingSelections = f.selections
	style := f.style
	out.Seed.VisualStyle = &style
}

type outlineStructureFragment struct {
	structure codex.StoryStructure
}

func (outlineStructureFragment) Phase() string { return PhaseOutline }

func (f outlineStructureFragment) Merge(out *codex.PhaseOutputs) {
	if out.Outline == nil {
		out.Outline = &codex.OutlinePayload{}
	}
	structure := f.structure
	out.Outline.Structure = &structure
}

type outlineBeatsFragment struct {
	beats []codex.ActBeats
}

func (outlineBeatsFragment) Phase() string { return PhaseOutline }

func (f outlineBeatsFragment) Merge(out *codex.PhaseOutputs) {
	if out.Outline == nil {
		out.Outline = &codex.OutlinePayload{}
	}
	out.Outline.BeatSheet = f.beats
}

// outlineScenesFragment writes the draft outline; the revise step later
// overwrites the same slot with the final version.
type outlineScenesFragment struct {
	title   string
	logline string
	acts    []codex.ActOutline
	revised bool
}

func (outlineScenesFragment) Phase() string { return PhaseOutline }

func (f outlineScenesFragment) Merge(out *codex.PhaseOutputs) {
	if out.Outline == nil {
		out.Outline = &codex.OutlinePayload{}
	}
	out.Outline.Title = f.title
	out.Outline.Logline = f.logline
	out.Outline.Acts = f.acts
	if f.revised {
		out.Outline.Revised = true
	}
}

type outlineCritiqueFragment struct {
	critique codex.OutlineCritique
}

func (outlineCritiqueFragment) Phase() string { return PhaseOutline }

func (f outlineCritiqueFragment) Merge(out *codex.PhaseOutputs) {
	if out.Outline == nil {
		out.Outline = &codex.OutlinePayload{}
	}
	critique := f.critique
	out.Outline.Critique = &critique
}

type charactersProfilesFragment struct {
	characters []codex.Character
	locations  []codex.Location
}

func (charactersProfilesFragment) Phase() string { return PhaseCharacters }

func (f charactersProfilesFragment) Merge(out *codex.PhaseOutputs) {
	if out.Characters == nil {
		out.Characters = &codex.CharactersPayload{}
	}
	out.Characters.Characters = f.characters
	out.Characters.Locations = f.locations
}

// charactersNamesFragment owns the name decisions and the Name field of the
// character records it renamed.
type charactersNamesFragment struct {
	decisions []codex.NameDecision
}

func (charactersNamesFragment) Phase() string { return PhaseCharacters }

func (f charactersNamesFragment) Merge(out *codex.PhaseOutputs) {
	if out.Characters == nil {
		out.Characters = &codex.CharactersPayload{}
	}
	out.Characters.NameDecisions = f.decisions
	for _, decision := range f.decisions {
		for i := range out.Characters.Characters {
			if out.Characters.Characters[i].ID == decision.CharacterID {
				out.Characters.Characters[i].Name = decision.Name
			}
		}
	}
}

// narrativeActFragment replaces exactly one act slot, keyed by act number,
// leaving the other acts' prose untouched.
type narrativeActFragment struct {
	act codex.NarrativeAct
}

func (narrativeActFragment) Phase() string { return PhaseNarrative }

func (f narrativeActFragment) Merge(out *codex.PhaseOutputs) {
	if out.Narrative == nil {
		out.Narrative = &codex.NarrativePayload{}
	}
	for i := range out.Narrative.Acts {
		if out.Narrative.Acts[i].Number == f.act.Number {
			out.Narrative.Acts[i] = f.act
			return
		}
	}
	out.Narrative.Acts = append(out.Narrative.Acts, f.act)
}

type narrativeCritiqueFragment struct {
	critique codex.NarrativeCritique
}

func (narrativeCritiqueFragment) Phase() string { return PhaseNarrative }

func (f narrativeCritiqueFragment) Merge(out *codex.PhaseOutputs) {
	if out.Narrative == nil {
		out.Narrative = &codex.NarrativePayload{}
	}
	critique := f.critique
	out.Narrative.Critique = &critique
}

// narrativeReviseFragment carries prose replacements for the scenes the
// critique flagged; untouched scenes keep the act steps' prose.
type narrativeReviseFragment struct {
	rewrites map[int]string
}

func (narrativeReviseFragment) Phase() string { return PhaseNarrative }

func (f narrativeReviseFragment) Merge(out *codex.PhaseOutputs) {
	if out.Narrative == nil {
		out.Narrative = &codex.NarrativePayload{}
	}
	for a := range out.Narrative.Acts {
		for s := range out.Narrative.Acts[a].Scenes {
			scene := &out.Narrative.Acts[a].Scenes[s]
			if prose, ok := f.rewrites[scene.Number]; ok {
				scene.Prose = prose
				scene.WordCount = wordCount(prose)
			}
		}
	}
	out.Narrative.Revised = true
}

type storyboardFragment struct {
	scenes []codex.SceneShots
}

func (storyboardFragment) Phase() string { return PhaseStoryboard }

func (f storyboardFragment) Merge(out *codex.PhaseOutputs) {
	if out.Storyboard == nil {
		out.Storyboard = &codex.StoryboardPayload{}
	}
	out.Storyboard.Scenes = f.scenes
}

type imagePromptsFragment struct {
	slot    promptSlot
	prompts []codex.ImagePrompt
}

type promptSlot int

const (
	slotCharacterPrompts promptSlot = iota
	slotLocationPrompts
	slotScenePrompts
)

func (imagePromptsFragment) Phase() string { return PhasePrompts }

func (f imagePromptsFragment) Merge(out *codex.PhaseOutputs) {
	if out.Prompts == nil {
		out.Prompts = &codex.PromptsPayload{}
	}
	switch f.slot {
	case slotCharacterPrompts:
		out.Prompts.CharacterPrompts = f.prompts
	case slotLocationPrompts:
		out.Prompts.LocationPrompts = f.prompts
	case slotScenePrompts:
		out.Prompts.ScenePrompts = f.prompts
	}
}

type mediaFragment struct {
	slot    mediaSlot
	results []codex.MediaResult
}

type mediaSlot int

const (
	slotPortraits mediaSlot = iota
	slotSceneImages
)

func (mediaFragment) Phase() string { return PhaseMedia }

func (f mediaFragment) Merge(out *codex.PhaseOutputs) {
	if out.Media == nil {
		out.Media = &codex.MediaPayload{}
	}
	switch f.slot {
	case slotPortraits:
		out.Media.Portraits = f.results
	case slotSceneImages:
		out.Media.SceneImages = f.results
	}
}
