package story

import (
	"github.com/kingrea/storyforge/internal/pipeline"
)

// Step names, referenced by dependency declarations and the CLI.
const (
	StepStoryPrompt      = "story-prompt"
	StepSettingPrompt    = "setting-prompt"
	StepStructure        = "structure"
	StepBeats            = "beats"
	StepScenes           = "scenes"
	StepCritique         = "critique"
	StepRevise           = "revise"
	StepProfiles         = "profiles"
	StepNames            = "names"
	StepAct1             = "act-1"
	StepAct2             = "act-2"
	StepAct3             = "act-3"
	StepShots            = "shots"
	StepCharacterPrompts = "character-prompts"
	StepLocationPrompts  = "location-prompts"
	StepScenePrompts     = "scene-prompts"
	StepPortraits        = "portraits"
	StepSceneImages      = "scene-images"
)

func step(phase, name string) pipeline.StepID {
	return pipeline.StepID{Phase: phase, Step: name}
}

// Pipeline declares the full generation run: seven phases from card draws
// to rendered images, with every producer/consumer edge explicit.
func Pipeline() pipeline.Pipeline {
	return pipeline.Pipeline{Phases: []pipeline.Phase{
		{
			Name: PhaseSeed,
			Steps: []pipeline.Step{
				{Name: StepStoryPrompt, Run: runSeedStoryPrompt},
				{Name: StepSettingPrompt, Run: runSeedSettingPrompt},
			},
		},
		{
			Name:      PhaseOutline,
			DependsOn: []string{PhaseSeed},
			Steps: []pipeline.Step{
				{
					Name: StepStructure,
					DependsOn: []pipeline.StepID{
						step(PhaseSeed, StepStoryPrompt),
						step(PhaseSeed, StepSettingPrompt),
					},
					Run: runOutlineStructure,
				},
				{
					Name:      StepBeats,
					DependsOn: []pipeline.StepID{step(PhaseOutline, StepStructure)},
					Run:       runOutlineBeats,
				},
				{
					Name:      StepScenes,
					DependsOn: []pipeline.StepID{step(PhaseOutline, StepBeats)},
					Run:       runOutlineScenes,
				},
				{
					Name:      StepCritique,
					DependsOn: []pipeline.StepID{step(PhaseOutline, StepScenes)},
					Run:       runOutlineCritique,
				},
				{
					Name:      StepRevise,
					DependsOn: []pipeline.StepID{step(PhaseOutline, StepCritique)},
					Run:       runOutlineRevise,
				},
			},
		},
		{
			Name:      PhaseCharacters,
			DependsOn: []string{PhaseOutline},
			Steps: []pipeline.Step{
				{
					Name:      StepProfiles,
					DependsOn: []pipeline.StepID{step(PhaseOutline, StepRevise)},
					Run:       runCharacterProfiles,
				},
				{
					Name:      StepNames,
					DependsOn: []pipeline.StepID{step(PhaseCharacters, StepProfiles)},
					Run:       runCharacterNames,
				},
			},
		},
		{
			Name:      PhaseNarrative,
			DependsOn: []string{PhaseCharacters},
			Steps: []pipeline.Step{
				{
					Name:      StepAct1,
					DependsOn: []pipeline.StepID{step(PhaseCharacters, StepNames)},
					Run:       runNarrativeAct(1),
				},
				{
					Name:      StepAct2,
					DependsOn: []pipeline.StepID{step(PhaseNarrative, StepAct1)},
					Run:       runNarrativeAct(2),
				},
				{
					Name:      StepAct3,
					DependsOn: []pipeline.StepID{step(PhaseNarrative, StepAct2)},
					Run:       runNarrativeAct(3),
				},
				{
					Name: StepCritique,
					DependsOn: []pipeline.StepID{
						step(PhaseNarrative, StepAct1),
						step(PhaseNarrative, StepAct2),
						step(PhaseNarrative, StepAct3),
					},
					Run: runNarrativeCritique,
				},
				{
					Name:      StepRevise,
					DependsOn: []pipeline.StepID{step(PhaseNarrative, StepCritique)},
					Run:       runNarrativeRevise,
				},
			},
		},
		{
			Name:      PhaseStoryboard,
			DependsOn: []string{PhaseNarrative},
			Steps: []pipeline.Step{
				{
					Name:      StepShots,
					DependsOn: []pipeline.StepID{step(PhaseNarrative, StepRevise)},
					Run:       runStoryboardShots,
				},
			},
		},
		{
			Name:      PhasePrompts,
			DependsOn: []string{PhaseCharacters, PhaseStoryboard},
			Steps: []pipeline.Step{
				{
					Name:      StepCharacterPrompts,
					DependsOn: []pipeline.StepID{step(PhaseCharacters, StepNames)},
					Run:       runCharacterPrompts,
				},
				{
					Name:      StepLocationPrompts,
					DependsOn: []pipeline.StepID{step(PhaseCharacters, StepProfiles)},
					Run:       runLocationPrompts,
				},
				{
					Name:      StepScenePrompts,
					DependsOn: []pipeline.StepID{step(PhaseStoryboard, StepShots)},
					Run:       runScenePrompts,
				},
			},
		},
		{
			Name:      PhaseMedia,
			DependsOn: []string{PhasePrompts},
			Steps: []pipeline.Step{
				{
					Name:      StepPortraits,
					DependsOn: []pipeline.StepID{step(PhasePrompts, StepCharacterPrompts)},
					Run:       runPortraits,
				},
				{
					Name:      StepSceneImages,
					DependsOn: []pipeline.StepID{step(PhasePrompts, StepScenePrompts)},
					Run:       runSceneImages,
				},
			},
		},
	}}
}
