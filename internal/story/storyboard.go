package story

import (
	"context"
	"fmt"

	"github.com/kingrea/storyforge/internal/codex"
	"github.com/kingrea/storyforge/internal/pipeline"
)

func runStoryboardShots(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	outline := rc.Codex.Outputs.Outline
	narrative := rc.Codex.Outputs.Narrative
	chars := rc.Codex.Outputs.Characters
	if outline == nil || narrative == nil || len(narrative.Acts) == 0 {
		return nil, fmt.Errorf("story: outline or manuscript missing")
	}
	mapping := nameMapping(chars)
	scenes := make([]codex.SceneShots, 0, outline.SceneCount())
	for _, actOutline := range outline.Acts {
		act, ok := narrative.Act(actOutline.Number)
		if !ok {
			return nil, fmt.Errorf("story: manuscript has no act %d", actOutline.Number)
		}
		for _, sceneOutline := range actOutline.Scenes {
			prose := ""
			for _, sp := range act.Scenes {
				if sp.Number == sceneOutline.Number {
					prose = sp.Prose
					break
				}
			}
			if prose == "" {
				return nil, fmt.Errorf("story: scene %d has no prose", sceneOutline.Number)
			}
			sceneOutline.Title = substituteNames(sceneOutline.Title, mapping)
			sceneOutline.Summary = substituteNames(sceneOutline.Summary, mapping)
			text, err := rc.Gateway.Text.Complete(ctx, promptSmithSystem, shotsPrompt(sceneOutline, prose))
			if err != nil {
				return nil, fmt.Errorf("story: storyboard scene %d: %w", sceneOutline.Number, err)
			}
			var decoded struct {
				Shots []codex.Shot `json:"shots"`
			}
			if err := decodeInto(text, &decoded); err != nil {
				return nil, err
			}
			if len(decoded.Shots) == 0 {
				return nil, fmt.Errorf("story: scene %d storyboard has no shots", sceneOutline.Number)
			}
			for i := range decoded.Shots {
				decoded.Shots[i].Number = i + 1
			}
			scenes = append(scenes, codex.SceneShots{
				Scene: sceneOutline.Number,
				Shots: decoded.Shots,
			})
		}
	}
	return storyboardFragment{scenes: scenes}, nil
}
