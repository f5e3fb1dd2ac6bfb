package story

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kingrea/storyforge/internal/codex"
	"github.com/kingrea/storyforge/internal/pipeline"
)

func runCharacterPrompts(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	seed := rc.Codex.Outputs.Seed
	chars := rc.Codex.Outputs.Characters
	if seed == nil || chars == nil || len(chars.Characters) == 0 {
		return nil, fmt.Errorf("story: characters missing")
	}
	prompts := make([]codex.ImagePrompt, len(chars.Characters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rc.Config.MaxParallel)
	for i, ch := range chars.Characters {
		i, ch := i, ch
		g.Go(func() error {
			text, err := rc.Gateway.Text.Complete(gctx, promptSmithSystem, portraitPrompt(ch, seed.VisualStyle))
			if err != nil {
				return fmt.Errorf("story: portrait prompt for %s: %w", ch.ID, err)
			}
			prompts[i] = codex.ImagePrompt{SubjectID: ch.ID, Subject: ch.Name, Prompt: strings.TrimSpace(text)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return imagePromptsFragment{slot: slotCharacterPrompts, prompts: prompts}, nil
}

func runLocationPrompts(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	seed := rc.Codex.Outputs.Seed
	chars := rc.Codex.Outputs.Characters
	if seed == nil || chars == nil {
		return nil, fmt.Errorf("story: characters missing")
	}
	prompts := make([]codex.ImagePrompt, len(chars.Locations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rc.Config.MaxParallel)
	for i, loc := range chars.Locations {
		i, loc := i, loc
		g.Go(func() error {
			text, err := rc.Gateway.Text.Complete(gctx, promptSmithSystem, locationImagePrompt(loc, seed.VisualStyle))
			if err != nil {
				return fmt.Errorf("story: location prompt for %s: %w", loc.ID, err)
			}
			prompts[i] = codex.ImagePrompt{SubjectID: loc.ID, Subject: loc.Name, Prompt: strings.TrimSpace(text)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return imagePromptsFragment{slot: slotLocationPrompts, prompts: prompts}, nil
}

func runScenePrompts(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	seed := rc.Codex.Outputs.Seed
	outline := rc.Codex.Outputs.Outline
	storyboard := rc.Codex.Outputs.Storyboard
	chars := rc.Codex.Outputs.Characters
	if seed == nil || outline == nil || storyboard == nil || len(storyboard.Scenes) == 0 {
		return nil, fmt.Errorf("story: storyboard missing")
	}
	mapping := nameMapping(chars)
	outlines := make(map[int]codex.SceneOutline)
	for _, act := range outline.Acts {
		for _, scene := range act.Scenes {
			scene.Title = substituteNames(scene.Title, mapping)
			scene.Summary = substituteNames(scene.Summary, mapping)
			outlines[scene.Number] = scene
		}
	}
	prompts := make([]codex.ImagePrompt, len(storyboard.Scenes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rc.Config.MaxParallel)
	for i, ss := range storyboard.Scenes {
		i, ss := i, ss
		scene, ok := outlines[ss.Scene]
		if !ok {
			return nil, fmt.Errorf("story: storyboard scene %d not in outline", ss.Scene)
		}
		g.Go(func() error {
			text, err := rc.Gateway.Text.Complete(gctx, promptSmithSystem, sceneImagePrompt(scene, ss.Shots, seed.VisualStyle))
			if err != nil {
				return fmt.Errorf("story: scene prompt for scene %d: %w", ss.Scene, err)
			}
			prompts[i] = codex.ImagePrompt{
				SubjectID: fmt.Sprintf("scene_%03d", ss.Scene),
				Subject:   scene.Title,
				Prompt:    strings.TrimSpace(text),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return imagePromptsFragment{slot: slotScenePrompts, prompts: prompts}, nil
}
