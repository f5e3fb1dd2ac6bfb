package story

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kingrea/storyforge/internal/codex"
	"github.com/kingrea/storyforge/internal/gateway"
	"github.com/kingrea/storyforge/internal/pipeline"
)

// ComfyUI workflow names the media steps submit against.
const (
	portraitWorkflow   = "character_portrait"
	sceneImageWorkflow = "scene_image"
)

func runPortraits(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	prompts := rc.Codex.Outputs.Prompts
	if prompts == nil || len(prompts.CharacterPrompts) == 0 {
		return nil, fmt.Errorf("story: character prompts missing")
	}
	results, err := generateBatch(ctx, rc, prompts.CharacterPrompts, portraitWorkflow)
	if err != nil {
		return nil, err
	}
	return mediaFragment{slot: slotPortraits, results: results}, nil
}

func runSceneImages(ctx context.Context, rc *pipeline.RunContext) (codex.Fragment, error) {
	prompts := rc.Codex.Outputs.Prompts
	if prompts == nil || len(prompts.ScenePrompts) == 0 {
		return nil, fmt.Errorf("story: scene prompts missing")
	}
	results, err := generateBatch(ctx, rc, prompts.ScenePrompts, sceneImageWorkflow)
	if err != nil {
		return nil, err
	}
	return mediaFragment{slot: slotSceneImages, results: results}, nil
}

// generateBatch runs one media job per prompt with bounded parallelism.
// A failed job is recorded in its result rather than failing the batch;
// only context cancellation aborts the whole step.
func generateBatch(ctx context.Context, rc *pipeline.RunContext, prompts []codex.ImagePrompt, workflow string) ([]codex.MediaResult, error) {
	results := make([]codex.MediaResult, len(prompts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rc.Config.MaxParallel)
	for i, prompt := range prompts {
		i, prompt := i, prompt
		g.Go(func() error {
			status, err := rc.Gateway.Media.Generate(gctx, gateway.JobRequest{
				Kind:     gateway.KindImage,
				Workflow: workflow,
				Inputs:   map[string]any{"prompt": prompt.Prompt},
			}, 0)
			result := codex.MediaResult{
				SubjectID: prompt.SubjectID,
				JobID:     status.JobID,
				Status:    string(status.Status),
			}
			switch {
			case err != nil && gctx.Err() != nil:
				return gctx.Err()
			case err != nil:
				result.Status = string(gateway.JobFailed)
				result.Error = err.Error()
				rc.Log.Printf("media job for %s failed: %v", prompt.SubjectID, err)
			default:
				result.Outputs = status.Outputs
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
