package story

import (
	"math/rand"

	"github.com/kingrea/storyforge/internal/codex"
)

// visualStyles is the pool of looks a run can adopt. One is chosen at seed
// time and threaded into every image prompt.
var visualStyles = []codex.VisualStyle{
	{
		Name:        "gouache storybook",
		Description: "Soft matte gouache illustration with visible brushwork and muted, warm palettes.",
		Modifiers:   []string{"gouache painting", "storybook illustration", "soft edges", "muted warm palette"},
	},
	{
		Name:        "ink and wash",
		Description: "Loose ink linework with monochrome wash shading and selective color accents.",
		Modifiers:   []string{"ink drawing", "wash shading", "sparse color accent", "textured paper"},
	},
	{
		Name:        "dusk realism",
		Description: "Painterly realism held at golden hour, long shadows and atmospheric haze.",
		Modifiers:   []string{"painterly realism", "golden hour", "long shadows", "atmospheric haze"},
	},
	{
		Name:        "woodcut revival",
		Description: "High-contrast woodcut texture with bold carving lines and limited two-tone color.",
		Modifiers:   []string{"woodcut print", "bold carved lines", "two-tone", "high contrast"},
	},
	{
		Name:        "lantern noir",
		Description: "Low-key lighting, practical light sources, deep blacks and rain-slick surfaces.",
		Modifiers:   []string{"chiaroscuro", "practical lighting", "deep blacks", "wet reflections"},
	},
}

func pickStyle(rng *rand.Rand) codex.VisualStyle {
	return visualStyles[rng.Intn(len(visualStyles))]
}
