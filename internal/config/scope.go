package config

import "fmt"

// Scope selects how large a story a run should produce. It sizes the scene
// count, the character and location caps, and the per-scene prose targets.
type Scope string

const (
	ScopeFlash    Scope = "flash"
	ScopeShort    Scope = "short"
	ScopeStandard Scope = "standard"
	ScopeLong     Scope = "long"
)

// ScopeProfile holds the concrete limits for one scope.
type ScopeProfile struct {
	SceneMin           int
	SceneMax           int
	MaxCharacters      int
	MaxLocations       int
	WordsPerSceneMin   int
	WordsPerSceneMax   int
	ParagraphsPerScene int
	Description        string
}

var scopeProfiles = map[Scope]ScopeProfile{
	ScopeFlash: {
		SceneMin: 3, SceneMax: 4,
		MaxCharacters: 2, MaxLocations: 1,
		WordsPerSceneMin: 400, WordsPerSceneMax: 500,
		ParagraphsPerScene: 2,
		Description:        "Flash fiction (~10 min read)",
	},
	ScopeShort: {
		SceneMin: 6, SceneMax: 8,
		MaxCharacters: 3, MaxLocations: 2,
		WordsPerSceneMin: 500, WordsPerSceneMax: 600,
		ParagraphsPerScene: 3,
		Description:        "Short story (~20 min read)",
	},
	ScopeStandard: {
		SceneMin: 12, SceneMax: 14,
		MaxCharacters: 5, MaxLocations: 4,
		WordsPerSceneMin: 600, WordsPerSceneMax: 800,
		ParagraphsPerScene: 4,
		Description:        "Standard story (~35 min read)",
	},
	ScopeLong: {
		SceneMin: 18, SceneMax: 20,
		MaxCharacters: 8, MaxLocations: 6,
		WordsPerSceneMin: 800, WordsPerSceneMax: 1000,
		ParagraphsPerScene: 5,
		Description:        "Long story (~50 min read)",
	},
}

// Profile resolves the limits for the scope.
func (s Scope) Profile() (ScopeProfile, error) {
	profile, ok := scopeProfiles[s]
	if !ok {
		return ScopeProfile{}, fmt.Errorf("config: unknown scope %q (valid: flash, short, standard, long)", s)
	}
	return profile, nil
}

// Scopes lists the valid scope names in size order.
func Scopes() []Scope {
	return []Scope{ScopeFlash, ScopeShort, ScopeStandard, ScopeLong}
}
