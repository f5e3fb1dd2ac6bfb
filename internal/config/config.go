// internal/config/config.go
//
// Configuration for a storyforge run. Everything is an explicit struct
// threaded through constructors; there is no ambient global state, so two
// runs with different settings can coexist in one process (and in tests).

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultForgeDir is where run directories are created unless overridden.
	DefaultForgeDir = "forge"

	// DefaultModel is the text-generation model requested from the gateway.
	DefaultModel = "openai/gpt-4o-mini"

	// DefaultBaseURL targets an OpenRouter-compatible completion endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultMediaURL targets the local media job server.
	DefaultMediaURL = "http://127.0.0.1:8188"
)

// Config carries every knob the pipeline, gateway, and debate engine need.
type Config struct {
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	MediaURL  string `yaml:"media_url"`
	OutputDir string `yaml:"output_dir"`
	Scope     Scope  `yaml:"scope"`

	DebateRounds int `yaml:"debate_rounds"`
	CardsPerDraw int `yaml:"cards_per_draw"`
	MaxParallel  int `yaml:"max_parallel"`

	Temperature float64 `yaml:"temperature"`

	ImageTimeout time.Duration `yaml:"image_timeout"`
	VideoTimeout time.Duration `yaml:"video_timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`

	// APIKey is only ever read from the environment, never from the file.
	APIKey string `yaml:"-"`
}

// Default returns the baseline configuration used when no file is supplied.
func Default() Config {
	return Config{
		Model:        DefaultModel,
		BaseURL:      DefaultBaseURL,
		MediaURL:     DefaultMediaURL,
		OutputDir:    DefaultForgeDir,
		Scope:        ScopeStandard,
		DebateRounds: 2,
		CardsPerDraw: 4,
		MaxParallel:  4,
		Temperature:  0.7,
		ImageTimeout: 5 * time.Minute,
		VideoTimeout: 30 * time.Minute,
		PollInterval: 2 * time.Second,
		APIKey:       apiKeyFromEnv(),
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error when path is empty; an explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the invariants the rest of the system assumes.
func (c Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("config: model is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("config: base_url is required")
	}
	if _, err := c.Scope.Profile(); err != nil {
		return err
	}
	if c.DebateRounds < 1 {
		return fmt.Errorf("config: debate_rounds must be >= 1, got %d", c.DebateRounds)
	}
	if c.CardsPerDraw < 2 {
		return fmt.Errorf("config: cards_per_draw must be >= 2, got %d", c.CardsPerDraw)
	}
	if c.MaxParallel < 1 {
		return fmt.Errorf("config: max_parallel must be >= 1, got %d", c.MaxParallel)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("config: poll_interval must be positive")
	}
	return nil
}

func apiKeyFromEnv() string {
	if key := os.Getenv("STORYFORGE_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("OPENROUTER_API_KEY")
}
