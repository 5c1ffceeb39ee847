package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// generationConfigPath is the fixed location of the optional generation
// parameter file, relative to the working directory.
const generationConfigPath = "configs/generation.yaml"

// Generation holds model names and sampling parameters for both pipeline
// providers. Loaded once at startup and treated as read-only afterwards;
// requests never mutate it.
type Generation struct {
	Chat struct {
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"chat"`
	Image struct {
		Model  string `yaml:"model"`
		Width  int    `yaml:"width"`
		Height int    `yaml:"height"`
		Steps  int    `yaml:"steps"`
	} `yaml:"image"`
}

// LoadGeneration reads the generation config file, falling back to built-in
// defaults when the file is absent, unreadable, or malformed. A missing
// config is never a startup failure.
func LoadGeneration() *Generation {
	return loadGenerationFrom(generationConfigPath)
}

func loadGenerationFrom(path string) *Generation {
	gen := DefaultGeneration()

	data, err := os.ReadFile(path)
	if err != nil {
		return gen
	}

	if err := yaml.Unmarshal(data, gen); err != nil {
		// Malformed file: discard partial decode, keep defaults.
		return DefaultGeneration()
	}

	gen.fillZeroes()
	return gen
}

// DefaultGeneration returns the built-in generation parameters.
func DefaultGeneration() *Generation {
	gen := &Generation{}
	gen.Chat.Model = "gpt-4o-mini"
	gen.Chat.MaxTokens = 1000
	gen.Chat.Temperature = 0.7
	gen.Image.Model = "black-forest-labs/FLUX.1-schnell"
	gen.Image.Width = 1024
	gen.Image.Height = 768
	gen.Image.Steps = 28
	return gen
}

// fillZeroes backfills defaults for fields a partial config file left unset.
func (g *Generation) fillZeroes() {
	defaults := DefaultGeneration()
	if g.Chat.Model == "" {
		g.Chat.Model = defaults.Chat.Model
	}
	if g.Chat.MaxTokens <= 0 {
		g.Chat.MaxTokens = defaults.Chat.MaxTokens
	}
	if g.Chat.Temperature <= 0 {
		g.Chat.Temperature = defaults.Chat.Temperature
	}
	if g.Image.Model == "" {
		g.Image.Model = defaults.Image.Model
	}
	if g.Image.Width <= 0 {
		g.Image.Width = defaults.Image.Width
	}
	if g.Image.Height <= 0 {
		g.Image.Height = defaults.Image.Height
	}
	if g.Image.Steps <= 0 {
		g.Image.Steps = defaults.Image.Steps
	}
}
