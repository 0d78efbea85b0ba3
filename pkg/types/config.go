// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP client timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "studycraft/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// LogConfig selects the zap logger level and encoding.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "console" for human-readable output; anything else yields JSON.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// StoreConfig locates the client-local key-value database.
type StoreConfig struct {
	// Path is the SQLite file (default "data/studycraft.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// ChainEntry is one position in the provider fallback chain.
type ChainEntry struct {
	// Provider is a provider kind: openrouter, gemini, rapidapi, anthropic.
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the provider-specific model identifier. Empty selects the
	// provider's default model.
	Model string `json:"model,omitempty" yaml:"model,omitempty" mapstructure:"model"`
}

// GenerateConfig holds settings for the AI generation path.
type GenerateConfig struct {
	// Chain lists providers in priority order. Empty uses the built-in chain.
	Chain []ChainEntry `json:"chain" yaml:"chain" mapstructure:"chain"`

	// ProviderTimeout bounds each provider attempt (default 60s).
	ProviderTimeout time.Duration `json:"provider_timeout" yaml:"provider_timeout" mapstructure:"provider_timeout"`

	// Temperature is the sampling temperature sent to every provider (default 0.7).
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// MaxTokens caps the completion length (default 4000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// RequestsPerMinute limits calls per provider kind. Zero disables limiting.
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// EncyclopediaConfig holds settings for the offline encyclopedia path.
type EncyclopediaConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// SourceTimeout bounds each source query (default 10s).
	SourceTimeout time.Duration `json:"source_timeout" yaml:"source_timeout" mapstructure:"source_timeout"`

	// Disabled lists source ids that are never queried (e.g. "wiktionary").
	Disabled []string `json:"disabled,omitempty" yaml:"disabled,omitempty" mapstructure:"disabled"`
}

// MediaConfig holds settings for media enrichment.
type MediaConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// ImageCount is the number of images requested (default 10).
	ImageCount int `json:"image_count" yaml:"image_count" mapstructure:"image_count"`

	// VideoCount is the number of videos requested (default 3).
	VideoCount int `json:"video_count" yaml:"video_count" mapstructure:"video_count"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	Port           int      `json:"port" yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// Config groups all component configurations.
type Config struct {
	Log          LogConfig          `json:"log" yaml:"log" mapstructure:"log"`
	Store        StoreConfig        `json:"store" yaml:"store" mapstructure:"store"`
	Generate     GenerateConfig     `json:"generate" yaml:"generate" mapstructure:"generate"`
	Encyclopedia EncyclopediaConfig `json:"encyclopedia" yaml:"encyclopedia" mapstructure:"encyclopedia"`
	Media        MediaConfig        `json:"media" yaml:"media" mapstructure:"media"`
	Server       ServerConfig       `json:"server" yaml:"server" mapstructure:"server"`

	// Credentials come from the environment or config file and are never
	// written back out.
	Credentials Credentials `json:"-" yaml:"-" mapstructure:"credentials"`
}

// Credentials carries API keys supplied by the caller for one request.
// A blank field means the matching provider is skipped.
type Credentials struct {
	OpenRouter string `json:"openrouter_api_key,omitempty" yaml:"openrouter_api_key,omitempty" mapstructure:"openrouter"`
	Gemini     string `json:"gemini_api_key,omitempty" yaml:"gemini_api_key,omitempty" mapstructure:"gemini"`
	RapidAPI   string `json:"rapidapi_key,omitempty" yaml:"rapidapi_key,omitempty" mapstructure:"rapidapi"`
	Anthropic  string `json:"anthropic_api_key,omitempty" yaml:"anthropic_api_key,omitempty" mapstructure:"anthropic"`
	Pexels     string `json:"pexels_api_key,omitempty" yaml:"pexels_api_key,omitempty" mapstructure:"pexels"`
}

// ForProvider returns the key for a provider kind, or "" when unknown.
func (c Credentials) ForProvider(kind string) string {
	switch kind {
	case "openrouter":
		return c.OpenRouter
	case "gemini":
		return c.Gemini
	case "rapidapi":
		return c.RapidAPI
	case "anthropic":
		return c.Anthropic
	case "pexels":
		return c.Pexels
	}
	return ""
}

// Merge returns c with blank fields filled from other.
func (c Credentials) Merge(other Credentials) Credentials {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	return Credentials{
		OpenRouter: pick(c.OpenRouter, other.OpenRouter),
		Gemini:     pick(c.Gemini, other.Gemini),
		RapidAPI:   pick(c.RapidAPI, other.RapidAPI),
		Anthropic:  pick(c.Anthropic, other.Anthropic),
		Pexels:     pick(c.Pexels, other.Pexels),
	}
}

// Mode selects the generation strategy.
type Mode string

const (
	ModeAI      Mode = "ai"
	ModeOffline Mode = "offline"
)

// Settings is the persisted user preference record. The three LLM keys
// are the primary (OpenRouter), secondary (Gemini), and tertiary (RapidAPI)
// credentials; Anthropic is an optional fourth.
type Settings struct {
	Credentials `yaml:",inline"`

	// Mode is the learning mode: "ai" or "offline".
	Mode Mode `json:"learning_mode" yaml:"learning_mode"`

	// AutoFetchMedia enables image and video enrichment after generation.
	AutoFetchMedia bool `json:"auto_fetch_images" yaml:"auto_fetch_images"`

	// DefaultDifficulty is used when a topic has no performance record yet.
	DefaultDifficulty Difficulty `json:"default_difficulty" yaml:"default_difficulty"`
}
