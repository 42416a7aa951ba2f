// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the configuration and data types shared across the
// ocr-engine pipeline stages.
package types

import (
	"fmt"
	"strings"
	"time"
)

// ProviderName identifies a vision-LLM vendor.
type ProviderName string

const (
	ProviderAnthropic ProviderName = "anthropic"
	ProviderOpenAI    ProviderName = "openai"
)

// ParseProvider validates a provider name given on the command line.
func ParseProvider(s string) (ProviderName, error) {
	switch p := ProviderName(strings.ToLower(s)); p {
	case ProviderAnthropic, ProviderOpenAI:
		return p, nil
	default:
		return "", fmt.Errorf("unknown provider %q (want anthropic or openai)", s)
	}
}

// OutputFormat selects what the OCR backend is asked to produce.
type OutputFormat string

const (
	FormatMarkdown OutputFormat = "markdown"
	FormatText     OutputFormat = "text"
)

// ParseFormat validates an output format given on the command line.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatMarkdown, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want markdown or text)", s)
	}
}

// DefaultModels maps each provider to the vision model used when no
// --model override is given.
var DefaultModels = map[ProviderName]string{
	ProviderAnthropic: "claude-sonnet-4-5-20250929",
	ProviderOpenAI:    "gpt-4o",
}

// AIConfig holds settings for the vision-LLM OCR call.
type AIConfig struct {
	// Provider selects the vendor: anthropic or openai.
	Provider ProviderName `json:"provider" yaml:"provider"`

	// Model is the vision model identifier. Empty means the provider default.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the provider API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Timeout is the HTTP request timeout (default 5m; vision requests
	// carrying several pages can run long).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ModelOrDefault returns the effective model identifier for the configured
// provider.
func (c AIConfig) ModelOrDefault() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModels[c.Provider]
}

// RenderConfig holds settings for PDF rasterization.
type RenderConfig struct {
	// DPI is the page render resolution. Higher means better quality and
	// larger API payloads (default 150; 200 suits dense technical documents).
	DPI int `json:"dpi" yaml:"dpi"`
}

// PreprocessConfig holds settings for the image preprocessing stage.
type PreprocessConfig struct {
	// Enabled applies auto-contrast and sharpening before upload (default true).
	Enabled bool `json:"enabled" yaml:"enabled"`

	// ContrastCutoff is the fraction of outlier pixels ignored at each end
	// of the histogram during auto-contrast (default 0.005).
	ContrastCutoff float64 `json:"contrast_cutoff" yaml:"contrast_cutoff"`

	// SharpenSigma is the gaussian sigma for the sharpening step (default 1.0).
	SharpenSigma float64 `json:"sharpen_sigma" yaml:"sharpen_sigma"`
}

// CacheConfig holds settings for the OCR response cache.
type CacheConfig struct {
	// Enabled controls whether responses are cached (default true).
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the cache directory. Empty means <user cache dir>/ocr-engine.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// Config aggregates the settings for one OCR run.
type Config struct {
	AI         AIConfig         `json:"ai" yaml:"ai"`
	Render     RenderConfig     `json:"render" yaml:"render"`
	Preprocess PreprocessConfig `json:"preprocess" yaml:"preprocess"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`

	// Format is the requested output format (default markdown).
	Format OutputFormat `json:"format" yaml:"format"`
}

// DefaultConfig returns a Config with all defaults filled in.
func DefaultConfig() Config {
	return Config{
		AI: AIConfig{
			Provider:   ProviderAnthropic,
			MaxRetries: 3,
			Timeout:    5 * time.Minute,
		},
		Render: RenderConfig{DPI: 150},
		Preprocess: PreprocessConfig{
			Enabled:        true,
			ContrastCutoff: 0.005,
			SharpenSigma:   1.0,
		},
		Cache:  CacheConfig{Enabled: true},
		Format: FormatMarkdown,
	}
}
