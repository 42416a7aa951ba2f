// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider implements the vision-LLM OCR backends. Each backend
// accepts a list of encoded page images and returns the transcribed text in
// the requested output format.
package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/pdiddy/ocr-engine/pkg/types"
)

// Backend abstracts a vision-LLM vendor so the pipeline and its tests do
// not depend on a live API.
type Backend interface {
	// Name returns the vendor name, e.g. "anthropic".
	Name() string

	// OCR sends the page images (one PNG byte string per page) and returns
	// the model's transcription in the requested format.
	OCR(ctx context.Context, images [][]byte, format types.OutputFormat) (string, error)
}

// Option adjusts backend construction. Tests use WithBaseURL and WithClient
// to point a backend at a local server.
type Option func(*options)

type options struct {
	baseURL string
	client  *http.Client
}

// WithBaseURL overrides the vendor API endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithClient overrides the HTTP client used for API requests.
func WithClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New builds the backend selected by cfg. The client carries the shared
// retry transport; pass nil to use each SDK's default.
func New(cfg types.AIConfig, client *http.Client, opts ...Option) (Backend, error) {
	if client != nil {
		opts = append(opts, WithClient(client))
	}

	switch cfg.Provider {
	case types.ProviderAnthropic:
		return NewAnthropic(cfg.APIKey, cfg.ModelOrDefault(), opts...), nil
	case types.ProviderOpenAI:
		return NewOpenAI(cfg.APIKey, cfg.ModelOrDefault(), opts...), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// pageMarker labels each image when a request carries more than one page,
// so page boundaries survive into the transcription.
func pageMarker(n int) string {
	return fmt.Sprintf("[Page %d]", n)
}

// formatInstruction is the trailing user turn naming the output format.
func formatInstruction(format types.OutputFormat) string {
	return fmt.Sprintf("OCR all content above. Output format: %s.", format)
}

// dataURL inlines image bytes for vendors that take image URLs.
func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
