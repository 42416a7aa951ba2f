// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr orchestrates one run of the pipeline: load or rasterize page
// images, preprocess them, call the vision backend, post-process the
// transcription, and write it to the sink.
package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/ocr-engine/internal/cache"
	"github.com/pdiddy/ocr-engine/internal/postprocess"
	"github.com/pdiddy/ocr-engine/internal/preprocess"
	"github.com/pdiddy/ocr-engine/internal/provider"
	"github.com/pdiddy/ocr-engine/internal/rasterize"
	"github.com/pdiddy/ocr-engine/pkg/types"
)

// imageExts lists the image file types accepted as direct input.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
}

// backoffBase controls the delay between backend retry attempts. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Run executes the pipeline for one input file, writing the final text to
// out and progress lines to log. store may be nil to disable caching.
func Run(ctx context.Context, backend provider.Backend, renderer rasterize.Renderer, store *cache.Cache, cfg types.Config, inputPath string, out, log io.Writer) error {
	images, err := loadPages(renderer, cfg, inputPath, log)
	if err != nil {
		return err
	}

	if cfg.Preprocess.Enabled {
		for i, img := range images {
			processed, err := preprocess.ForOCR(img, cfg.Preprocess)
			if err != nil {
				return fmt.Errorf("preprocessing page %d: %w", i+1, err)
			}
			images[i] = processed
		}
	}

	model := cfg.AI.ModelOrDefault()
	key := cache.Key(backend.Name(), model, cfg.Format, images)

	text, hit, err := lookup(store, key)
	if err != nil {
		fmt.Fprintf(log, "warning: cache lookup failed: %v\n", err)
	}
	if hit {
		fmt.Fprintf(log, "cache hit, skipping %s call\n", backend.Name())
	} else {
		fmt.Fprintf(log, "running OCR via %s (%s)...\n", backend.Name(), model)
		text, err = callWithRetry(ctx, backend, images, cfg.Format, cfg.AI.MaxRetries)
		if err != nil {
			return fmt.Errorf("ocr request failed: %w", err)
		}
		if store != nil {
			if err := store.Put(key, backend.Name(), model, cfg.Format, text); err != nil {
				fmt.Fprintf(log, "warning: cache store failed: %v\n", err)
			}
		}
	}

	// Plain-text responses bypass normalization entirely.
	if cfg.Format == types.FormatMarkdown {
		text = postprocess.NormalizeLaTeXDelimiters(text)
		text = postprocess.NormalizeFrontmatter(text)
	}

	if _, err := io.WriteString(out, text); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// loadPages turns the input file into one encoded image per page.
func loadPages(renderer rasterize.Renderer, cfg types.Config, inputPath string, log io.Writer) ([][]byte, error) {
	switch ext := strings.ToLower(filepath.Ext(inputPath)); {
	case ext == ".pdf":
		fmt.Fprintf(log, "converting PDF to images...\n")
		images, err := renderer.Pages(inputPath, cfg.Render.DPI)
		if err != nil {
			return nil, fmt.Errorf("rasterizing %s: %w", inputPath, err)
		}
		if len(images) == 0 {
			return nil, fmt.Errorf("%s contains no pages", inputPath)
		}
		fmt.Fprintf(log, "%d page(s) extracted\n", len(images))
		return images, nil

	case imageExts[ext]:
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, fmt.Errorf("reading image %s: %w", inputPath, err)
		}
		return [][]byte{data}, nil

	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
}

func lookup(store *cache.Cache, key string) (string, bool, error) {
	if store == nil {
		return "", false, nil
	}
	return store.Get(key)
}

// callWithRetry retries the backend call with exponential backoff between
// attempts. maxRetries of 0 or less means the default of 3 attempts.
func callWithRetry(ctx context.Context, backend provider.Backend, images [][]byte, format types.OutputFormat, maxRetries int) (string, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffBase * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		text, err := backend.OCR(ctx, images, format)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}

	return "", fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}
