// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ocr-engine/internal/cache"
	"github.com/pdiddy/ocr-engine/pkg/types"
)

func TestMain(m *testing.M) {
	backoffBase = time.Millisecond
	os.Exit(m.Run())
}

// mockBackend returns a fixed transcription and counts calls.
type mockBackend struct {
	text     string
	calls    int
	failures int
}

func (b *mockBackend) Name() string { return "anthropic" }

func (b *mockBackend) OCR(_ context.Context, _ [][]byte, _ types.OutputFormat) (string, error) {
	b.calls++
	if b.calls <= b.failures {
		return "", errors.New("overloaded")
	}
	return b.text, nil
}

// stubRenderer returns a fixed page list without touching the filesystem.
type stubRenderer struct {
	pages [][]byte
	err   error
}

func (r *stubRenderer) Pages(string, int) ([][]byte, error) {
	return r.pages, r.err
}

func testConfig() types.Config {
	cfg := types.DefaultConfig()
	cfg.Preprocess.Enabled = false
	cfg.Cache.Enabled = false
	return cfg
}

func writePNG(t *testing.T, dir string) string {
	t.Helper()
	img := imaging.New(8, 8, color.Gray{Y: 128})
	path := filepath.Join(dir, "note.png")
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestRunImageInput(t *testing.T) {
	path := writePNG(t, t.TempDir())
	backend := &mockBackend{text: "# Notes\n\nHello.\n"}

	var out, log bytes.Buffer
	err := Run(context.Background(), backend, &stubRenderer{}, nil, testConfig(), path, &out, &log)
	require.NoError(t, err)

	assert.Equal(t, "# Notes\n\nHello.\n", out.String())
	assert.Equal(t, 1, backend.calls)
	assert.Contains(t, log.String(), "running OCR via anthropic")
}

func TestRunNormalizesMarkdown(t *testing.T) {
	path := writePNG(t, t.TempDir())
	backend := &mockBackend{text: "Euler: \\[ e^{i\\pi} + 1 = 0 \\]\n"}

	var out, log bytes.Buffer
	err := Run(context.Background(), backend, &stubRenderer{}, nil, testConfig(), path, &out, &log)
	require.NoError(t, err)

	assert.Equal(t, "Euler: $$ e^{i\\pi} + 1 = 0 $$\n", out.String())
}

func TestRunTextFormatPassthrough(t *testing.T) {
	path := writePNG(t, t.TempDir())
	backend := &mockBackend{text: "raw \\[ x \\] stays\n"}

	cfg := testConfig()
	cfg.Format = types.FormatText

	var out, log bytes.Buffer
	err := Run(context.Background(), backend, &stubRenderer{}, nil, cfg, path, &out, &log)
	require.NoError(t, err)

	assert.Equal(t, "raw \\[ x \\] stays\n", out.String())
}

func TestRunPDFInput(t *testing.T) {
	renderer := &stubRenderer{pages: [][]byte{[]byte("page1"), []byte("page2")}}
	backend := &mockBackend{text: "two pages\n"}

	var out, log bytes.Buffer
	err := Run(context.Background(), backend, renderer, nil, testConfig(), "doc.pdf", &out, &log)
	require.NoError(t, err)

	assert.Equal(t, "two pages\n", out.String())
	assert.Contains(t, log.String(), "2 page(s) extracted")
}

func TestRunEmptyPDF(t *testing.T) {
	var out, log bytes.Buffer
	err := Run(context.Background(), &mockBackend{}, &stubRenderer{}, nil, testConfig(), "doc.pdf", &out, &log)
	assert.ErrorContains(t, err, "no pages")
}

func TestRunRendererError(t *testing.T) {
	renderer := &stubRenderer{err: errors.New("corrupt xref")}

	var out, log bytes.Buffer
	err := Run(context.Background(), &mockBackend{}, renderer, nil, testConfig(), "doc.pdf", &out, &log)
	assert.ErrorContains(t, err, "rasterizing")
}

func TestRunUnsupportedExtension(t *testing.T) {
	var out, log bytes.Buffer
	err := Run(context.Background(), &mockBackend{}, &stubRenderer{}, nil, testConfig(), "notes.docx", &out, &log)
	assert.ErrorContains(t, err, `unsupported file type ".docx"`)
}

func TestRunPreprocessEnabled(t *testing.T) {
	path := writePNG(t, t.TempDir())
	backend := &mockBackend{text: "ok\n"}

	cfg := testConfig()
	cfg.Preprocess.Enabled = true

	var out, log bytes.Buffer
	err := Run(context.Background(), backend, &stubRenderer{}, nil, cfg, path, &out, &log)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out.String())
}

func TestRunPreprocessRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o644))

	cfg := testConfig()
	cfg.Preprocess.Enabled = true

	var out, log bytes.Buffer
	err := Run(context.Background(), &mockBackend{}, &stubRenderer{}, nil, cfg, path, &out, &log)
	assert.ErrorContains(t, err, "preprocessing page 1")
}

func TestRunCacheSkipsSecondCall(t *testing.T) {
	store, err := cache.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	path := writePNG(t, t.TempDir())
	backend := &mockBackend{text: "cached text\n"}
	cfg := testConfig()

	for i := 0; i < 2; i++ {
		var out, log bytes.Buffer
		require.NoError(t, Run(context.Background(), backend, &stubRenderer{}, store, cfg, path, &out, &log))
		assert.Equal(t, "cached text\n", out.String())
		if i == 1 {
			assert.Contains(t, log.String(), "cache hit")
		}
	}

	assert.Equal(t, 1, backend.calls, "second run must be served from the cache")
}

func TestRunRetriesBackendFailures(t *testing.T) {
	path := writePNG(t, t.TempDir())
	backend := &mockBackend{text: "eventually\n", failures: 2}

	var out, log bytes.Buffer
	err := Run(context.Background(), backend, &stubRenderer{}, nil, testConfig(), path, &out, &log)
	require.NoError(t, err)

	assert.Equal(t, "eventually\n", out.String())
	assert.Equal(t, 3, backend.calls)
}

func TestRunRetriesExhausted(t *testing.T) {
	path := writePNG(t, t.TempDir())
	backend := &mockBackend{failures: 10}

	cfg := testConfig()
	cfg.AI.MaxRetries = 2

	var out, log bytes.Buffer
	err := Run(context.Background(), backend, &stubRenderer{}, nil, cfg, path, &out, &log)
	assert.ErrorContains(t, err, "after 2 attempts")
	assert.Equal(t, 2, backend.calls)
}

func TestCallWithRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := &mockBackend{failures: 10}
	_, err := callWithRetry(ctx, backend, nil, types.FormatMarkdown, 3)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, backend.calls, "no further attempts after cancellation")
}

func TestRunUppercaseExtension(t *testing.T) {
	dir := t.TempDir()
	img := imaging.New(4, 4, color.Gray{Y: 200})
	path := filepath.Join(dir, "SCAN.PNG")
	require.NoError(t, imaging.Save(img, path))

	backend := &mockBackend{text: "scanned\n"}
	var out, log bytes.Buffer
	err := Run(context.Background(), backend, &stubRenderer{}, nil, testConfig(), path, &out, &log)
	require.NoError(t, err)
	assert.Equal(t, "scanned\n", out.String())
}
