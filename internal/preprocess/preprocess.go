// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package preprocess improves scanned and photographed pages before they
// are sent to a vision LLM. The pipeline is auto-contrast followed by a
// light sharpen: enough to recover faint pencil strokes and uneven photos
// without destroying the colour information annotated notes rely on.
// Grayscale conversion and binarisation are deliberately absent.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/pdiddy/ocr-engine/pkg/types"
)

// ForOCR runs the preprocessing pipeline on one encoded page image and
// returns the result as PNG bytes. Any format imaging can decode is
// accepted on input.
func ForOCR(data []byte, cfg types.PreprocessConfig) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding page image: %w", err)
	}

	out := Sharpen(AutoContrast(img, cfg.ContrastCutoff), cfg.SharpenSigma)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding page image: %w", err)
	}
	return buf.Bytes(), nil
}

// AutoContrast stretches the luminance histogram so the darkest pixels map
// to black and the lightest to white. cutoff is the fraction of pixels
// ignored at each end, so a few specks of dirt or specular highlights do
// not compress the useful tonal range.
func AutoContrast(img image.Image, cutoff float64) *image.NRGBA {
	if cutoff < 0 {
		cutoff = 0
	}

	lo, hi := histogramBounds(imaging.Histogram(img), cutoff)
	if hi <= lo {
		return imaging.Clone(img)
	}

	scale := 255.0 / float64(hi-lo)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.R = stretch(c.R, lo, scale)
		c.G = stretch(c.G, lo, scale)
		c.B = stretch(c.B, lo, scale)
		return c
	})
}

// Sharpen crispens symbol edges. A small sigma keeps fine strokes in
// mathematical notation from thickening.
func Sharpen(img image.Image, sigma float64) *image.NRGBA {
	if sigma <= 0 {
		return imaging.Clone(img)
	}
	return imaging.Sharpen(img, sigma)
}

// histogramBounds finds the luminance levels where the cumulative
// histogram crosses cutoff from the bottom and from the top.
func histogramBounds(hist [256]float64, cutoff float64) (lo, hi int) {
	cum := 0.0
	lo = 0
	for i, v := range hist {
		cum += v
		if cum > cutoff {
			lo = i
			break
		}
	}

	cum = 0.0
	hi = 255
	for i := 255; i >= 0; i-- {
		cum += hist[i]
		if cum > cutoff {
			hi = i
			break
		}
	}

	return lo, hi
}

func stretch(v uint8, lo int, scale float64) uint8 {
	s := (float64(v) - float64(lo)) * scale
	if s < 0 {
		return 0
	}
	if s > 255 {
		return 255
	}
	return uint8(s + 0.5)
}
