// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rasterize converts PDF pages to encoded page images for the OCR
// stage.
package rasterize

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultDPI balances legibility against API payload size. Dense technical
// documents with small text benefit from 200.
const DefaultDPI = 150

// Renderer produces one encoded PNG per page of a document. Implementations
// other than the MuPDF one exist only in tests.
type Renderer interface {
	Pages(path string, dpi int) ([][]byte, error)
}

// encodePNG serializes a rendered page.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding page: %w", err)
	}
	return buf.Bytes(), nil
}
