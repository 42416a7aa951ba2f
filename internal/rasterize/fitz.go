// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rasterize

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// FitzRenderer rasterizes PDFs through MuPDF.
type FitzRenderer struct{}

var _ Renderer = FitzRenderer{}

// Pages renders every page of the PDF at path to a PNG byte string at the
// given DPI. A dpi of zero or less falls back to DefaultDPI.
func (FitzRenderer) Pages(path string, dpi int) ([][]byte, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer doc.Close()

	pages := make([][]byte, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.ImageDPI(n, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("rendering page %d: %w", n+1, err)
		}

		data, err := encodePNG(img)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", n+1, err)
		}
		pages = append(pages, data)
	}

	return pages, nil
}
