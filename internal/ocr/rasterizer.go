package ocr

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// Rasterizer renders PDF pages to PNG images with MuPDF
type Rasterizer struct {
	doc *fitz.Document
}

// OpenRasterizer opens path for rendering. The caller must Close it.
func OpenRasterizer(path string) (*Rasterizer, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for rendering: %w", err)
	}
	return &Rasterizer{doc: doc}, nil
}

// NumPages returns the number of pages in the document
func (r *Rasterizer) NumPages() int {
	return r.doc.NumPage()
}

// RenderPNG renders the zero-based page index at dpi and encodes it as PNG
func (r *Rasterizer) RenderPNG(index, dpi int) ([]byte, error) {
	if index < 0 || index >= r.doc.NumPage() {
		return nil, fmt.Errorf("invalid page index %d (document has %d pages)", index, r.doc.NumPage())
	}

	img, err := r.doc.ImageDPI(index, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", index+1, err)
	}

	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode page %d: %w", index+1, err)
	}
	return buf.Bytes(), nil
}

// Close releases the document
func (r *Rasterizer) Close() error {
	return r.doc.Close()
}
