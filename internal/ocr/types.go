// Package ocr rasterises PDF pages and runs text recognition on them.
package ocr

import "context"

// Input is a single rendered page submitted for recognition
type Input struct {
	// Image is the PNG encoded page
	Image []byte
	// PageIndex is the zero-based page the image was rendered from
	PageIndex int
	// DPI is the resolution the page was rendered at
	DPI int
	// Languages are tesseract language codes, e.g. "eng", "deu"
	Languages []string
}

// Result is the recognised text of one input
type Result struct {
	PageIndex int
	Text      string
}

// Engine recognises text in a page image
type Engine interface {
	// Name returns the engine name used in configuration
	Name() string

	// Available returns nil when the engine can run, or an error wrapping
	// ErrEngineUnavailable that names the missing dependency.
	Available() error

	// Recognize runs recognition on one input
	Recognize(ctx context.Context, in Input) (Result, error)
}
