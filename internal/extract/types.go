// Package extract runs the extraction modes over a source document and
// writes their artifacts.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/a3tai/pdf-extractor/internal/output"
	"github.com/a3tai/pdf-extractor/internal/pdf/pagerange"
)

// Mode is an extraction mode
type Mode string

// Extraction modes
const (
	ModeText   Mode = "text"
	ModeTables Mode = "tables"
	ModeImages Mode = "images"
	ModeOCR    Mode = "ocr"
)

// Order is the fixed order modes run in, whatever the flag order
var Order = []Mode{ModeText, ModeTables, ModeImages, ModeOCR}

// OCRSettings configures the OCR mode
type OCRSettings struct {
	Engine    string
	DPI       int
	Languages []string
}

// Request is the resolved, read-only input shared by every extractor
type Request struct {
	Source      string
	Layout      output.Layout
	Pages       pagerange.PageRange
	Modes       []Mode
	TableFormat string
	OCR         OCRSettings
}

// Wants reports whether mode was requested
func (r *Request) Wants(mode Mode) bool {
	for _, m := range r.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// Result is the outcome of one mode
type Result struct {
	Mode     Mode
	Items    int // pages written, tables found or images saved
	Files    []string
	Warnings []string
	Err      error
}

// OK reports whether the mode succeeded
func (r Result) OK() bool { return r.Err == nil }

// warn records a per-item warning
func (r *Result) warn(err error) {
	r.Warnings = append(r.Warnings, err.Error())
}

// Extractor runs a single mode
type Extractor interface {
	Mode() Mode
	Extract(ctx context.Context, req *Request) Result
}

// pageMarker precedes each page in text and OCR output
func pageMarker(pageNumber int) string {
	return fmt.Sprintf("--- Page %d ---\n", pageNumber)
}

// writePage appends one page in marker format: marker, body, blank line
func writePage(b *strings.Builder, pageNumber int, text string) {
	b.WriteString(pageMarker(pageNumber))
	b.WriteString(text)
	b.WriteString("\n\n")
}
