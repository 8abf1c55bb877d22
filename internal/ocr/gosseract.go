//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"strconv"

	"github.com/otiai10/gosseract/v2"
)

// EngineGosseract is the name of the libtesseract engine
const EngineGosseract = "gosseract"

func init() {
	Register(EngineGosseract, func() Engine { return NewGosseractEngine() })
}

// GosseractEngine recognises text through libtesseract bindings
type GosseractEngine struct {
	clientFactory func() *gosseract.Client
}

// NewGosseractEngine constructs a libtesseract-backed engine
func NewGosseractEngine() *GosseractEngine {
	return &GosseractEngine{clientFactory: gosseract.NewClient}
}

// Name returns the engine name
func (e *GosseractEngine) Name() string { return EngineGosseract }

// Available is always nil; the library is linked into the binary
func (e *GosseractEngine) Available() error { return nil }

// Recognize performs OCR on a single page image
func (e *GosseractEngine) Recognize(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	c := e.clientFactory()
	defer c.Close()

	// Preserve column spacing in the recognised text
	if err := c.SetVariable("preserve_interword_spaces", "1"); err != nil {
		return Result{}, fmt.Errorf("set variable: %w", err)
	}
	if err := c.SetImageFromBytes(in.Image); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(in.DPI)); err != nil {
			return Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize page %d: %w", in.PageIndex+1, err)
	}
	return Result{PageIndex: in.PageIndex, Text: text}, nil
}
