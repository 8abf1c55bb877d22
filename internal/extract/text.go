package extract

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/a3tai/pdf-extractor/internal/pdf"
	pdferrors "github.com/a3tai/pdf-extractor/internal/pdf/errors"
)

// TextExtractor writes the plain text of each selected page to one file
type TextExtractor struct {
	logger *zap.Logger
}

// NewTextExtractor creates a text extractor
func NewTextExtractor(logger *zap.Logger) *TextExtractor {
	return &TextExtractor{logger: logger.Named("text")}
}

// Mode returns ModeText
func (e *TextExtractor) Mode() Mode { return ModeText }

// Extract reads every selected page in ascending order. A page that yields
// no text, or fails, is written with an empty body.
func (e *TextExtractor) Extract(ctx context.Context, req *Request) Result {
	res := Result{Mode: ModeText}

	doc, err := pdf.Open(req.Source)
	if err != nil {
		res.Err = pdferrors.Mode(string(ModeText), "open", err)
		return res
	}
	defer doc.Close()

	var b strings.Builder
	for _, index := range req.Pages.Indices() {
		if err := ctx.Err(); err != nil {
			res.Err = pdferrors.Mode(string(ModeText), "extract", err)
			return res
		}

		text, err := doc.PageText(index)
		if err != nil {
			e.logger.Warn("Text extraction failed", zap.Int("page", index+1), zap.Error(err))
			res.warn(pdferrors.Item(string(ModeText), index+1, err))
			text = ""
		}

		e.logger.Debug("Extracted page text", zap.Int("page", index+1), zap.Int("chars", len(text)))
		writePage(&b, index+1, text)
		res.Items++
	}

	path := req.Layout.TextFile()
	if err := req.Layout.WriteFile(path, []byte(b.String())); err != nil {
		res.Err = pdferrors.Mode(string(ModeText), "write", err)
		return res
	}
	res.Files = append(res.Files, path)

	return res
}
