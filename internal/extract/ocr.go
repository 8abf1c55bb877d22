package extract

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/a3tai/pdf-extractor/internal/ocr"
	pdferrors "github.com/a3tai/pdf-extractor/internal/pdf/errors"
)

// OCRExtractor rasterises each selected page and recognises its text
type OCRExtractor struct {
	logger *zap.Logger
	engine ocr.Engine
}

// OCROption configures an OCRExtractor
type OCROption func(*OCRExtractor)

// WithEngine uses engine instead of looking one up by name
func WithEngine(engine ocr.Engine) OCROption {
	return func(e *OCRExtractor) { e.engine = engine }
}

// NewOCRExtractor creates an OCR extractor
func NewOCRExtractor(logger *zap.Logger, opts ...OCROption) *OCRExtractor {
	e := &OCRExtractor{logger: logger.Named("ocr")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mode returns ModeOCR
func (e *OCRExtractor) Mode() Mode { return ModeOCR }

// Extract checks the engine before touching the document, so a missing
// engine fails this mode alone and leaves no artifact behind.
func (e *OCRExtractor) Extract(ctx context.Context, req *Request) Result {
	res := Result{Mode: ModeOCR}

	engine := e.engine
	if engine == nil {
		var err error
		engine, err = ocr.Lookup(req.OCR.Engine)
		if err != nil {
			res.Err = pdferrors.Mode(string(ModeOCR), "engine", err)
			return res
		}
	}
	if err := engine.Available(); err != nil {
		res.Err = pdferrors.Mode(string(ModeOCR), "engine", err)
		return res
	}

	raster, err := ocr.OpenRasterizer(req.Source)
	if err != nil {
		res.Err = pdferrors.Mode(string(ModeOCR), "open", err)
		return res
	}
	defer raster.Close()

	var b strings.Builder
	for _, index := range req.Pages.Indices() {
		if err := ctx.Err(); err != nil {
			res.Err = pdferrors.Mode(string(ModeOCR), "recognize", err)
			return res
		}

		text, err := e.recognizePage(ctx, engine, raster, index, req.OCR)
		if err != nil {
			if ctx.Err() != nil {
				res.Err = pdferrors.Mode(string(ModeOCR), "recognize", ctx.Err())
				return res
			}
			e.logger.Warn("OCR failed", zap.Int("page", index+1), zap.Error(err))
			res.warn(pdferrors.Item(string(ModeOCR), index+1, err))
			text = ""
		}

		writePage(&b, index+1, text)
		res.Items++
	}

	path := req.Layout.OCRFile()
	if err := req.Layout.WriteFile(path, []byte(b.String())); err != nil {
		res.Err = pdferrors.Mode(string(ModeOCR), "write", err)
		return res
	}
	res.Files = append(res.Files, path)

	return res
}

func (e *OCRExtractor) recognizePage(ctx context.Context, engine ocr.Engine, raster *ocr.Rasterizer, index int, settings OCRSettings) (string, error) {
	img, err := raster.RenderPNG(index, settings.DPI)
	if err != nil {
		return "", err
	}
	e.logger.Debug("Rendered page", zap.Int("page", index+1), zap.Int("dpi", settings.DPI), zap.Int("bytes", len(img)))

	result, err := engine.Recognize(ctx, ocr.Input{
		Image:     img,
		PageIndex: index,
		DPI:       settings.DPI,
		Languages: settings.Languages,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimRight(result.Text, "\n"), nil
}
