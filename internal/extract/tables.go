package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/a3tai/pdf-extractor/internal/output"
	"github.com/a3tai/pdf-extractor/internal/pdf"
	pdferrors "github.com/a3tai/pdf-extractor/internal/pdf/errors"
	"github.com/a3tai/pdf-extractor/internal/pdf/table"
)

// TableExtractor writes every table detected on the selected pages as a
// CSV or JSON artifact
type TableExtractor struct {
	logger   *zap.Logger
	detector *table.Detector
}

// NewTableExtractor creates a table extractor. Detector options tune the
// detection tolerances.
func NewTableExtractor(logger *zap.Logger, opts ...table.Option) *TableExtractor {
	return &TableExtractor{
		logger:   logger.Named("tables"),
		detector: table.NewDetector(opts...),
	}
}

// Mode returns ModeTables
func (e *TableExtractor) Mode() Mode { return ModeTables }

// Extract detects tables page by page. A page with no tables produces no
// artifact; the tables directory is only created once a table is found.
func (e *TableExtractor) Extract(ctx context.Context, req *Request) Result {
	res := Result{Mode: ModeTables}

	doc, err := pdf.Open(req.Source)
	if err != nil {
		res.Err = pdferrors.Mode(string(ModeTables), "open", err)
		return res
	}
	defer doc.Close()

	dirReady := false
	for _, index := range req.Pages.Indices() {
		if err := ctx.Err(); err != nil {
			res.Err = pdferrors.Mode(string(ModeTables), "extract", err)
			return res
		}

		page := index + 1
		layout, err := doc.PageLayout(index)
		if err != nil {
			e.logger.Warn("Page layout failed", zap.Int("page", page), zap.Error(err))
			res.warn(pdferrors.Item(string(ModeTables), page, err))
			continue
		}

		tables := e.detector.Detect(layout)
		e.logger.Debug("Detected tables", zap.Int("page", page), zap.Int("tables", len(tables)))

		for i, tbl := range tables {
			data, err := tbl.Encode(req.TableFormat)
			if err != nil {
				res.Err = pdferrors.Mode(string(ModeTables), "encode", err)
				return res
			}

			if !dirReady {
				if err := output.EnsureDir(req.Layout.TablesDir()); err != nil {
					res.Err = pdferrors.Mode(string(ModeTables), "mkdir", err)
					return res
				}
				dirReady = true
			}

			path := req.Layout.TableFile(page, i+1, req.TableFormat)
			if err := req.Layout.WriteFile(path, data); err != nil {
				e.logger.Warn("Table write failed", zap.Int("page", page), zap.Int("table", i+1), zap.Error(err))
				res.warn(pdferrors.Item(string(ModeTables), page, err))
				continue
			}

			res.Files = append(res.Files, path)
			res.Items++
		}
	}

	return res
}
