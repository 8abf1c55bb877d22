package extract

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/a3tai/pdf-extractor/internal/config"
	"github.com/a3tai/pdf-extractor/internal/output"
	"github.com/a3tai/pdf-extractor/internal/pdf"
	pdferrors "github.com/a3tai/pdf-extractor/internal/pdf/errors"
	"github.com/a3tai/pdf-extractor/internal/pdf/pagerange"
)

// Summary aggregates the results of the requested modes
type Summary struct {
	Source  string
	Pages   pagerange.PageRange
	Results []Result
}

// Failed returns the modes that failed
func (s Summary) Failed() []Mode {
	var failed []Mode
	for _, r := range s.Results {
		if !r.OK() {
			failed = append(failed, r.Mode)
		}
	}
	return failed
}

// ExitCode is ExitOK when every requested mode succeeded
func (s Summary) ExitCode() int {
	if len(s.Failed()) > 0 {
		return pdferrors.ExitFailure
	}
	return pdferrors.ExitOK
}

// Dispatcher validates a run and executes the requested modes in order
type Dispatcher struct {
	logger     *zap.Logger
	out        io.Writer
	extractors map[Mode]Extractor
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithExtractor replaces the extractor for its mode
func WithExtractor(e Extractor) DispatcherOption {
	return func(d *Dispatcher) { d.extractors[e.Mode()] = e }
}

// NewDispatcher creates a dispatcher with the default extractors. Progress
// and the final summary are printed to out.
func NewDispatcher(logger *zap.Logger, out io.Writer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		out:    out,
		extractors: map[Mode]Extractor{
			ModeText:   NewTextExtractor(logger),
			ModeTables: NewTableExtractor(logger),
			ModeImages: NewImageExtractor(logger),
			ModeOCR:    NewOCRExtractor(logger),
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run validates the configuration and the input document, then runs each
// requested mode. Usage and input errors are returned before any output is
// written; mode failures are reported in the Summary.
func (d *Dispatcher) Run(ctx context.Context, cfg *config.Config) (*Summary, error) {
	req, err := d.Prepare(cfg)
	if err != nil {
		return nil, err
	}

	if err := output.EnsureDir(req.Layout.Dir()); err != nil {
		return nil, pdferrors.Input(req.Layout.Dir(), err)
	}

	return d.Execute(ctx, req), nil
}

// Prepare turns a configuration into a Request. It validates the flags,
// inspects the source document and resolves the page selection. Nothing is
// written to disk.
func (d *Dispatcher) Prepare(cfg *config.Config) (*Request, error) {
	modes := requestedModes(cfg)
	if len(modes) == 0 {
		return nil, pdferrors.Usage(pdferrors.ErrNoModes)
	}

	if err := cfg.Validate(); err != nil {
		return nil, pdferrors.Usage(err)
	}

	info, err := pdf.NewValidator(cfg.MaxFileSize).Inspect(cfg.File)
	if err != nil {
		return nil, pdferrors.Input(cfg.File, err)
	}
	d.logger.Debug("Validated input",
		zap.String("file", info.Path),
		zap.Int64("size", info.Size),
		zap.Int("pages", info.Pages))

	pages, err := pagerange.Parse(cfg.Pages, info.Pages)
	if err != nil {
		return nil, pdferrors.Usage(err)
	}

	return &Request{
		Source:      cfg.File,
		Layout:      output.NewLayout(cfg.Output, cfg.File),
		Pages:       pages,
		Modes:       modes,
		TableFormat: cfg.TableFormat,
		OCR: OCRSettings{
			Engine:    cfg.OCREngine,
			DPI:       cfg.OCRDPI,
			Languages: cfg.OCRLanguages,
		},
	}, nil
}

// Execute runs the requested modes in the fixed order. A failing mode never
// stops the ones after it.
func (d *Dispatcher) Execute(ctx context.Context, req *Request) *Summary {
	summary := &Summary{Source: req.Source, Pages: req.Pages}

	for _, mode := range Order {
		if !req.Wants(mode) {
			continue
		}

		extractor, ok := d.extractors[mode]
		if !ok {
			res := Result{Mode: mode, Err: pdferrors.Mode(string(mode), "dispatch", fmt.Errorf("no extractor registered"))}
			summary.Results = append(summary.Results, res)
			d.report(res, 0)
			continue
		}

		d.logger.Info("Running mode",
			zap.String("mode", string(mode)),
			zap.String("file", req.Source),
			zap.String("pages", req.Pages.String()))

		start := time.Now()
		res := extractor.Extract(ctx, req)
		res.Mode = mode

		if res.Err != nil {
			d.logger.Error("Mode failed", zap.String("mode", string(mode)), zap.Error(res.Err))
		}
		summary.Results = append(summary.Results, res)
		d.report(res, time.Since(start))
	}

	d.printSummary(summary)
	return summary
}

// report prints one line per finished mode
func (d *Dispatcher) report(res Result, elapsed time.Duration) {
	status := "ok"
	if !res.OK() {
		status = "FAILED"
	}
	fmt.Fprintf(d.out, "%-7s %-6s items=%d files=%d warnings=%d (%s)\n",
		res.Mode, status, res.Items, len(res.Files), len(res.Warnings), elapsed.Round(time.Millisecond))
	for _, w := range res.Warnings {
		fmt.Fprintf(d.out, "  warning: %s\n", w)
	}
	if res.Err != nil {
		fmt.Fprintf(d.out, "  error: %v\n", res.Err)
	}
}

func (d *Dispatcher) printSummary(s *Summary) {
	failed := s.Failed()
	fmt.Fprintf(d.out, "Processed %d page(s) of %s: %d mode(s) succeeded, %d failed\n",
		s.Pages.Len(), s.Source, len(s.Results)-len(failed), len(failed))
}

func requestedModes(cfg *config.Config) []Mode {
	var modes []Mode
	if cfg.Text {
		modes = append(modes, ModeText)
	}
	if cfg.Tables {
		modes = append(modes, ModeTables)
	}
	if cfg.Images {
		modes = append(modes, ModeImages)
	}
	if cfg.OCR {
		modes = append(modes, ModeOCR)
	}
	return modes
}
