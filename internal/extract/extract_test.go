package extract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/image/tiff"

	"github.com/a3tai/pdf-extractor/internal/config"
	"github.com/a3tai/pdf-extractor/internal/ocr"
	"github.com/a3tai/pdf-extractor/internal/pdf"
	pdferrors "github.com/a3tai/pdf-extractor/internal/pdf/errors"
	"github.com/a3tai/pdf-extractor/internal/pdf/pdftest"
)

// fakeEngine is an OCR engine whose availability and output are fixed
type fakeEngine struct {
	unavailable bool
	calls       int
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Available() error {
	if f.unavailable {
		return pdferrors.ErrEngineUnavailable
	}
	return nil
}

func (f *fakeEngine) Recognize(_ context.Context, in ocr.Input) (ocr.Result, error) {
	f.calls++
	return ocr.Result{PageIndex: in.PageIndex, Text: "recognized page " + strconv.Itoa(in.PageIndex+1) + "\n"}, nil
}

// fixture writes a document with text on every page, a table on page 1
// and two images on page 3
func fixture(t *testing.T, dir string) string {
	t.Helper()
	doc := pdftest.Doc{Pages: []pdftest.Page{
		{Texts: append(
			[]pdftest.Text{{X: 72, Y: 760, Size: 12, S: "page one"}},
			pdftest.Grid([][]string{{"Name", "Age"}, {"John", "35"}}, []float64{72, 200}, 700, 20)...,
		)},
		pdftest.TextPage("page two"),
		{
			Texts: []pdftest.Text{{X: 72, Y: 720, Size: 12, S: "page three"}},
			Images: []pdftest.Image{
				{X: 72, Y: 400, W: 100, H: 100, Pixels: 16},
				{X: 300, Y: 400, W: 100, H: 100, Pixels: 16},
			},
		},
		pdftest.TextPage("page four"),
		pdftest.TextPage("page five"),
	}}
	return doc.Write(t, dir, "My Report.pdf")
}

func newConfig(file, out string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.File = file
	cfg.Output = out
	return cfg
}

// listFiles returns every file under dir relative to it
func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(dir, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

func TestDispatcher_TextSinglePage(t *testing.T) {
	dir := t.TempDir()
	src := fixture(t, dir)
	out := filepath.Join(dir, "out")

	cfg := newConfig(src, out)
	cfg.Text = true
	cfg.Pages = "2"

	var stdout bytes.Buffer
	summary, err := NewDispatcher(zap.NewNop(), &stdout).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, pdferrors.ExitOK, summary.ExitCode())

	assert.Equal(t, []string{"My_Report_text.txt"}, listFiles(t, out))

	data, err := os.ReadFile(filepath.Join(out, "My_Report_text.txt"))
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "--- Page 2 ---\n"))
	assert.Equal(t, 1, strings.Count(text, "--- Page"))
	assert.Contains(t, text, "page two")
	assert.NotContains(t, text, "page one")
	assert.True(t, strings.HasSuffix(text, "\n\n"))
}

func TestDispatcher_TextEmptyPage(t *testing.T) {
	dir := t.TempDir()
	src := pdftest.Doc{Pages: []pdftest.Page{
		pdftest.TextPage("first"),
		{},
		pdftest.TextPage("third"),
	}}.Write(t, dir, "gap.pdf")
	out := filepath.Join(dir, "out")

	cfg := newConfig(src, out)
	cfg.Text = true

	summary, err := NewDispatcher(zap.NewNop(), &bytes.Buffer{}).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, pdferrors.ExitOK, summary.ExitCode())
	assert.Equal(t, 3, summary.Results[0].Items)

	data, err := os.ReadFile(filepath.Join(out, "gap_text.txt"))
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "--- Page 2 ---\n\n\n--- Page 3 ---\n")
	assert.Equal(t, 3, strings.Count(text, "--- Page"))
	assert.Less(t, strings.Index(text, "first"), strings.Index(text, "--- Page 2 ---"))
}

func TestDispatcher_ModeIsolation(t *testing.T) {
	dir := t.TempDir()
	src := fixture(t, dir)
	out := filepath.Join(dir, "out")

	cfg := newConfig(src, out)
	cfg.Text = true
	cfg.Tables = true
	cfg.OCR = true

	engine := &fakeEngine{unavailable: true}
	var stdout bytes.Buffer
	d := NewDispatcher(zap.NewNop(), &stdout,
		WithExtractor(NewOCRExtractor(zap.NewNop(), WithEngine(engine))))

	summary, err := d.Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, summary.Results, 3)
	assert.Equal(t, ModeText, summary.Results[0].Mode)
	assert.True(t, summary.Results[0].OK())
	assert.Equal(t, ModeTables, summary.Results[1].Mode)
	assert.True(t, summary.Results[1].OK())
	assert.Equal(t, ModeOCR, summary.Results[2].Mode)
	assert.False(t, summary.Results[2].OK())
	assert.ErrorIs(t, summary.Results[2].Err, pdferrors.ErrEngineUnavailable)

	assert.Equal(t, []Mode{ModeOCR}, summary.Failed())
	assert.Equal(t, pdferrors.ExitFailure, summary.ExitCode())
	assert.Zero(t, engine.calls)

	assert.Equal(t, []string{
		"My_Report_tables/page1_table1.csv",
		"My_Report_text.txt",
	}, listFiles(t, out))

	csv, err := os.ReadFile(filepath.Join(out, "My_Report_tables", "page1_table1.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Name,Age\nJohn,35\n", string(csv))

	assert.Contains(t, stdout.String(), "FAILED")
	assert.Contains(t, stdout.String(), "2 mode(s) succeeded, 1 failed")
}

func TestDispatcher_FixedOrder(t *testing.T) {
	dir := t.TempDir()
	src := fixture(t, dir)

	cfg := newConfig(src, filepath.Join(dir, "out"))
	cfg.OCR = true
	cfg.Images = true
	cfg.Text = true
	cfg.Tables = true

	var stdout bytes.Buffer
	d := NewDispatcher(zap.NewNop(), &stdout,
		WithExtractor(NewOCRExtractor(zap.NewNop(), WithEngine(&fakeEngine{}))))

	summary, err := d.Run(context.Background(), cfg)
	require.NoError(t, err)

	var modes []Mode
	for _, r := range summary.Results {
		modes = append(modes, r.Mode)
	}
	assert.Equal(t, Order, modes)
}

func TestDispatcher_ZeroTablesAndImages(t *testing.T) {
	dir := t.TempDir()
	src := fixture(t, dir)
	out := filepath.Join(dir, "out")

	cfg := newConfig(src, out)
	cfg.Tables = true
	cfg.Images = true
	cfg.Pages = "2,4-5"

	summary, err := NewDispatcher(zap.NewNop(), &bytes.Buffer{}).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, pdferrors.ExitOK, summary.ExitCode())

	for _, r := range summary.Results {
		assert.True(t, r.OK(), r.Mode)
		assert.Zero(t, r.Items, r.Mode)
		assert.Empty(t, r.Files, r.Mode)
		assert.Empty(t, r.Warnings, r.Mode)
	}
	assert.Empty(t, listFiles(t, out))
	assert.NoDirExists(t, filepath.Join(out, "My_Report_tables"))
	assert.NoDirExists(t, filepath.Join(out, "My_Report_images"))
}

func TestDispatcher_Images(t *testing.T) {
	dir := t.TempDir()
	src := fixture(t, dir)
	out := filepath.Join(dir, "out")

	cfg := newConfig(src, out)
	cfg.Images = true

	summary, err := NewDispatcher(zap.NewNop(), &bytes.Buffer{}).Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, 2, summary.Results[0].Items)

	assert.Equal(t, []string{
		"My_Report_images/page3_image1.jpg",
		"My_Report_images/page3_image2.jpg",
	}, listFiles(t, out))
}

func TestDispatcher_ImagesBrokenImage(t *testing.T) {
	dir := t.TempDir()
	src := pdftest.Doc{Pages: []pdftest.Page{{
		Images: []pdftest.Image{
			{X: 72, Y: 400, W: 100, H: 100, Pixels: 16},
			{X: 300, Y: 400, W: 100, H: 100, Pixels: 24, Filter: "/LZWDecode"},
			{X: 72, Y: 100, W: 100, H: 100, Pixels: 32},
		},
	}}}.Write(t, dir, "mixed.pdf")
	out := filepath.Join(dir, "out")

	cfg := newConfig(src, out)
	cfg.Images = true

	summary, err := NewDispatcher(zap.NewNop(), &bytes.Buffer{}).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, pdferrors.ExitOK, summary.ExitCode())

	res := summary.Results[0]
	assert.True(t, res.OK())
	assert.Equal(t, 2, res.Items)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "page 1")

	// The broken image keeps its ordinal
	assert.Equal(t, []string{
		"mixed_images/page1_image1.jpg",
		"mixed_images/page1_image3.jpg",
	}, listFiles(t, out))
}

func TestDispatcher_OCR(t *testing.T) {
	dir := t.TempDir()
	src := fixture(t, dir)
	out := filepath.Join(dir, "out")

	cfg := newConfig(src, out)
	cfg.OCR = true
	cfg.OCRDPI = 72
	cfg.Pages = "1,3"

	engine := &fakeEngine{}
	d := NewDispatcher(zap.NewNop(), &bytes.Buffer{},
		WithExtractor(NewOCRExtractor(zap.NewNop(), WithEngine(engine))))

	summary, err := d.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, pdferrors.ExitOK, summary.ExitCode())
	assert.Equal(t, 2, engine.calls)

	data, err := os.ReadFile(filepath.Join(out, "My_Report_ocr.txt"))
	require.NoError(t, err)
	assert.Equal(t,
		"--- Page 1 ---\nrecognized page 1\n\n--- Page 3 ---\nrecognized page 3\n\n",
		string(data))
}

func TestDispatcher_Idempotent(t *testing.T) {
	dir := t.TempDir()
	src := fixture(t, dir)
	out := filepath.Join(dir, "out")

	cfg := newConfig(src, out)
	cfg.Text = true
	cfg.Tables = true
	cfg.Images = true
	cfg.TableFormat = config.TableFormatJSON

	run := func() map[string][]byte {
		_, err := NewDispatcher(zap.NewNop(), &bytes.Buffer{}).Run(context.Background(), cfg)
		require.NoError(t, err)

		contents := map[string][]byte{}
		for _, f := range listFiles(t, out) {
			data, err := os.ReadFile(filepath.Join(out, f))
			require.NoError(t, err)
			contents[f] = data
		}
		return contents
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
	assert.Contains(t, first, "My_Report_tables/page1_table1.json")
}

func TestDispatcher_UsageAndInputErrors(t *testing.T) {
	dir := t.TempDir()
	src := fixture(t, dir)

	tests := []struct {
		name     string
		mutate   func(*config.Config)
		wantKind pdferrors.Kind
		wantExit int
		contains string
	}{
		{
			name:     "no modes",
			mutate:   func(c *config.Config) {},
			wantKind: pdferrors.KindUsage,
			wantExit: pdferrors.ExitUsage,
			contains: "no extraction mode selected",
		},
		{
			name:     "page out of range",
			mutate:   func(c *config.Config) { c.Text = true; c.Pages = "1-3,5,7" },
			wantKind: pdferrors.KindUsage,
			wantExit: pdferrors.ExitUsage,
			contains: `token "7"`,
		},
		{
			name:     "malformed page spec",
			mutate:   func(c *config.Config) { c.Text = true; c.Pages = "1,x" },
			wantKind: pdferrors.KindUsage,
			wantExit: pdferrors.ExitUsage,
			contains: `token "x"`,
		},
		{
			name:     "missing file",
			mutate:   func(c *config.Config) { c.Text = true; c.File = filepath.Join(dir, "missing.pdf") },
			wantKind: pdferrors.KindInput,
			wantExit: pdferrors.ExitFailure,
			contains: "file does not exist",
		},
		{
			name:     "bad table format",
			mutate:   func(c *config.Config) { c.Tables = true; c.TableFormat = "xml" },
			wantKind: pdferrors.KindUsage,
			wantExit: pdferrors.ExitUsage,
			contains: "invalid table format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out")
			cfg := newConfig(src, out)
			tt.mutate(cfg)

			summary, err := NewDispatcher(zap.NewNop(), &bytes.Buffer{}).Run(context.Background(), cfg)
			require.Error(t, err)
			assert.Nil(t, summary)
			assert.Equal(t, tt.wantKind, pdferrors.KindOf(err))
			assert.Equal(t, tt.wantExit, pdferrors.ExitCode(err))
			assert.Contains(t, err.Error(), tt.contains)

			// Nothing is written on usage or input errors
			assert.NoDirExists(t, out)
		})
	}
}

func TestDispatcher_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	src := fixture(t, dir)

	cfg := newConfig(src, filepath.Join(dir, "out"))
	cfg.Text = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := NewDispatcher(zap.NewNop(), &bytes.Buffer{}).Run(ctx, cfg)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.ErrorIs(t, summary.Results[0].Err, context.Canceled)
	assert.Equal(t, pdferrors.ExitFailure, summary.ExitCode())
}

func TestEncodeImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.Set(1, 1, color.RGBA{R: 255, A: 255})
	var tif bytes.Buffer
	require.NoError(t, tiff.Encode(&tif, src, nil))

	ext, data, err := encodeImage(pdf.ImageAsset{Name: "Im1", Format: "tif", Data: tif.Bytes()})
	require.NoError(t, err)
	assert.Equal(t, "png", ext)
	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 4, decoded.Bounds().Dx())

	ext, data, err = encodeImage(pdf.ImageAsset{Name: "Im2", Format: "jpg", Data: []byte{0xff, 0xd8}})
	require.NoError(t, err)
	assert.Equal(t, "jpg", ext)
	assert.Equal(t, []byte{0xff, 0xd8}, data)

	_, _, err = encodeImage(pdf.ImageAsset{Name: "Im3", Format: "", Data: []byte{1}})
	assert.ErrorContains(t, err, "unsupported encoding")

	_, _, err = encodeImage(pdf.ImageAsset{Name: "Im4", Format: "tif", Data: []byte("not a tiff")})
	assert.ErrorContains(t, err, "failed to decode TIFF")

	_, _, err = encodeImage(pdf.ImageAsset{Name: "Im5", Format: "png"})
	assert.ErrorContains(t, err, "has no data")
}

func TestRequest_Wants(t *testing.T) {
	req := &Request{Modes: []Mode{ModeText, ModeOCR}}
	assert.True(t, req.Wants(ModeText))
	assert.True(t, req.Wants(ModeOCR))
	assert.False(t, req.Wants(ModeTables))
}
