package pdf

import (
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// Document is an open PDF read through ledongthuc/pdf. Page indices are
// zero-based throughout.
type Document struct {
	path   string
	file   io.Closer
	reader *pdf.Reader
}

// Open opens path for text and layout access. The caller must Close it.
func Open(path string) (doc *Document, err error) {
	defer func() {
		// ledongthuc/pdf panics on some malformed cross-reference tables
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("failed to open PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	return &Document{path: path, file: f, reader: r}, nil
}

// Path returns the source path
func (d *Document) Path() string { return d.path }

// NumPages returns the number of pages in the document
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// Close releases the underlying file handle
func (d *Document) Close() error {
	return d.file.Close()
}

// page returns the ledongthuc page for a zero-based index
func (d *Document) page(index int) (pdf.Page, error) {
	if index < 0 || index >= d.reader.NumPage() {
		return pdf.Page{}, fmt.Errorf("invalid page index %d (document has %d pages)", index, d.reader.NumPage())
	}
	return d.reader.Page(index + 1), nil
}

// PageText returns the plain text of a page. A page without a content
// dictionary yields an empty string.
func (d *Document) PageText(index int) (text string, err error) {
	page, err := d.page(index)
	if err != nil {
		return "", err
	}
	if page.V.IsNull() {
		return "", nil
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("text extraction failed on page %d: %v", index+1, r)
		}
	}()

	content, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("text extraction failed on page %d: %w", index+1, err)
	}
	return content, nil
}

// PageLayout returns the positioned glyphs and rectangles of a page
func (d *Document) PageLayout(index int) (layout Layout, err error) {
	page, err := d.page(index)
	if err != nil {
		return Layout{}, err
	}
	if page.V.IsNull() {
		return Layout{}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			layout, err = Layout{}, fmt.Errorf("layout extraction failed on page %d: %v", index+1, r)
		}
	}()

	content := page.Content()
	layout.Width, layout.Height = mediaBox(page)

	layout.Glyphs = make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		layout.Glyphs = append(layout.Glyphs, Glyph{
			Font:     t.Font,
			FontSize: t.FontSize,
			X:        t.X,
			Y:        t.Y,
			W:        t.W,
			S:        t.S,
		})
	}

	layout.Rects = make([]Rect, 0, len(content.Rect))
	for _, r := range content.Rect {
		layout.Rects = append(layout.Rects, Rect{
			X0: min(r.Min.X, r.Max.X),
			Y0: min(r.Min.Y, r.Max.Y),
			X1: max(r.Min.X, r.Max.X),
			Y1: max(r.Min.Y, r.Max.Y),
		})
	}

	return layout, nil
}

// mediaBox returns the page dimensions, defaulting to US Letter
func mediaBox(page pdf.Page) (float64, float64) {
	width, height := 612.0, 792.0

	box := page.V.Key("MediaBox")
	if box.Kind() == pdf.Array && box.Len() == 4 {
		width = box.Index(2).Float64() - box.Index(0).Float64()
		height = box.Index(3).Float64() - box.Index(1).Float64()
	}
	return width, height
}
