// Package pdftest writes small, well-formed PDF documents for tests.
// Pages carry Helvetica text at explicit positions, optional ruled
// rectangles and optional JPEG images.
package pdftest

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// GlyphWidth is the advance width (in 1/1000 em) given to every glyph of
// the embedded font, so text positions are predictable.
const GlyphWidth = 500

// Text is a run of text drawn at X, Y (PDF user space, origin bottom-left).
type Text struct {
	X, Y float64
	Size float64
	S    string
}

// Rect is a stroked rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Image is a JPEG placed at X, Y with the given display size.
type Image struct {
	X, Y, W, H float64
	Pixels     int // square source image edge length
	// Filter overrides the declared stream filter (default /DCTDecode).
	// A mismatching filter makes the image undecodable.
	Filter string
}

// Page describes one page of the document.
type Page struct {
	Texts  []Text
	Rects  []Rect
	Images []Image
	// Thumb, when positive, attaches a JPEG thumbnail of that edge length
	// through the page's /Thumb entry.
	Thumb int
}

// Doc accumulates pages and renders them to PDF bytes.
type Doc struct {
	Pages []Page
	// Info entries (Title, Author, ...) are written to the document
	// information dictionary when set.
	Info map[string]string
}

// TextPage returns a page with a single line of text.
func TextPage(s string) Page {
	return Page{Texts: []Text{{X: 72, Y: 720, Size: 12, S: s}}}
}

// Grid returns texts laid out as a table with the given column x anchors,
// starting at top and moving down by lineHeight per row.
func Grid(rows [][]string, columns []float64, top, lineHeight float64) []Text {
	var texts []Text
	for r, row := range rows {
		y := top - float64(r)*lineHeight
		for c, cell := range row {
			if c >= len(columns) || cell == "" {
				continue
			}
			texts = append(texts, Text{X: columns[c], Y: y, Size: 10, S: cell})
		}
	}
	return texts
}

// Write renders the document into dir/name and returns the path.
func (d Doc) Write(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, d.Bytes(), 0o644); err != nil {
		t.Fatalf("write pdf fixture: %v", err)
	}
	return path
}

// Bytes renders the document.
func (d Doc) Bytes() []byte {
	w := &writer{}
	w.buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	// Object numbering: 1 catalog, 2 pages, 3 font, then per page:
	// page, contents, images...
	const fontObj = 3
	next := 4
	pageObjs := make([]int, len(d.Pages))
	type layout struct {
		page, contents int
		images         []int
		thumb          int
	}
	layouts := make([]layout, len(d.Pages))
	for i, p := range d.Pages {
		l := layout{page: next, contents: next + 1}
		next += 2
		for range p.Images {
			l.images = append(l.images, next)
			next++
		}
		if p.Thumb > 0 {
			l.thumb = next
			next++
		}
		layouts[i] = l
		pageObjs[i] = l.page
	}

	kids := make([]string, len(pageObjs))
	for i, n := range pageObjs {
		kids[i] = fmt.Sprintf("%d 0 R", n)
	}

	w.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	w.object(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pageObjs)))
	w.object(fontObj, fontDict())

	for i, p := range d.Pages {
		l := layouts[i]

		var xobjects []string
		for j, n := range l.images {
			xobjects = append(xobjects, fmt.Sprintf("/Im%d %d 0 R", j+1, n))
		}
		resources := fmt.Sprintf("/Font << /F1 %d 0 R >>", fontObj)
		if len(xobjects) > 0 {
			resources += fmt.Sprintf(" /XObject << %s >>", strings.Join(xobjects, " "))
		}

		thumb := ""
		if l.thumb > 0 {
			thumb = fmt.Sprintf(" /Thumb %d 0 R", l.thumb)
		}
		w.object(l.page, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << %s >> /Contents %d 0 R%s >>",
			resources, l.contents, thumb))
		w.stream(l.contents, "", contentStream(p))

		for j, img := range p.Images {
			w.stream(l.images[j], imageDict(img.Pixels, img.Filter), jpegBytes(img.Pixels))
		}
		if l.thumb > 0 {
			w.stream(l.thumb, imageDict(p.Thumb, ""), jpegBytes(p.Thumb))
		}
	}

	infoObj := 0
	if len(d.Info) > 0 {
		infoObj = next
		next++
		keys := make([]string, 0, len(d.Info))
		for k := range d.Info {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]string, len(keys))
		for i, k := range keys {
			entries[i] = fmt.Sprintf("/%s (%s)", k, escape(d.Info[k]))
		}
		w.object(infoObj, "<< "+strings.Join(entries, " ")+" >>")
	}

	return w.finish(next, infoObj)
}

func imageDict(pixels int, filter string) string {
	if pixels <= 0 {
		pixels = 8
	}
	if filter == "" {
		filter = "/DCTDecode"
	}
	return fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d "+
		"/ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter %s", pixels, pixels, filter)
}

func fontDict() string {
	widths := make([]string, 0, 95)
	for c := 32; c <= 126; c++ {
		widths = append(widths, fmt.Sprint(GlyphWidth))
	}
	return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding "+
		"/FirstChar 32 /LastChar 126 /Widths [%s] >>", strings.Join(widths, " "))
}

func contentStream(p Page) []byte {
	var b bytes.Buffer
	for _, r := range p.Rects {
		fmt.Fprintf(&b, "%.2f %.2f %.2f %.2f re S\n", r.X, r.Y, r.W, r.H)
	}
	for _, t := range p.Texts {
		size := t.Size
		if size == 0 {
			size = 12
		}
		fmt.Fprintf(&b, "BT /F1 %.2f Tf 1 0 0 1 %.2f %.2f Tm (%s) Tj ET\n", size, t.X, t.Y, escape(t.S))
	}
	for j, img := range p.Images {
		fmt.Fprintf(&b, "q %.2f 0 0 %.2f %.2f %.2f cm /Im%d Do Q\n", img.W, img.H, img.X, img.Y, j+1)
	}
	return b.Bytes()
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

func jpegBytes(n int) []byte {
	if n <= 0 {
		n = 8
	}
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / n), G: uint8(y * 255 / n), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

type writer struct {
	buf     bytes.Buffer
	offsets map[int]int
}

func (w *writer) object(num int, body string) {
	w.mark(num)
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

func (w *writer) stream(num int, dict string, data []byte) {
	w.mark(num)
	fmt.Fprintf(&w.buf, "%d 0 obj\n<< %s /Length %d >>\nstream\n", num, dict, len(data))
	w.buf.Write(data)
	w.buf.WriteString("\nendstream\nendobj\n")
}

func (w *writer) mark(num int) {
	if w.offsets == nil {
		w.offsets = make(map[int]int)
	}
	w.offsets[num] = w.buf.Len()
}

func (w *writer) finish(size, info int) []byte {
	xref := w.buf.Len()
	fmt.Fprintf(&w.buf, "xref\n0 %d\n", size)
	w.buf.WriteString("0000000000 65535 f \n")
	for i := 1; i < size; i++ {
		fmt.Fprintf(&w.buf, "%010d 00000 n \n", w.offsets[i])
	}
	trailer := fmt.Sprintf("/Size %d /Root 1 0 R", size)
	if info > 0 {
		trailer += fmt.Sprintf(" /Info %d 0 R", info)
	}
	fmt.Fprintf(&w.buf, "trailer\n<< %s >>\nstartxref\n%d\n%%%%EOF\n", trailer, xref)
	return w.buf.Bytes()
}
