package table

import (
	"math"
	"sort"
	"strings"

	"github.com/a3tai/pdf-extractor/internal/pdf"
)

// segment is a run of words on one line separated from its neighbours by
// a gap wide enough to be a column boundary
type segment struct {
	X0, X1 float64
	Text   string
}

// textLine is a set of glyphs sharing a baseline
type textLine struct {
	Y        float64
	FontSize float64
	Glyphs   []pdf.Glyph
	Segments []segment
	BBox     pdf.Rect
}

// groupLines groups glyphs into lines ordered top to bottom, each sorted
// left to right
func (d *Detector) groupLines(glyphs []pdf.Glyph) []textLine {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]pdf.Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y-sorted[j].Y) > d.textTolerance {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []textLine
	current := textLine{Y: sorted[0].Y, Glyphs: []pdf.Glyph{sorted[0]}}

	for _, g := range sorted[1:] {
		if math.Abs(g.Y-current.Y) <= d.textTolerance {
			current.Glyphs = append(current.Glyphs, g)
			continue
		}
		lines = append(lines, d.finalizeLine(current))
		current = textLine{Y: g.Y, Glyphs: []pdf.Glyph{g}}
	}
	lines = append(lines, d.finalizeLine(current))

	return lines
}

// finalizeLine orders the glyphs, computes the bounding box and splits the
// line into segments
func (d *Detector) finalizeLine(line textLine) textLine {
	sort.SliceStable(line.Glyphs, func(i, j int) bool {
		return line.Glyphs[i].X < line.Glyphs[j].X
	})

	first := line.Glyphs[0]
	line.BBox = pdf.Rect{X0: first.X, Y0: first.Y, X1: first.X + first.W, Y1: first.Y + first.FontSize}
	for _, g := range line.Glyphs {
		line.FontSize = max(line.FontSize, g.FontSize)
		line.BBox.X0 = min(line.BBox.X0, g.X)
		line.BBox.X1 = max(line.BBox.X1, g.X+g.W)
		line.BBox.Y0 = min(line.BBox.Y0, g.Y)
		line.BBox.Y1 = max(line.BBox.Y1, g.Y+g.FontSize)
	}

	line.Segments = d.splitSegments(line.Glyphs)
	return line
}

// splitSegments joins glyphs into words and words into segments. Whitespace
// glyphs only mark a word break; the gap between visible glyphs decides
// whether the break is also a column boundary.
func (d *Detector) splitSegments(glyphs []pdf.Glyph) []segment {
	var segments []segment
	var text strings.Builder
	var cur *segment
	var lastEnd float64
	pendingSpace := false

	flush := func() {
		if cur != nil {
			cur.Text = strings.TrimSpace(text.String())
			if cur.Text != "" {
				segments = append(segments, *cur)
			}
		}
		cur = nil
		text.Reset()
		pendingSpace = false
	}

	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			pendingSpace = true
			continue
		}

		size := g.FontSize
		if size <= 0 {
			size = 1
		}

		if cur != nil {
			gap := g.X - lastEnd
			switch {
			case gap > d.columnGap*size:
				flush()
			case gap > d.wordGap*size || pendingSpace:
				text.WriteByte(' ')
			}
		}

		if cur == nil {
			cur = &segment{X0: g.X}
		}
		text.WriteString(g.S)
		cur.X1 = g.X + g.W
		lastEnd = cur.X1
		pendingSpace = false
	}
	flush()

	return segments
}

// lineText renders glyphs inside a cell as text, one line per baseline
func (d *Detector) lineText(glyphs []pdf.Glyph) string {
	lines := d.groupLines(glyphs)
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		words := make([]string, 0, len(line.Segments))
		for _, s := range line.Segments {
			words = append(words, s.Text)
		}
		if text := strings.Join(words, " "); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// cluster merges sorted values closer than tol and returns the first value
// of each cluster
func cluster(values []float64, tol float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	out := []float64{sorted[0]}
	last := sorted[0]
	for _, v := range sorted[1:] {
		if v-last > tol {
			out = append(out, v)
		}
		last = v
	}
	return out
}
