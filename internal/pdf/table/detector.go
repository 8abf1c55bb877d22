package table

import (
	"math"
	"sort"
	"strings"

	"github.com/a3tai/pdf-extractor/internal/pdf"
)

// Detection strategies
const (
	StrategyRuled = "ruled"
	StrategyText  = "text"
)

// Detector finds tables in a page layout. Ruled rectangles are tried first;
// text alignment is used only when no ruled table is found.
type Detector struct {
	snapTolerance float64 // ruling and column anchor merge distance
	textTolerance float64 // baseline distance for glyphs on one line
	wordGap       float64 // gap, in font sizes, that separates words
	columnGap     float64 // gap, in font sizes, that separates columns
	rowGap        float64 // baseline distance, in font sizes, that ends a block
	minRows       int
	minColumns    int
	columnShare   float64 // fraction of lines an anchor must appear in
}

// Option configures a Detector
type Option func(*Detector)

// WithSnapTolerance sets the distance under which rulings and column
// anchors are merged
func WithSnapTolerance(tol float64) Option {
	return func(d *Detector) { d.snapTolerance = tol }
}

// WithTextTolerance sets the baseline distance under which glyphs belong to
// the same line
func WithTextTolerance(tol float64) Option {
	return func(d *Detector) { d.textTolerance = tol }
}

// WithColumnGap sets the horizontal gap, as a multiple of the font size,
// that splits a line into columns
func WithColumnGap(factor float64) Option {
	return func(d *Detector) { d.columnGap = factor }
}

// WithRowGap sets the vertical distance, as a multiple of the font size,
// that separates two text tables
func WithRowGap(factor float64) Option {
	return func(d *Detector) { d.rowGap = factor }
}

// WithMinRows sets the minimum number of rows, header included
func WithMinRows(n int) Option {
	return func(d *Detector) { d.minRows = n }
}

// WithMinColumns sets the minimum number of columns
func WithMinColumns(n int) Option {
	return func(d *Detector) { d.minColumns = n }
}

// NewDetector creates a detector with default tolerances
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		snapTolerance: 3.0,
		textTolerance: 3.0,
		wordGap:       0.2,
		columnGap:     0.9,
		rowGap:        2.5,
		minRows:       2,
		minColumns:    2,
		columnShare:   0.3,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the tables of a page ordered top to bottom
func (d *Detector) Detect(layout pdf.Layout) []Table {
	tables := d.ruledTables(layout)
	if len(tables) == 0 {
		tables = d.textTables(layout)
	}

	sort.SliceStable(tables, func(i, j int) bool {
		if math.Abs(tables[i].BBox.Y1-tables[j].BBox.Y1) > d.snapTolerance {
			return tables[i].BBox.Y1 > tables[j].BBox.Y1
		}
		return tables[i].BBox.X0 < tables[j].BBox.X0
	})
	return tables
}

// ruledTables builds tables from groups of touching rectangles whose edges
// form a grid
func (d *Detector) ruledTables(layout pdf.Layout) []Table {
	var tables []Table

	for _, group := range d.connectedRects(layout.Rects) {
		var xs, ys []float64
		for _, r := range group {
			xs = append(xs, r.X0, r.X1)
			ys = append(ys, r.Y0, r.Y1)
		}
		cols := cluster(xs, d.snapTolerance)
		rows := cluster(ys, d.snapTolerance)
		if len(cols) < 2 || len(rows) < 2 {
			continue
		}

		// Rows are read top to bottom
		sort.Sort(sort.Reverse(sort.Float64Slice(rows)))

		cells := make([][]string, len(rows)-1)
		for i := range cells {
			cells[i] = make([]string, len(cols)-1)
			for j := range cells[i] {
				cell := pdf.Rect{X0: cols[j], Y0: rows[i+1], X1: cols[j+1], Y1: rows[i]}
				cells[i][j] = d.lineText(glyphsIn(layout.Glyphs, cell))
			}
		}

		cells = removeEmptyColumns(removeEmptyRows(cells))
		if len(cells) == 0 || len(cells) < d.minRows || len(cells[0]) < d.minColumns {
			continue
		}

		tables = append(tables, Table{
			Rows:     cells,
			BBox:     pdf.Rect{X0: cols[0], Y0: rows[len(rows)-1], X1: cols[len(cols)-1], Y1: rows[0]},
			Strategy: StrategyRuled,
		})
	}

	return tables
}

// connectedRects partitions rectangles into groups that touch or overlap
func (d *Detector) connectedRects(rects []pdf.Rect) [][]pdf.Rect {
	parent := make([]int, len(rects))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	tol := d.snapTolerance
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			a, b := rects[i], rects[j]
			if a.X0 <= b.X1+tol && b.X0 <= a.X1+tol && a.Y0 <= b.Y1+tol && b.Y0 <= a.Y1+tol {
				parent[find(i)] = find(j)
			}
		}
	}

	order := []int{}
	groups := map[int][]pdf.Rect{}
	for i, r := range rects {
		root := find(i)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], r)
	}

	out := make([][]pdf.Rect, 0, len(order))
	for _, root := range order {
		out = append(out, groups[root])
	}
	return out
}

// textTables finds blocks of consecutive multi-column lines and aligns
// their segments on shared column anchors
func (d *Detector) textTables(layout pdf.Layout) []Table {
	var tables []Table

	for _, block := range d.textBlocks(d.groupLines(layout.Glyphs)) {
		if len(block) < d.minRows {
			continue
		}

		anchors := d.columnAnchors(block)
		if len(anchors) < d.minColumns {
			continue
		}

		rows := make([][]string, len(block))
		bbox := block[0].BBox
		for i, line := range block {
			rows[i] = make([]string, len(anchors))
			for _, s := range line.Segments {
				col := d.findColumn(s.X0, anchors)
				if rows[i][col] != "" {
					rows[i][col] += " "
				}
				rows[i][col] += s.Text
			}

			bbox.X0 = min(bbox.X0, line.BBox.X0)
			bbox.Y0 = min(bbox.Y0, line.BBox.Y0)
			bbox.X1 = max(bbox.X1, line.BBox.X1)
			bbox.Y1 = max(bbox.Y1, line.BBox.Y1)
		}

		rows = removeEmptyColumns(rows)
		if len(rows[0]) < d.minColumns {
			continue
		}

		tables = append(tables, Table{Rows: rows, BBox: bbox, Strategy: StrategyText})
	}

	return tables
}

// textBlocks splits lines into runs of consecutive lines with at least
// minColumns segments and no large vertical gap
func (d *Detector) textBlocks(lines []textLine) [][]textLine {
	var blocks [][]textLine
	var current []textLine

	for _, line := range lines {
		if len(line.Segments) < d.minColumns {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}

		if n := len(current); n > 0 {
			prev := current[n-1]
			limit := d.rowGap * max(prev.FontSize, line.FontSize)
			if prev.Y-line.Y > limit {
				blocks = append(blocks, current)
				current = nil
			}
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}

	return blocks
}

// columnAnchors returns segment start positions shared by enough lines.
// Starts closer than the snap tolerance fall into one anchor placed at the
// leftmost of them.
func (d *Detector) columnAnchors(block []textLine) []float64 {
	type start struct {
		x    float64
		line int
	}
	var starts []start
	for i, line := range block {
		for _, s := range line.Segments {
			starts = append(starts, start{x: s.X0, line: i})
		}
	}
	if len(starts) == 0 {
		return nil
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].x < starts[j].x })

	minCount := max(2, int(math.Ceil(float64(len(block))*d.columnShare)))

	var anchors []float64
	anchor := starts[0].x
	lines := map[int]bool{}
	last := starts[0].x
	emit := func() {
		if len(lines) >= minCount {
			anchors = append(anchors, anchor)
		}
	}

	for _, s := range starts {
		if s.x-last > d.snapTolerance {
			emit()
			anchor = s.x
			lines = map[int]bool{}
		}
		lines[s.line] = true
		last = s.x
	}
	emit()

	return anchors
}

// findColumn returns the rightmost anchor at or before x, or the first
// column when x lies left of every anchor
func (d *Detector) findColumn(x float64, anchors []float64) int {
	col := 0
	for i, a := range anchors {
		if x >= a-d.snapTolerance {
			col = i
		}
	}
	return col
}

// glyphsIn returns the glyphs whose centre lies within cell
func glyphsIn(glyphs []pdf.Glyph, cell pdf.Rect) []pdf.Glyph {
	var out []pdf.Glyph
	for _, g := range glyphs {
		cx := g.X + g.W/2
		cy := g.Y + g.FontSize/3
		if cx >= cell.X0 && cx <= cell.X1 && cy >= cell.Y0 && cy <= cell.Y1 {
			out = append(out, g)
		}
	}
	return out
}

func removeEmptyRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// removeEmptyColumns drops columns that are empty in every row
func removeEmptyColumns(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	hasContent := make([]bool, width)
	for _, row := range rows {
		for i, cell := range row {
			if strings.TrimSpace(cell) != "" {
				hasContent[i] = true
			}
		}
	}

	out := make([][]string, len(rows))
	for r, row := range rows {
		newRow := []string{}
		for i, cell := range row {
			if hasContent[i] {
				newRow = append(newRow, cell)
			}
		}
		out[r] = newRow
	}
	return out
}
