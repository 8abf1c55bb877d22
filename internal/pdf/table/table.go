// Package table detects tabular regions on a PDF page and serialises them.
package table

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/a3tai/pdf-extractor/internal/pdf"
)

// Supported serialisation formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Table is a detected table. The first row is the header.
type Table struct {
	Rows     [][]string `json:"rows"`
	BBox     pdf.Rect   `json:"bbox"`
	Strategy string     `json:"strategy"` // "ruled" or "text"
}

// Header returns the first row, or nil for an empty table
func (t Table) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// NumColumns returns the width of the widest row
func (t Table) NumColumns() int {
	n := 0
	for _, row := range t.Rows {
		n = max(n, len(row))
	}
	return n
}

// Encode serialises the table in the given format
func (t Table) Encode(format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case FormatCSV:
		err = t.WriteCSV(&buf)
	case FormatJSON:
		err = t.WriteJSON(&buf)
	default:
		return nil, fmt.Errorf("unsupported table format: %s", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV writes the rows comma-delimited with \n line endings. Short rows
// are padded so every record has the same number of fields.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	width := t.NumColumns()

	for _, row := range t.Rows {
		if err := cw.Write(pad(row, width)); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// WriteJSON writes an array of objects keyed by the header row, keys in
// header order, indented with two spaces.
func (t Table) WriteJSON(w io.Writer) error {
	records := make([]record, 0, max(len(t.Rows)-1, 0))
	if len(t.Rows) > 0 {
		width := t.NumColumns()
		keys := Keys(t.Rows[0], width)
		for _, row := range t.Rows[1:] {
			records = append(records, record{keys: keys, values: pad(row, width)})
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal table: %w", err)
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// Keys turns a header row into unique object keys for width columns. An
// empty or missing cell becomes col<K> and a repeated name becomes
// <name>_<K>, K being the 1-based column number.
func Keys(header []string, width int) []string {
	keys := make([]string, width)
	seen := make(map[string]bool, width)

	for i := range keys {
		k := strconv.Itoa(i + 1)

		var key string
		if i < len(header) && header[i] != "" {
			key = header[i]
			if seen[key] {
				key = header[i] + "_" + k
			}
		} else {
			key = "col" + k
		}

		for seen[key] {
			key += "_" + k
		}
		seen[key] = true
		keys[i] = key
	}
	return keys
}

// record is one JSON object whose fields keep the header order
type record struct {
	keys   []string
	values []string
}

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
