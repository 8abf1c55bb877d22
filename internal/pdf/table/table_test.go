package table

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_EncodeCSV(t *testing.T) {
	tbl := Table{Rows: [][]string{{"Name", "Age"}, {"John", "35"}}}

	data, err := tbl.Encode(FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "Name,Age\nJohn,35\n", string(data))
}

func TestTable_EncodeJSON(t *testing.T) {
	tbl := Table{Rows: [][]string{{"Name", "Age"}, {"John", "35"}}}

	data, err := tbl.Encode(FormatJSON)
	require.NoError(t, err)

	var compact bytes.Buffer
	require.NoError(t, json.Compact(&compact, data))
	assert.Equal(t, `[{"Name":"John","Age":"35"}]`, compact.String())

	// Two-space indentation, header order preserved
	assert.Equal(t, "[\n  {\n    \"Name\": \"John\",\n    \"Age\": \"35\"\n  }\n]\n", string(data))
}

func TestTable_EncodeDeterministic(t *testing.T) {
	tbl := Table{Rows: [][]string{{"b", "a", "c"}, {"1", "2", "3"}, {"4", "5", "6"}}}

	for _, format := range []string{FormatCSV, FormatJSON} {
		first, err := tbl.Encode(format)
		require.NoError(t, err)
		second, err := tbl.Encode(format)
		require.NoError(t, err)
		assert.Equal(t, first, second, format)
	}
}

func TestTable_EncodeUnsupported(t *testing.T) {
	_, err := Table{}.Encode("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported table format")
}

func TestTable_CSVQuotingAndPadding(t *testing.T) {
	tbl := Table{Rows: [][]string{
		{"City", "Note", "Extra"},
		{"New York, NY", `said "hi"`},
	}}

	data, err := tbl.Encode(FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "City,Note,Extra\n\"New York, NY\",\"said \"\"hi\"\"\",\n", string(data))
}

func TestTable_JSONHeaderOnly(t *testing.T) {
	data, err := Table{Rows: [][]string{{"Name", "Age"}}}.Encode(FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	data, err = Table{}.Encode(FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestTable_JSONRaggedRows(t *testing.T) {
	tbl := Table{Rows: [][]string{
		{"Name"},
		{"John", "35"},
	}}

	data, err := tbl.Encode(FormatJSON)
	require.NoError(t, err)

	var compact bytes.Buffer
	require.NoError(t, json.Compact(&compact, data))
	assert.Equal(t, `[{"Name":"John","col2":"35"}]`, compact.String())
}

func TestKeys(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		width  int
		want   []string
	}{
		{"plain", []string{"Name", "Age"}, 2, []string{"Name", "Age"}},
		{"empty cell", []string{"Name", ""}, 2, []string{"Name", "col2"}},
		{"duplicate", []string{"Qty", "Qty", "Qty"}, 3, []string{"Qty", "Qty_2", "Qty_3"}},
		{"missing cells", []string{"A"}, 3, []string{"A", "col2", "col3"}},
		{"fallback collides with header", []string{"col2", ""}, 2, []string{"col2", "col2_2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Keys(tt.header, tt.width))
		})
	}
}

func TestTable_Accessors(t *testing.T) {
	tbl := Table{Rows: [][]string{{"a"}, {"b", "c", "d"}}}
	assert.Equal(t, []string{"a"}, tbl.Header())
	assert.Equal(t, 3, tbl.NumColumns())
	assert.Nil(t, Table{}.Header())
}
