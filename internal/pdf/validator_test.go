package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/a3tai/pdf-extractor/internal/pdf/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Inspect(t *testing.T) {
	dir := t.TempDir()

	valid := pdftest.Doc{Pages: []pdftest.Page{
		pdftest.TextPage("one"),
		pdftest.TextPage("two"),
		pdftest.TextPage("three"),
	}}.Write(t, dir, "valid.pdf")

	// A PDF without the .pdf extension is still accepted
	noExt := filepath.Join(dir, "report")
	data, err := os.ReadFile(valid)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(noExt, data, 0o644))

	empty := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	notPDF := filepath.Join(dir, "notes.pdf")
	require.NoError(t, os.WriteFile(notPDF, []byte("just some text"), 0o644))

	tests := []struct {
		name          string
		path          string
		maxFileSize   int64
		wantPages     int
		errorContains string
	}{
		{name: "valid document", path: valid, maxFileSize: 1 << 20, wantPages: 3},
		{name: "valid document without extension", path: noExt, maxFileSize: 1 << 20, wantPages: 3},
		{name: "empty path", path: "", maxFileSize: 1 << 20, errorContains: "path cannot be empty"},
		{name: "non-existent file", path: filepath.Join(dir, "missing.pdf"), maxFileSize: 1 << 20, errorContains: "file does not exist"},
		{name: "directory", path: dir, maxFileSize: 1 << 20, errorContains: "path is a directory"},
		{name: "empty file", path: empty, maxFileSize: 1 << 20, errorContains: "file is empty"},
		{name: "not a PDF", path: notPDF, maxFileSize: 1 << 20, errorContains: "file is not a PDF"},
		{name: "too large", path: valid, maxFileSize: 10, errorContains: "file too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(tt.maxFileSize)
			info, err := v.Inspect(tt.path)

			if tt.errorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Nil(t, info)
				assert.False(t, v.IsValidPDF(tt.path))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.path, info.Path)
			assert.Equal(t, tt.wantPages, info.Pages)
			assert.Positive(t, info.Size)
			assert.True(t, v.IsValidPDF(tt.path))
		})
	}
}

func TestValidator_CorruptBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\nthis is not a pdf body\n%%EOF\n"), 0o644))

	_, err := NewValidator(1 << 20).Inspect(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PDF file")
}
