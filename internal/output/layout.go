// Package output derives deterministic artifact paths for an extraction run
// and keeps every artifact inside the configured output directory.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DirPerm is used for the output directory and per-mode subdirectories.
const DirPerm = 0o750

var unsafeChars = regexp.MustCompile(`[^\w\-.]`)

// SanitizeFilename replaces every character outside [A-Za-z0-9_.-] with '_'.
func SanitizeFilename(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// Layout names the artifacts produced for one source document
type Layout struct {
	dir  string
	name string
}

// NewLayout creates the layout for sourcePath under dir. The artifact base
// name is the sanitized file stem of sourcePath.
func NewLayout(dir, sourcePath string) Layout {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return Layout{
		dir:  filepath.Clean(dir),
		name: SanitizeFilename(stem),
	}
}

// Dir returns the output directory
func (l Layout) Dir() string { return l.dir }

// Name returns the sanitized artifact base name
func (l Layout) Name() string { return l.name }

// TextFile returns <dir>/<name>_text.txt
func (l Layout) TextFile() string {
	return filepath.Join(l.dir, l.name+"_text.txt")
}

// OCRFile returns <dir>/<name>_ocr.txt
func (l Layout) OCRFile() string {
	return filepath.Join(l.dir, l.name+"_ocr.txt")
}

// TablesDir returns <dir>/<name>_tables
func (l Layout) TablesDir() string {
	return filepath.Join(l.dir, l.name+"_tables")
}

// TableFile returns the artifact path for the ordinal-th table (1-based) on
// page (1-based).
func (l Layout) TableFile(page, ordinal int, ext string) string {
	return filepath.Join(l.TablesDir(), fmt.Sprintf("page%d_table%d.%s", page, ordinal, ext))
}

// ImagesDir returns <dir>/<name>_images
func (l Layout) ImagesDir() string {
	return filepath.Join(l.dir, l.name+"_images")
}

// ImageFile returns the artifact path for the ordinal-th image (1-based) on
// page (1-based).
func (l Layout) ImageFile(page, ordinal int, ext string) string {
	return filepath.Join(l.ImagesDir(), fmt.Sprintf("page%d_image%d.%s", page, ordinal, ext))
}

// EnsureDir creates dir and any missing parents
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path is not a directory: %s", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("cannot access directory %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	return nil
}

// Contains reports whether path resolves to a location inside the layout's
// output directory.
func (l Layout) Contains(path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	absDir, err := filepath.Abs(l.dir)
	if err != nil {
		return false, fmt.Errorf("failed to resolve output directory: %w", err)
	}

	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false, nil
	}
	if rel == "." {
		return true, nil
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}

// WriteFile writes data to path after checking it stays inside the output
// directory. Existing files are truncated so reruns overwrite artifacts.
func (l Layout) WriteFile(path string, data []byte) error {
	ok, err := l.Contains(path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("path is outside output directory: %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}
