package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// pdfMagic is the header every PDF file starts with
var pdfMagic = []byte("%PDF-")

// Validator handles PDF file validation operations
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// Inspect validates filePath and returns basic document information.
// It succeeds only for a readable PDF with at least one page.
func (v *Validator) Inspect(filePath string) (*DocumentInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	// Check if file exists and get basic info
	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return nil, err
	}

	if err := sniffHeader(filePath); err != nil {
		return nil, err
	}

	// Try to open the PDF to validate it's a valid PDF file
	doc, err := Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("invalid PDF file: %w", err)
	}
	defer doc.Close()

	pages := doc.NumPages()
	if pages <= 0 {
		return nil, fmt.Errorf("PDF has no pages: %s", filePath)
	}

	return &DocumentInfo{
		Path:  filePath,
		Size:  fileInfo.Size(),
		Pages: pages,
	}, nil
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(filePath string) bool {
	_, err := v.Inspect(filePath)
	return err == nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	return nil
}

// sniffHeader checks the leading bytes instead of trusting the extension
func sniffHeader(filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("cannot open file: %w", err)
	}
	defer f.Close()

	// Tolerate a short preamble before the header as most readers do
	head := make([]byte, 1024)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("cannot read file: %w", err)
	}

	if !bytes.Contains(head[:n], pdfMagic) {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}
	return nil
}
