package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	pdferrors "github.com/a3tai/pdf-extractor/internal/pdf/errors"
)

// EngineTesseract is the name of the tesseract command line engine
const EngineTesseract = "tesseract"

func init() {
	Register(EngineTesseract, func() Engine { return NewTesseractEngine("") })
}

// executor abstracts command execution for testing
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// TesseractEngine runs the tesseract binary, piping the page image on stdin
// and reading the text from stdout
type TesseractEngine struct {
	bin  string
	exec executor
}

// NewTesseractEngine creates a tesseract engine. If bin is empty,
// "tesseract" is looked up on PATH.
func NewTesseractEngine(bin string) *TesseractEngine {
	return newTesseractEngine(bin, &osExecutor{})
}

func newTesseractEngine(bin string, exec executor) *TesseractEngine {
	if bin == "" {
		bin = EngineTesseract
	}
	return &TesseractEngine{bin: bin, exec: exec}
}

// Name returns the engine name
func (e *TesseractEngine) Name() string { return EngineTesseract }

// Available reports whether the tesseract binary is on PATH
func (e *TesseractEngine) Available() error {
	if _, err := e.exec.LookPath(e.bin); err != nil {
		return fmt.Errorf("%w: %s not found in PATH (install tesseract-ocr): %v",
			pdferrors.ErrEngineUnavailable, e.bin, err)
	}
	return nil
}

// Recognize runs tesseract on one page image
func (e *TesseractEngine) Recognize(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var stdout, stderr bytes.Buffer
	if err := e.exec.Run(ctx, e.bin, e.args(in), bytes.NewReader(in.Image), &stdout, &stderr); err != nil {
		return Result{}, fmt.Errorf("tesseract failed on page %d: %w: %s",
			in.PageIndex+1, err, strings.TrimSpace(stderr.String()))
	}

	return Result{PageIndex: in.PageIndex, Text: stdout.String()}, nil
}

// args builds "tesseract - - -l eng+deu --dpi 300"
func (e *TesseractEngine) args(in Input) []string {
	args := []string{"-", "-"}
	if len(in.Languages) > 0 {
		args = append(args, "-l", strings.Join(in.Languages, "+"))
	}
	if in.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(in.DPI))
	}
	return args
}
