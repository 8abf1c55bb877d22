package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an extraction failure by how far it propagates.
type Kind int

const (
	// KindUnknown is an unclassified failure, treated like a runtime failure.
	KindUnknown Kind = iota
	// KindUsage is malformed command line input. Reported before any I/O.
	KindUsage
	// KindInput is a missing, unreadable or invalid source document.
	// Aborts the whole run before any output is produced.
	KindInput
	// KindMode is a failure of a single extraction mode. Sibling modes
	// still run; the run exits non-zero.
	KindMode
	// KindItem is a failure of one page or image inside a mode. Logged and
	// skipped.
	KindItem
)

// Exit codes returned by the command.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Sentinel errors shared across packages.
var (
	ErrNoModes           = stderrors.New("no extraction mode selected (use --text, --tables, --images or --ocr)")
	ErrEngineUnavailable = stderrors.New("ocr engine unavailable")
)

// String returns a string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "USAGE"
	case KindInput:
		return "INPUT"
	case KindMode:
		return "MODE"
	case KindItem:
		return "ITEM"
	default:
		return "UNKNOWN"
	}
}

// Fatal reports whether errors of this kind abort the run immediately.
func (k Kind) Fatal() bool {
	return k == KindUsage || k == KindInput
}

// Error is an extraction error carrying its kind and the location it
// happened at.
type Error struct {
	Kind Kind   `json:"kind"`
	Mode string `json:"mode,omitempty"`
	Op   string `json:"operation,omitempty"`
	Path string `json:"path,omitempty"`
	Page int    `json:"page,omitempty"` // 1-based, 0 when not page specific
	Err  error  `json:"error"`
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s]", e.Kind)
	if e.Mode != "" {
		msg += " " + e.Mode
	}
	if e.Op != "" {
		msg += " " + e.Op
	}
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Page > 0 {
		msg += fmt.Sprintf(" page %d", e.Page)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Usage creates a usage error.
func Usage(err error) *Error {
	return &Error{Kind: KindUsage, Err: err}
}

// Usagef creates a usage error from a format string.
func Usagef(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUsage, Err: fmt.Errorf(format, args...)}
}

// Input creates an input error for the given source path.
func Input(path string, err error) *Error {
	return &Error{Kind: KindInput, Path: path, Err: err}
}

// Mode creates a mode failure.
func Mode(mode, op string, err error) *Error {
	return &Error{Kind: KindMode, Mode: mode, Op: op, Err: err}
}

// Item creates a per-item warning for a page.
func Item(mode string, page int, err error) *Error {
	return &Error{Kind: KindItem, Mode: mode, Page: page, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsUsage reports whether err is a usage error.
func IsUsage(err error) bool {
	return KindOf(err) == KindUsage
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if KindOf(err) == KindUsage {
		return ExitUsage
	}
	return ExitFailure
}
