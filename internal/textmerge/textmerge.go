// Package textmerge joins text split across several extraction outputs
// into one clean document.
package textmerge

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

// Defaults
const (
	DefaultMaxCheck = 500
	DefaultWidth    = 9999
)

var (
	// word broken by a hyphen or a PDF continuation mark at end of line;
	// a dash run such as the end of a page marker is not a broken word
	brokenWord = regexp.MustCompile("([^-\\s])[-¬]\n")
	// leftover continuation marks and the blanks after them
	strayMark = regexp.MustCompile(`\x{00ac}\s*`)
	// page markers, with an optional line break after them
	pageHeader = regexp.MustCompile(`(?m)^--- Page (\d+) --+(\r?\n)?`)
	// blank line between paragraphs
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
)

// Options controls a merge
type Options struct {
	// MaxCheck bounds, in characters, how far back and forward an overlap
	// between consecutive chunks is searched
	MaxCheck int
	// Width is the display width paragraphs are wrapped at
	Width int
}

// DefaultOptions returns the default merge options
func DefaultOptions() Options {
	return Options{MaxCheck: DefaultMaxCheck, Width: DefaultWidth}
}

// MergeFiles reads the files in lexical path order and merges them
func MergeFiles(paths []string, opts Options) (string, error) {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	chunks := make([]string, 0, len(sorted))
	for _, path := range sorted {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("cannot read chunk %s: %w", path, err)
		}
		chunks = append(chunks, strings.ToValidUTF8(string(data), ""))
	}

	return Merge(chunks, opts), nil
}

// Merge runs the full pipeline: overlap removal, hyphen trimming, page
// marker spacing and paragraph reflow
func Merge(chunks []string, opts Options) string {
	merged := MergeOverlap(chunks, opts.MaxCheck)
	return Reflow(SpaceHeaders(TrimHyphens(merged)), opts.Width)
}

// MergeOverlap concatenates chunks, dropping from each chunk the longest
// prefix that repeats the end of the text merged so far. Chunks are
// normalised to NFC first so equal text compares equal.
func MergeOverlap(chunks []string, maxCheck int) string {
	var merged []rune
	for _, chunk := range chunks {
		text := []rune(norm.NFC.String(chunk))
		if len(merged) == 0 {
			merged = text
			continue
		}

		tail := merged[max(len(merged)-maxCheck, 0):]
		head := text[:min(maxCheck, len(text))]

		for i := len(head); i > 0; i-- {
			if hasSuffix(tail, head[:i]) {
				text = text[i:]
				break
			}
		}
		merged = append(merged, text...)
	}
	return string(merged)
}

func hasSuffix(s, suffix []rune) bool {
	if len(suffix) > len(s) {
		return false
	}
	offset := len(s) - len(suffix)
	for i, r := range suffix {
		if s[offset+i] != r {
			return false
		}
	}
	return true
}

// TrimHyphens joins words broken across lines and removes stray
// continuation marks
func TrimHyphens(text string) string {
	text = brokenWord.ReplaceAllString(text, "$1")
	return strayMark.ReplaceAllString(text, "")
}

// SpaceHeaders rewrites every page marker to the canonical
// "--- Page N ---" and puts a blank line after it so it stays a paragraph
// of its own
func SpaceHeaders(text string) string {
	return pageHeader.ReplaceAllString(text, "--- Page $1 ---\n\n")
}

// Reflow collapses the whitespace inside each paragraph and wraps it at
// width
func Reflow(text string, width int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	paragraphs := paragraphBreak.Split(trimmed, -1)
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		out = append(out, wrap(strings.Fields(p), width))
	}
	return strings.Join(out, "\n\n")
}

// wrap fills words greedily into lines no wider than width. A word wider
// than width is split across lines.
func wrap(words []string, width int) string {
	if width <= 0 {
		return strings.Join(words, " ")
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0

	flush := func() {
		if line.Len() > 0 {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
	}

	for _, word := range words {
		w := runewidth.StringWidth(word)

		if lineWidth > 0 && lineWidth+1+w <= width {
			line.WriteByte(' ')
			line.WriteString(word)
			lineWidth += 1 + w
			continue
		}
		flush()

		for w > width {
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				break
			}
			lines = append(lines, head)
			word = strings.TrimPrefix(word, head)
			w = runewidth.StringWidth(word)
		}
		line.WriteString(word)
		lineWidth = w
	}
	flush()

	return strings.Join(lines, "\n")
}
