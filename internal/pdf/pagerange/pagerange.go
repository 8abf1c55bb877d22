// Package pagerange parses page selection expressions such as "1-3,5,7"
// into ordered sets of zero-based page indices.
package pagerange

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PageRange is an ordered set of distinct zero-based page indices.
type PageRange struct {
	indices []int
}

// ParseError reports an invalid token in a page-spec.
type ParseError struct {
	Spec   string
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid page spec %q: token %q: %s", e.Spec, e.Token, e.Reason)
}

// All returns a PageRange covering every page of a document.
func All(pageCount int) PageRange {
	indices := make([]int, 0, max(pageCount, 0))
	for i := 0; i < pageCount; i++ {
		indices = append(indices, i)
	}
	return PageRange{indices: indices}
}

// Parse converts a page-spec into a PageRange for a document with
// pageCount pages. Tokens are 1-based page numbers or inclusive "a-b"
// ranges separated by commas. An empty spec selects all pages. The first
// malformed or out-of-range token fails the whole parse.
func Parse(spec string, pageCount int) (PageRange, error) {
	if strings.TrimSpace(spec) == "" {
		return All(pageCount), nil
	}

	seen := make(map[int]struct{})
	for _, raw := range strings.Split(spec, ",") {
		token := strings.TrimSpace(raw)
		start, end, err := parseToken(spec, token)
		if err != nil {
			return PageRange{}, err
		}
		if end > pageCount {
			return PageRange{}, &ParseError{
				Spec:   spec,
				Token:  token,
				Reason: fmt.Sprintf("page %d out of range (document has %d pages)", end, pageCount),
			}
		}
		for p := start; p <= end; p++ {
			seen[p-1] = struct{}{}
		}
	}

	indices := make([]int, 0, len(seen))
	for i := range seen {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return PageRange{indices: indices}, nil
}

// parseToken returns the 1-based inclusive bounds of a single token.
func parseToken(spec, token string) (int, int, error) {
	if token == "" {
		return 0, 0, &ParseError{Spec: spec, Token: token, Reason: "empty token"}
	}

	lo, hi, isRange := strings.Cut(token, "-")
	start, err := parsePageNumber(spec, token, lo)
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return start, start, nil
	}

	end, err := parsePageNumber(spec, token, hi)
	if err != nil {
		return 0, 0, err
	}
	if start > end {
		return 0, 0, &ParseError{Spec: spec, Token: token, Reason: "range start is greater than range end"}
	}
	return start, end, nil
}

func parsePageNumber(spec, token, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &ParseError{Spec: spec, Token: token, Reason: "not a number"}
	}
	if n < 1 {
		return 0, &ParseError{Spec: spec, Token: token, Reason: "page numbers start at 1"}
	}
	return n, nil
}

// Indices returns the zero-based indices in ascending order.
func (r PageRange) Indices() []int {
	out := make([]int, len(r.indices))
	copy(out, r.indices)
	return out
}

// PageNumbers returns the 1-based page numbers in ascending order.
func (r PageRange) PageNumbers() []int {
	out := make([]int, len(r.indices))
	for i, idx := range r.indices {
		out[i] = idx + 1
	}
	return out
}

// Len returns the number of selected pages.
func (r PageRange) Len() int {
	return len(r.indices)
}

// Contains reports whether the zero-based index is selected.
func (r PageRange) Contains(index int) bool {
	i := sort.SearchInts(r.indices, index)
	return i < len(r.indices) && r.indices[i] == index
}

// String returns the canonical 1-based form, e.g. "1-3,5,7".
func (r PageRange) String() string {
	if len(r.indices) == 0 {
		return ""
	}

	var parts []string
	start := r.indices[0]
	prev := start
	flush := func() {
		if start == prev {
			parts = append(parts, strconv.Itoa(start+1))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start+1, prev+1))
		}
	}
	for _, idx := range r.indices[1:] {
		if idx == prev+1 {
			prev = idx
			continue
		}
		flush()
		start, prev = idx, idx
	}
	flush()

	return strings.Join(parts, ",")
}
