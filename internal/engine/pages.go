// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a 1-based inclusive page range. To == 0 means "through the
// last page".
type Range struct {
	From int
	To   int
}

// ParseRanges parses a comma-separated page-range list such as "1-3,5,7-".
// A bare number selects one page; "m-" runs to the end of the document.
func ParseRanges(s string) ([]Range, error) {
	var ranges []Range
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if from, to, ok := strings.Cut(part, "-"); ok {
			r, err := parseBounds(part, from, to)
			if err != nil {
				return nil, err
			}
			ranges = append(ranges, r)
			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		ranges = append(ranges, Range{From: n, To: n})
	}

	if len(ranges) == 0 {
		return nil, fmt.Errorf("empty page range list %q", s)
	}
	return ranges, nil
}

func parseBounds(part, fromStr, toStr string) (Range, error) {
	r := Range{From: 1}

	if fromStr = strings.TrimSpace(fromStr); fromStr != "" {
		n, err := strconv.Atoi(fromStr)
		if err != nil || n < 1 {
			return Range{}, fmt.Errorf("invalid range %q", part)
		}
		r.From = n
	}
	if toStr = strings.TrimSpace(toStr); toStr != "" {
		n, err := strconv.Atoi(toStr)
		if err != nil || n < 1 {
			return Range{}, fmt.Errorf("invalid range %q", part)
		}
		r.To = n
	}

	if r.To != 0 && r.To < r.From {
		return Range{}, fmt.Errorf("range %q is reversed", part)
	}
	return r, nil
}

// Validate checks the range against the document's page count and
// resolves an open To bound.
func (r Range) Validate(pageCount int) (Range, error) {
	if r.To == 0 {
		r.To = pageCount
	}
	if r.From > pageCount || r.To > pageCount {
		return Range{}, fmt.Errorf("range %s out of bounds (1-%d)", r, pageCount)
	}
	return r, nil
}

// Selection renders the range in the selection syntax the PDF library
// accepts ("m-n", or "m" for a single page).
func (r Range) Selection() string {
	if r.To == 0 || r.To == r.From {
		return strconv.Itoa(r.From)
	}
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

func (r Range) String() string {
	return r.Selection()
}

// ParsePageSelection parses a rotate-style page selection: "all" (or
// empty) selects every page and returns nil; anything else is a range
// list validated against pageCount and rendered for the PDF library.
func ParsePageSelection(s string, pageCount int) ([]string, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "all" {
		return nil, nil
	}

	ranges, err := ParseRanges(s)
	if err != nil {
		return nil, err
	}

	sel := make([]string, 0, len(ranges))
	for _, r := range ranges {
		v, err := r.Validate(pageCount)
		if err != nil {
			return nil, err
		}
		sel = append(sel, v.Selection())
	}
	return sel, nil
}
