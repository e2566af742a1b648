// Package header finds the header row of a delimited file by searching for a
// marker word within a bounded number of leading lines.
package header

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/vvka-141/tabload/internal/files/linescan"
	"github.com/vvka-141/tabload/pkg/tabload"
)

// Outcome is the result of a marker search. A search that does not find the
// marker is not an error; check Found.
type Outcome struct {
	// Found reports whether a line containing the marker was seen
	Found bool

	// SkipCount is the number of lines read before the matching line.
	// Only meaningful when Found is true.
	SkipCount int

	// LinesExamined counts every line read, the matching line included
	LinesExamined int
}

// Locator searches for a marker as a case-insensitive literal substring.
// A Locator is not safe for concurrent use.
type Locator struct {
	marker         string
	folded         string
	maxSearchLines int
	fold           cases.Caser
}

// NewLocator returns a Locator that allows at most maxSearchLines
// non-matching lines before the marker line.
func NewLocator(marker string, maxSearchLines int) (*Locator, error) {
	if marker == "" {
		return nil, fmt.Errorf("marker word cannot be empty: %w", tabload.ErrInvalidConfig)
	}
	if maxSearchLines < 0 {
		return nil, fmt.Errorf("search bound cannot be negative: %w", tabload.ErrInvalidConfig)
	}

	fold := cases.Fold()
	return &Locator{
		marker:         marker,
		folded:         fold.String(marker),
		maxSearchLines: maxSearchLines,
		fold:           fold,
	}, nil
}

// Matches reports whether line contains the marker, ignoring case.
func (l *Locator) Matches(line string) bool {
	return strings.Contains(l.fold.String(line), l.folded)
}

// Locate reads lines from s until the marker is found, the bound is
// exhausted or the source ends. The line at position maxSearchLines+1 is the
// last one that can match.
func (l *Locator) Locate(s *linescan.Scanner) (Outcome, error) {
	count := 0
	for count <= l.maxSearchLines {
		line, ok, err := s.NextLine()
		if err != nil {
			return Outcome{LinesExamined: count}, err
		}
		if !ok {
			break
		}
		if l.Matches(line) {
			return Outcome{Found: true, SkipCount: count, LinesExamined: count + 1}, nil
		}
		count++
	}
	return Outcome{LinesExamined: count}, nil
}
