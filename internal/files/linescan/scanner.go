package linescan

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vvka-141/tabload/pkg/tabload"
)

// Scanner reads lines from a forward-only source.
// Not safe for concurrent use.
type Scanner struct {
	r    *bufio.Reader
	line int
	eof  bool
}

// New wraps r in a Scanner positioned before line 1.
func New(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r)}
}

// Line returns the 1-based number of the last line returned by NextLine,
// or 0 before the first call.
func (s *Scanner) Line() int {
	return s.line
}

// NextLine returns the next line without its terminator. ok is false once the
// source is exhausted. A final line without a trailing newline is returned.
func (s *Scanner) NextLine() (line string, ok bool, err error) {
	if s.eof {
		return "", false, nil
	}

	text, err := s.r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", false, fmt.Errorf("read line %d: %w: %w", s.line+1, tabload.ErrIO, err)
		}
		s.eof = true
		if text == "" {
			return "", false, nil
		}
	}

	s.line++
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")
	return text, true, nil
}

// Skip discards up to n lines and reports how many were discarded.
// Fewer than n means the source ended first.
func (s *Scanner) Skip(n int) (int, error) {
	skipped := 0
	for skipped < n {
		_, ok, err := s.NextLine()
		if err != nil {
			return skipped, err
		}
		if !ok {
			break
		}
		skipped++
	}
	return skipped, nil
}

// ReadRemainder consumes and returns everything not yet read, line breaks included.
func (s *Scanner) ReadRemainder() (string, error) {
	if s.eof {
		return "", nil
	}

	var b strings.Builder
	if _, err := io.Copy(&b, s.r); err != nil {
		return "", fmt.Errorf("read remainder after line %d: %w: %w", s.line, tabload.ErrIO, err)
	}
	s.eof = true
	return b.String(), nil
}
