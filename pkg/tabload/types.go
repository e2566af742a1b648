package tabload

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// SkipMode selects how the header row is located. It is implemented only by
// ExplicitSkip and FindMarker, so exactly one mode is always in effect.
type SkipMode interface {
	isSkipMode()
	fmt.Stringer
}

// ExplicitSkip discards a fixed number of leading lines.
type ExplicitSkip struct {
	// Count is the number of lines to discard. Must be greater than zero.
	Count uint
}

func (ExplicitSkip) isSkipMode() {}

func (m ExplicitSkip) String() string {
	return fmt.Sprintf("skip %d line(s)", m.Count)
}

// Lines returns Count as an int. Counts beyond math.MaxInt saturate, which
// still skips past the end of any readable file.
func (m ExplicitSkip) Lines() int {
	return clampInt(m.Count)
}

// FindMarker discards every line before the first line containing Word
// (case-insensitive substring). At most MaxSearchLines non-matching lines are
// examined; nil means DefaultMaxSearchLines. A bound of zero requires the
// header on the first line.
type FindMarker struct {
	Word           string
	MaxSearchLines *uint
}

func (FindMarker) isSkipMode() {}

func (m FindMarker) String() string {
	return fmt.Sprintf("find %q within %d line(s)", m.Word, m.Bound())
}

// Bound returns the effective search bound.
func (m FindMarker) Bound() int {
	if m.MaxSearchLines == nil {
		return DefaultMaxSearchLines
	}
	return clampInt(*m.MaxSearchLines)
}

// SearchLines returns a pointer to n for FindMarker.MaxSearchLines.
func SearchLines(n uint) *uint {
	return &n
}

func clampInt(n uint) int {
	if n > math.MaxInt {
		return math.MaxInt
	}
	return int(n)
}

// LoadConfig describes one load operation.
type LoadConfig struct {
	// Path is the delimited file to read
	Path string

	// Delimiter separates fields. Empty means DefaultDelimiter.
	Delimiter string

	// Mode decides how many leading lines are discarded
	Mode SkipMode
}

// Validate checks the configuration before any I/O takes place.
// It returns a multi-error if multiple validation failures occur.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.Path == "" {
		errs = append(errs, fmt.Errorf("Path is required: %w", ErrInvalidConfig))
	}

	if _, err := c.DelimiterRune(); err != nil {
		errs = append(errs, err)
	}

	switch m := c.Mode.(type) {
	case nil:
		errs = append(errs, fmt.Errorf("exactly one of explicit skip or marker search is required: %w", ErrInvalidConfig))
	case ExplicitSkip:
		if m.Count == 0 {
			errs = append(errs, fmt.Errorf("skip count must be greater than zero: %w", ErrInvalidConfig))
		}
	case FindMarker:
		if m.Word == "" {
			errs = append(errs, fmt.Errorf("marker word cannot be empty: %w", ErrInvalidConfig))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported skip mode %T: %w", m, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// DelimiterRune returns the configured delimiter as a single rune.
func (c *LoadConfig) DelimiterRune() (rune, error) {
	d := c.Delimiter
	if d == "" {
		d = DefaultDelimiter
	}
	if utf8.RuneCountInString(d) != 1 {
		return 0, fmt.Errorf("delimiter %q must be a single character: %w", d, ErrInvalidConfig)
	}
	r, _ := utf8.DecodeRuneInString(d)
	switch r {
	case '\r', '\n', '"', utf8.RuneError:
		return 0, fmt.Errorf("delimiter %q is not allowed: %w", d, ErrInvalidConfig)
	}
	return r, nil
}

// Record maps header field names to the values of one data row.
type Record map[string]string

// RecordSet is the parsed result of a load: the header fields in file order
// and one Record per data row.
type RecordSet struct {
	Fields  []string
	Records []Record
}

// Len returns the number of data rows.
func (rs RecordSet) Len() int {
	return len(rs.Records)
}

// Rows returns the records as value slices ordered by Fields.
func (rs RecordSet) Rows() [][]string {
	rows := make([][]string, 0, len(rs.Records))
	for _, rec := range rs.Records {
		row := make([]string, len(rs.Fields))
		for i, f := range rs.Fields {
			row[i] = rec[f]
		}
		rows = append(rows, row)
	}
	return rows
}
