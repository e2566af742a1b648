package output

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/vvka-141/tabload/pkg/tabload"
)

// Format names an output rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
)

// Formats lists every supported format.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatCSV}

// ParseFormat converts a user-supplied name into a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (expected one of %s): %w", s, formatList(), tabload.ErrInvalidConfig)
}

// DefaultFormat returns FormatTable when f is a terminal and NO_COLOR is
// unset, FormatCSV otherwise.
func DefaultFormat(f *os.File) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatCSV
	}
	if f != nil && term.IsTerminal(int(f.Fd())) {
		return FormatTable
	}
	return FormatCSV
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
