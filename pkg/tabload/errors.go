package tabload

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	rs, err := l.Load(cfg)
//	if errors.Is(err, tabload.ErrHeaderNotFound) {
//	    // retry with a larger search bound
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrIO indicates the source could not be opened or read.
	ErrIO = errors.New("i/o failure")

	// ErrHeaderNotFound indicates the marker word was not found within the search bound.
	ErrHeaderNotFound = errors.New("header not found")

	// ErrMalformedData indicates the delimited parser rejected the data block.
	ErrMalformedData = errors.New("malformed data")

	// ErrConnectionFailed indicates the database connection failed.
	ErrConnectionFailed = errors.New("connection failed")
)

// HeaderNotFoundError reports an exhausted marker search.
type HeaderNotFoundError struct {
	Path          string
	Marker        string
	LinesExamined int
	Bound         int
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("marker %q not found in %s: examined %d line(s), search bound %d",
		e.Marker, e.Path, e.LinesExamined, e.Bound)
}

// Is makes errors.Is(err, ErrHeaderNotFound) match.
func (e *HeaderNotFoundError) Is(target error) bool {
	return target == ErrHeaderNotFound
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrHeaderNotFound):
		return ExitHeaderNotFound
	case errors.Is(err, ErrIO):
		return ExitIOError
	case errors.Is(err, ErrMalformedData):
		return ExitMalformedData
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	// cobra reports usage problems as plain errors
	errStr := err.Error()
	for _, prefix := range []string{"unknown flag", "unknown shorthand flag", "unknown command", "accepts ", "requires at least", "required flag", "invalid argument", "if any flags in the group"} {
		if strings.HasPrefix(errStr, prefix) {
			return ExitUsageError
		}
	}

	return ExitGeneralError
}
