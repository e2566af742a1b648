package header

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/tabload/internal/files/linescan"
	"github.com/vvka-141/tabload/pkg/tabload"
)

func scannerFor(lines ...string) *linescan.Scanner {
	return linescan.New(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

// preamble returns n filler lines followed by the given tail.
func preamble(n int, tail ...string) []string {
	lines := make([]string, 0, n+len(tail))
	for i := 0; i < n; i++ {
		lines = append(lines, fmt.Sprintf("meta line %d", i+1))
	}
	return append(lines, tail...)
}

func TestLocate_Found(t *testing.T) {
	l, err := NewLocator("Zip", 10)
	require.NoError(t, err)

	out, err := l.Locate(scannerFor("Report Title", "", "Name,Zip", "Alice,10001", "Bob,94105"))
	require.NoError(t, err)

	assert.True(t, out.Found)
	assert.Equal(t, 2, out.SkipCount)
	assert.Equal(t, 3, out.LinesExamined)
}

func TestLocate_FirstLine(t *testing.T) {
	l, err := NewLocator("name", 0)
	require.NoError(t, err)

	out, err := l.Locate(scannerFor("Name,Zip", "Alice,10001"))
	require.NoError(t, err)
	assert.True(t, out.Found)
	assert.Equal(t, 0, out.SkipCount)
}

func TestLocate_CaseInsensitive(t *testing.T) {
	l, err := NewLocator("zip", 5)
	require.NoError(t, err)

	out, err := l.Locate(scannerFor("title", "Name,ZIP Code"))
	require.NoError(t, err)
	assert.True(t, out.Found)
	assert.Equal(t, 1, out.SkipCount)
}

func TestLocate_UnicodeFolding(t *testing.T) {
	l, err := NewLocator("ÉTAT", 5)
	require.NoError(t, err)

	assert.True(t, l.Matches("Nom;état;Code"))
}

func TestLocate_LiteralMatch(t *testing.T) {
	l, err := NewLocator("amount (usd)", 5)
	require.NoError(t, err)

	assert.True(t, l.Matches("Date,Amount (USD)"))
	assert.False(t, l.Matches("Date,Amount USD"))

	dot, err := NewLocator("a.b", 5)
	require.NoError(t, err)
	assert.False(t, dot.Matches("axb"), "marker is not a pattern")
}

func TestLocate_Boundary(t *testing.T) {
	const bound = 5

	t.Run("marker at bound+1 is found", func(t *testing.T) {
		l, err := NewLocator("Zip", bound)
		require.NoError(t, err)

		out, err := l.Locate(scannerFor(preamble(bound, "Name,Zip", "Alice,10001")...))
		require.NoError(t, err)
		assert.True(t, out.Found)
		assert.Equal(t, bound, out.SkipCount)
		assert.Equal(t, bound+1, out.LinesExamined)
	})

	t.Run("marker at bound+2 is not found", func(t *testing.T) {
		l, err := NewLocator("Zip", bound)
		require.NoError(t, err)

		out, err := l.Locate(scannerFor(preamble(bound+1, "Name,Zip", "Alice,10001")...))
		require.NoError(t, err)
		assert.False(t, out.Found)
		assert.Equal(t, bound+1, out.LinesExamined)
	})

	t.Run("zero bound only examines the first line", func(t *testing.T) {
		l, err := NewLocator("Zip", 0)
		require.NoError(t, err)

		out, err := l.Locate(scannerFor("Title", "Name,Zip"))
		require.NoError(t, err)
		assert.False(t, out.Found)
		assert.Equal(t, 1, out.LinesExamined)
	})
}

func TestLocate_EndOfSourceBeforeBound(t *testing.T) {
	l, err := NewLocator("Country", 100)
	require.NoError(t, err)

	out, err := l.Locate(scannerFor("Report Title", "", "Name,Zip"))
	require.NoError(t, err)
	assert.False(t, out.Found)
	assert.Equal(t, 3, out.LinesExamined)
}

func TestLocate_ReadError(t *testing.T) {
	l, err := NewLocator("Zip", 10)
	require.NoError(t, err)

	_, err = l.Locate(linescan.New(iotest.ErrReader(errors.New("bad sector"))))
	require.Error(t, err)
	assert.True(t, errors.Is(err, tabload.ErrIO))
}

func TestNewLocator_Invalid(t *testing.T) {
	_, err := NewLocator("", 10)
	assert.True(t, errors.Is(err, tabload.ErrInvalidConfig))

	_, err = NewLocator("zip", -1)
	assert.True(t, errors.Is(err, tabload.ErrInvalidConfig))
}
