package retry

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/vvka-141/tabload/pkg/tabload"
)

func TestIOErrorClassifier(t *testing.T) {
	c := NewIOErrorClassifier()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"read failure", fmt.Errorf("read line 3: %w: %w", tabload.ErrIO, errors.New("stale file handle")), true},
		{"missing file", fmt.Errorf("failed to open a.csv: %w: %w", tabload.ErrIO, fs.ErrNotExist), false},
		{"permission denied", fmt.Errorf("failed to open a.csv: %w: %w", tabload.ErrIO, fs.ErrPermission), false},
		{"is a directory", fmt.Errorf("failed to open a: %w: %w", tabload.ErrIO, syscall.EISDIR), false},
		{"header not found", &tabload.HeaderNotFoundError{Path: "a.csv", Marker: "Name", LinesExamined: 4, Bound: 3}, false},
		{"malformed", fmt.Errorf("%w: bare quote", tabload.ErrMalformedData), false},
		{"invalid config", tabload.ErrInvalidConfig, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsTransient(tt.err))
		})
	}
}

func TestPostgreSQLErrorClassifier(t *testing.T) {
	c := NewPostgreSQLErrorClassifier()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"too many connections", &pgconn.PgError{Code: "53300"}, true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, false},
		{"auth failure", &pgconn.PgError{Code: "28P01"}, false},
		{"wrapped pg error", fmt.Errorf("copy: %w", &pgconn.PgError{Code: "08001"}), true},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"message pattern", errors.New("dial tcp: connection refused"), true},
		{"unrelated", errors.New("syntax error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsTransient(tt.err))
		})
	}
}
