package retry

import (
	"errors"
	"io/fs"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/tabload/pkg/tabload"
)

// IOErrorClassifier treats source read failures as transient, except those
// that another attempt cannot fix.
type IOErrorClassifier struct{}

// NewIOErrorClassifier creates a new I/O error classifier.
func NewIOErrorClassifier() *IOErrorClassifier {
	return &IOErrorClassifier{}
}

// IsTransient reports whether err is an ErrIO failure other than a missing
// file, a permission problem or a path that is a directory.
func (c *IOErrorClassifier) IsTransient(err error) bool {
	if err == nil || !errors.Is(err, tabload.ErrIO) {
		return false
	}
	switch {
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission),
		errors.Is(err, syscall.EISDIR):
		return false
	}
	return true
}

// PostgreSQLErrorClassifier implements ErrorClassifier for PostgreSQL connection attempts.
type PostgreSQLErrorClassifier struct{}

// NewPostgreSQLErrorClassifier creates a new PostgreSQL error classifier.
func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientPgCode(pgErr.Code)
	}

	if isTransientNetError(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"i/o timeout",
		"broken pipe",
		"too many connections",
		"server closed the connection",
		"unexpected eof",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// isTransientPgCode accepts connection exceptions (08), insufficient
// resources (53), operator intervention (57), serialization failures and
// deadlocks (40001, 40P01) and lock timeouts (55P03).
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
func isTransientPgCode(code string) bool {
	for _, class := range []string{"08", "53", "57"} {
		if strings.HasPrefix(code, class) {
			return true
		}
	}
	switch code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

func isTransientNetError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true
		}
		for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ENETUNREACH, syscall.EHOSTUNREACH} {
			if errors.Is(opErr.Err, errno) {
				return true
			}
		}
	}
	return false
}

var (
	_ tabload.ErrorClassifier = (*IOErrorClassifier)(nil)
	_ tabload.ErrorClassifier = (*PostgreSQLErrorClassifier)(nil)
)
