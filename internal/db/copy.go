package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/tabload/pkg/tabload"
)

// CopyTarget is the subset of *pgxpool.Pool (and *pgx.Conn) CopyRecords needs.
type CopyTarget interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// CopyOptions controls how CopyRecords writes a record set.
type CopyOptions struct {
	// Table is "name" or "schema.name".
	Table string

	// Create issues CREATE TABLE IF NOT EXISTS with text columns before copying.
	Create bool
}

// ParseTableName splits "schema.name" into a pgx.Identifier.
func ParseTableName(name string) (pgx.Identifier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: table name is required", tabload.ErrInvalidConfig)
	}
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("%w: table name %q has more than one schema qualifier", tabload.ErrInvalidConfig, name)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("%w: table name %q has an empty part", tabload.ErrInvalidConfig, name)
		}
	}
	return pgx.Identifier(parts), nil
}

// Columns returns the distinct header fields of rs in order, rejecting
// empty names that cannot become column identifiers.
func Columns(rs tabload.RecordSet) ([]string, error) {
	seen := make(map[string]bool, len(rs.Fields))
	columns := make([]string, 0, len(rs.Fields))
	for i, f := range rs.Fields {
		if strings.TrimSpace(f) == "" {
			return nil, fmt.Errorf("%w: header field %d is empty", tabload.ErrMalformedData, i+1)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		columns = append(columns, f)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no header fields", tabload.ErrMalformedData)
	}
	return columns, nil
}

// CreateTableSQL builds CREATE TABLE IF NOT EXISTS with one text column per field.
func CreateTableSQL(table pgx.Identifier, columns []string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(table.Sanitize())
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{c}.Sanitize())
		b.WriteString(" text")
	}
	b.WriteString(")")
	return b.String()
}

// CopyRecords writes rs into opts.Table and returns the number of rows copied.
func CopyRecords(ctx context.Context, target CopyTarget, rs tabload.RecordSet, opts CopyOptions) (int64, error) {
	table, err := ParseTableName(opts.Table)
	if err != nil {
		return 0, err
	}
	columns, err := Columns(rs)
	if err != nil {
		return 0, err
	}

	if opts.Create {
		if _, err := target.Exec(ctx, CreateTableSQL(table, columns)); err != nil {
			return 0, fmt.Errorf("failed to create table %s: %w", table.Sanitize(), err)
		}
	}

	n, err := target.CopyFrom(ctx, table, columns, pgx.CopyFromSlice(len(rs.Records), func(i int) ([]any, error) {
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = rs.Records[i][c]
		}
		return row, nil
	}))
	if err != nil {
		return n, fmt.Errorf("failed to copy %d record(s) into %s: %w", len(rs.Records), table.Sanitize(), err)
	}
	return n, nil
}
