package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/tabload/pkg/tabload"
)

type recordingTarget struct {
	execs   []string
	table   pgx.Identifier
	columns []string
	rows    [][]any
	execErr error
	copyErr error
}

func (r *recordingTarget) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	r.execs = append(r.execs, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), r.execErr
}

func (r *recordingTarget) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	if r.copyErr != nil {
		return 0, r.copyErr
	}
	r.table, r.columns = table, columns
	for src.Next() {
		values, err := src.Values()
		if err != nil {
			return 0, err
		}
		r.rows = append(r.rows, values)
	}
	return int64(len(r.rows)), src.Err()
}

func sampleRecordSet() tabload.RecordSet {
	return tabload.RecordSet{
		Fields: []string{"Name", "Zip"},
		Records: []tabload.Record{
			{"Name": "Alice", "Zip": "10001"},
			{"Name": "Bob", "Zip": "94105"},
		},
	}
}

func TestParseTableName(t *testing.T) {
	id, err := ParseTableName("staging.people")
	require.NoError(t, err)
	assert.Equal(t, pgx.Identifier{"staging", "people"}, id)

	id, err = ParseTableName("people")
	require.NoError(t, err)
	assert.Equal(t, pgx.Identifier{"people"}, id)

	for _, bad := range []string{"", "a.b.c", ".people", "staging."} {
		_, err := ParseTableName(bad)
		assert.ErrorIs(t, err, tabload.ErrInvalidConfig, "name %q", bad)
	}
}

func TestColumns(t *testing.T) {
	cols, err := Columns(tabload.RecordSet{Fields: []string{"a", "b", "a"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cols)

	_, err = Columns(tabload.RecordSet{Fields: []string{"a", ""}})
	assert.ErrorIs(t, err, tabload.ErrMalformedData)

	_, err = Columns(tabload.RecordSet{})
	assert.ErrorIs(t, err, tabload.ErrMalformedData)
}

func TestCreateTableSQL(t *testing.T) {
	got := CreateTableSQL(pgx.Identifier{"staging", "people"}, []string{"Name", `Zip "Code"`})
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "staging"."people" ("Name" text, "Zip ""Code""" text)`, got)
}

func TestCopyRecords(t *testing.T) {
	target := &recordingTarget{}

	n, err := CopyRecords(context.Background(), target, sampleRecordSet(), CopyOptions{Table: "people"})
	require.NoError(t, err)

	assert.Equal(t, int64(2), n)
	assert.Empty(t, target.execs)
	assert.Equal(t, pgx.Identifier{"people"}, target.table)
	assert.Equal(t, []string{"Name", "Zip"}, target.columns)
	assert.Equal(t, [][]any{{"Alice", "10001"}, {"Bob", "94105"}}, target.rows)
}

func TestCopyRecords_CreatesTable(t *testing.T) {
	target := &recordingTarget{}

	_, err := CopyRecords(context.Background(), target, sampleRecordSet(), CopyOptions{Table: "people", Create: true})
	require.NoError(t, err)
	require.Len(t, target.execs, 1)
	assert.Contains(t, target.execs[0], `CREATE TABLE IF NOT EXISTS "people"`)
}

func TestCopyRecords_Errors(t *testing.T) {
	t.Run("create fails", func(t *testing.T) {
		target := &recordingTarget{execErr: errors.New("permission denied for schema public")}
		_, err := CopyRecords(context.Background(), target, sampleRecordSet(), CopyOptions{Table: "people", Create: true})
		assert.ErrorContains(t, err, "failed to create table")
		assert.Nil(t, target.columns)
	})

	t.Run("copy fails", func(t *testing.T) {
		copyErr := &pgconn.PgError{Code: "42P01", Message: `relation "people" does not exist`}
		target := &recordingTarget{copyErr: copyErr}
		_, err := CopyRecords(context.Background(), target, sampleRecordSet(), CopyOptions{Table: "people"})
		var pgErr *pgconn.PgError
		require.ErrorAs(t, err, &pgErr)
		assert.Equal(t, "42P01", pgErr.Code)
	})

	t.Run("bad table name", func(t *testing.T) {
		target := &recordingTarget{}
		_, err := CopyRecords(context.Background(), target, sampleRecordSet(), CopyOptions{})
		assert.ErrorIs(t, err, tabload.ErrInvalidConfig)
		assert.Empty(t, target.execs)
	})
}
