package db_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/tabload/internal/db"
	"github.com/vvka-141/tabload/internal/logging"
	"github.com/vvka-141/tabload/internal/testinfra"
	"github.com/vvka-141/tabload/pkg/tabload"
)

func TestCopyRecords_PostgreSQL(t *testing.T) {
	connStr := testinfra.PostgresConnString(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	connector, err := db.NewConnector(connStr, logging.NewNullLogger())
	require.NoError(t, err)
	pool, err := connector.Connect(ctx)
	require.NoError(t, err)
	defer pool.Close()

	table := fmt.Sprintf("tabload_it_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+table) //nolint:errcheck
	})

	rs := tabload.RecordSet{
		Fields: []string{"Name", "Zip Code"},
		Records: []tabload.Record{
			{"Name": "Alice", "Zip Code": "10001"},
			{"Name": "Bob", "Zip Code": "94105"},
		},
	}

	n, err := db.CopyRecords(ctx, pool, rs, db.CopyOptions{Table: table, Create: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var zip string
	err = pool.QueryRow(ctx, fmt.Sprintf(`SELECT "Zip Code" FROM %s WHERE "Name" = $1`, table), "Bob").Scan(&zip)
	require.NoError(t, err)
	assert.Equal(t, "94105", zip)

	n, err = db.CopyRecords(ctx, pool, rs, db.CopyOptions{Table: table, Create: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&count))
	assert.Equal(t, 4, count)
}
