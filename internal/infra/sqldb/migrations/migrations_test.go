package migrations

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devquiz/internal/domain"
	"devquiz/internal/infra/sqldb"
)

func TestRunAndRollbackOnSQLite(t *testing.T) {
	db, err := sqldb.Open(sqldb.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()
	logger, hook := test.NewNullLogger()

	require.NoError(t, Run(ctx, db, logger))
	assert.Equal(t, "migrations applied", hook.LastEntry().Message)

	store := sqldb.NewStore(db)
	_, err = store.RecordSession(ctx, domain.SessionRecord{ID: "s1", UserID: "guest", Category: domain.CategoryBackend})
	require.NoError(t, err)

	require.NoError(t, Run(ctx, db, logger))
	assert.Equal(t, "database schema up to date", hook.LastEntry().Message)

	require.NoError(t, Rollback(ctx, db, logger))
	_, err = store.SessionSummaries(ctx, "")
	assert.Error(t, err, "tables dropped by rollback")
}

func TestMigratedTablesMatchModels(t *testing.T) {
	db, err := sqldb.Open(sqldb.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	require.NoError(t, Run(ctx, db, logger))

	for _, model := range sqldb.Models() {
		table := db.Table(reflect.TypeOf(model).Elem())
		var want []string
		for _, f := range table.Fields {
			want = append(want, f.Name)
		}
		sort.Strings(want)

		rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table.Name)
		require.NoError(t, err)
		var got []string
		for rows.Next() {
			var name string
			require.NoError(t, rows.Scan(&name))
			got = append(got, name)
		}
		require.NoError(t, rows.Err())
		require.NoError(t, rows.Close())
		sort.Strings(got)

		assert.Equal(t, want, got, "table %s needs a migration", table.Name)
	}
}
