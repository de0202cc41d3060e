package migrations

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/yamdb/internal/testinfra"
)

func TestRunMigrations(t *testing.T) {
	db := testinfra.OpenDB(t, testinfra.Postgres(t))

	err := Run(db, testinfra.MigrationsPath(t))
	require.NoError(t, err)

	for _, table := range []string{"users", "categories", "genres", "titles", "title_genres", "reviews", "comments"} {
		var exists bool
		err = db.QueryRow(`
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)`, table).Scan(&exists)
		require.NoError(t, err)
		require.True(t, exists, "table %s should exist", table)
	}

	var exists bool
	err = db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM information_schema.table_constraints
			WHERE table_name = 'reviews' AND constraint_name = 'unique_review_per_author'
		)`).Scan(&exists)
	require.NoError(t, err)
	require.True(t, exists, "review uniqueness constraint should exist")
}

func TestMigrationIdempotency(t *testing.T) {
	db := testinfra.OpenDB(t, testinfra.Postgres(t))
	path := testinfra.MigrationsPath(t)

	require.NoError(t, Run(db, path))
	require.NoError(t, Run(db, path), "running migrations twice should not fail")
}
