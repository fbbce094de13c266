package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/findnest-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "findnest", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=findnest sslmode=disable", dsn)
}

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	assert.Contains(t, names, "migrations/00001_create_report_jobs.sql")
}

func TestMigrateWrapsFailure(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var dir string
	gooseUp = func(_ context.Context, _ *sql.DB, d string) error {
		dir = d
		return errors.New("boom")
	}

	err := Migrate(context.Background(), nil)
	assert.ErrorContains(t, err, "run migrations: boom")
	assert.Equal(t, "migrations", dir)
}
