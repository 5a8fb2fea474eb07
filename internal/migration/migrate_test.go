package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	goose.SetBaseFS(embeddedMigrations)
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	migrations, err := goose.CollectMigrations("migrations", 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, migrations, 3)
	for i, m := range migrations {
		assert.Equal(t, int64(i+1), m.Version)
	}
}

func TestMigrationsStayInsideSchema(t *testing.T) {
	files, err := fs.Glob(embeddedMigrations, "migrations/*.sql")
	require.NoError(t, err)
	for _, name := range files {
		body, err := fs.ReadFile(embeddedMigrations, name)
		require.NoError(t, err)
		for _, line := range strings.Split(string(body), "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "CREATE TABLE") {
				assert.Contains(t, line, Schema+".", name)
			}
		}
	}
}
