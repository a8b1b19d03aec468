package database_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pageza/alchemorsel-mealplanner/backend/config"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/database"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "app.db")}

	db, err := database.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.HealthCheck(context.Background(), db))

	require.NoError(t, database.RunMigrations(db, "unused", zap.NewNop()))
	assert.True(t, db.Migrator().HasTable(&model.Recipe{}))
	assert.True(t, db.Migrator().HasTable(&model.UserPreferences{}))
	assert.True(t, db.Migrator().HasTable(&model.RecipeLike{}))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := database.Open(&config.Config{DBDriver: "mysql"}, zap.NewNop())
	assert.Error(t, err)
}

func TestMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000002_b.sql", "000001_a.sql", "000001_a.down.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
	}

	files, err := database.MigrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_a.sql", "000002_b.sql"}, files)
	assert.Equal(t, "000002", database.MigrationVersion("000002_b.sql"))
	assert.Equal(t, "000001_a.down.sql", database.RollbackFile("000001_a.sql"))
}

func TestRunMigrationsPostgres(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)

	require.NoError(t, database.RunMigrations(db, filepath.Join("..", "..", "migrations"), zap.NewNop()))
	// a second run skips everything already recorded
	require.NoError(t, database.RunMigrations(db, filepath.Join("..", "..", "migrations"), zap.NewNop()))

	var count int64
	require.NoError(t, db.Table("schema_migrations").Count(&count).Error)
	assert.Equal(t, int64(4), count)
}
