package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMigrationTestDB opens a database without running any migrations.
func setupMigrationTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "migrate_test.db"))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"000001_create_test_table.up.sql": {Data: []byte(`
			CREATE TABLE IF NOT EXISTS test_table (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL
			);`)},
		"000001_create_test_table.down.sql": {Data: []byte(`DROP TABLE IF EXISTS test_table;`)},
		"000002_add_test_column.up.sql":     {Data: []byte(`ALTER TABLE test_table ADD COLUMN description TEXT;`)},
		"000002_add_test_column.down.sql":   {Data: []byte(`ALTER TABLE test_table DROP COLUMN description;`)},
	}
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var exists bool
	err := db.QueryRow(`SELECT COUNT(*) > 0 FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		t.Fatalf("failed to check table %s: %v", name, err)
	}
	return exists
}

func TestMigrateUp(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsFS := testMigrations()

	if err := db.MigrateUp(migrationsFS); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	version, dirty, err := db.MigrateVersion(migrationsFS)
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}
	if dirty {
		t.Error("database should not be dirty after successful migration")
	}

	var hasDescription bool
	err = db.QueryRow(`SELECT COUNT(*) > 0 FROM pragma_table_info('test_table') WHERE name='description'`).Scan(&hasDescription)
	if err != nil {
		t.Fatalf("failed to check description column: %v", err)
	}
	if !hasDescription {
		t.Error("description column should exist after second migration")
	}

	// Second run is a no-op.
	require.NoError(t, db.MigrateUp(migrationsFS))
}

func TestMigrateDownAndTo(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsFS := testMigrations()
	require.NoError(t, db.MigrateUp(migrationsFS))

	require.NoError(t, db.MigrateDown(migrationsFS))
	version, _, err := db.MigrateVersion(migrationsFS)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	require.NoError(t, db.MigrateTo(migrationsFS, 2))
	version, _, err = db.MigrateVersion(migrationsFS)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}

func TestMigrateVersion_Fresh(t *testing.T) {
	db := setupMigrationTestDB(t)

	version, dirty, err := db.MigrateVersion(testMigrations())
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)
}

func TestMigrateForce(t *testing.T) {
	db := setupMigrationTestDB(t)
	migrationsFS := testMigrations()

	require.NoError(t, db.MigrateForce(migrationsFS, 1))
	version, dirty, err := db.MigrateVersion(migrationsFS)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
	assert.False(t, tableExists(t, db, "test_table"), "force must not run migrations")
}

func TestGetLatestMigrationVersion(t *testing.T) {
	v, err := GetLatestMigrationVersion(testMigrations())
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)

	_, err = GetLatestMigrationVersion(fstest.MapFS{})
	assert.Error(t, err)

	_, err = GetLatestMigrationVersion(fstest.MapFS{"readme.up.sql": {Data: []byte("--")}})
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	db := setupMigrationTestDB(t)

	status, err := db.GetMigrationStatus(MigrationsFS())
	require.NoError(t, err)
	assert.Zero(t, status.Current)
	assert.Equal(t, status.Latest, status.Pending())

	require.NoError(t, db.MigrateUp(MigrationsFS()))
	for _, table := range []string{"phases", "visits", "analysis_runs", "residency_results", "meeting_results", "task_failures"} {
		assert.True(t, tableExists(t, db, table), "table %s", table)
	}

	status, err = db.GetMigrationStatus(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, status.Latest, status.Current)
	assert.Zero(t, status.Pending())

	// Every migration rolls back cleanly.
	require.NoError(t, db.MigrateTo(MigrationsFS(), 1))
	assert.False(t, tableExists(t, db, "analysis_runs"))
	require.NoError(t, db.MigrateDown(MigrationsFS()))
	assert.False(t, tableExists(t, db, "visits"))
}
