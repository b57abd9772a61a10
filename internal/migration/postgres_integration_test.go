package migration

import (
	"database/sql"
	"os"
	"testing"
	"testing/fstest"

	_ "github.com/lib/pq"
)

// Set MEDREMIND_TEST_POSTGRES to run, e.g.
// MEDREMIND_TEST_POSTGRES="postgres://user@localhost:5432/testdb?sslmode=disable"
func setupPostgresTestDB(t *testing.T) (*sql.DB, func()) {
	connStr := os.Getenv("MEDREMIND_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("MEDREMIND_TEST_POSTGRES not set, skipping PostgreSQL integration test")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open postgres database: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping postgres database: %v", err)
	}

	cleanup := func() {
		db.Exec("DROP TABLE IF EXISTS schema_version")
		db.Exec("DROP TABLE IF EXISTS migration_check")
		db.Close()
	}
	return db, cleanup
}

func TestPostgresApplyMigrations(t *testing.T) {
	db, cleanup := setupPostgresTestDB(t)
	defer cleanup()

	runner := NewRunner(db, fstest.MapFS{
		"001_check.sql": {Data: []byte("CREATE TABLE migration_check (id SERIAL PRIMARY KEY);")},
	}, DriverPostgres)

	count, err := runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("ApplyMigrations() = %d, want 1", count)
	}

	if err := runner.SetVersion(1); err != nil {
		t.Fatalf("SetVersion() with $1 placeholder failed: %v", err)
	}
	version, err := runner.GetCurrentVersion()
	if err != nil || version != 1 {
		t.Errorf("GetCurrentVersion() = %d, %v; want 1", version, err)
	}
}
