package testutil

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"testing"

	"github.com/xxxsen/propinspect/internal/config"
	"github.com/xxxsen/propinspect/internal/db"
)

// OpenTestDB connects to the postgres named by TEST_DB_HOST, migrates it and
// closes it when the test ends. Tests are skipped when TEST_DB_HOST is unset.
// Rows are not truncated between tests, so tests use fresh uuids.
func OpenTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	port, err := strconv.Atoi(envOr("TEST_DB_PORT", "5432"))
	if err != nil {
		t.Fatalf("TEST_DB_PORT: %v", err)
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     port,
		User:     envOr("TEST_DB_USER", "propinspect"),
		Password: envOr("TEST_DB_PASSWORD", "propinspect_pass"),
		DBName:   envOr("TEST_DB_NAME", "propinspect_test"),
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(context.Background(), conn); err != nil {
		_ = conn.Close()
		t.Fatalf("migrations: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
