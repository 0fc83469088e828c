// Package testsupport holds helpers shared by tests across packages.
package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"studyai/internal/platform/database"
	"studyai/internal/repository"
)

// NewDB opens a migrated SQLite database in a per-test temp directory.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "studyai.db") + "?_pragma=foreign_keys(1)"
	db, err := database.New(context.Background(), database.Options{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
