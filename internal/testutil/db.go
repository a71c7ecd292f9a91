package testutil

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"family-planner/internal/repository"
)

// NewTestDB opens an isolated in-memory SQLite database with migrations
// applied. Each call gets its own database; it lives until the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A unique shared-cache name keeps the database alive across pooled
	// connections without leaking between tests.
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := repository.NewDB(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
