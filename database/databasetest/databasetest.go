// Package databasetest opens migrated in-memory stores for tests.
package databasetest

import (
	"testing"

	"github.com/anjiri1684/enrollment_service/database"
	"github.com/anjiri1684/enrollment_service/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func NewStore(t testing.TB) *database.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig("test"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every new connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)

	store := database.New(db, logger.Nop())
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
