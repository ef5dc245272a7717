// Package testdb opens throwaway in-memory databases for tests. SQLite
// stands in for MySQL so the full stack runs without a server.
package testdb

import (
	"testing"

	"pairtalk/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated in-memory database scoped to one test
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = gdb.AutoMigrate(
		&model.Account{},
		&model.SecurityConfig{},
		&model.PaidMembership{},
		&model.LoginAttempt{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return gdb
}
