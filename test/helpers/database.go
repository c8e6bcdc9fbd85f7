package helpers

import (
	"testing"

	"gorm.io/gorm"

	"github.com/andrescamacho/portlogistics-go/internal/infrastructure/database"
)

// NewTestDB opens a migrated in-memory movement log that closes with the test
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to open test movement log: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
