package testrun

import (
	"testing"

	"gorm.io/gorm"

	"github.com/hairizuan-noorazman/qa-agent/logger"
	"github.com/hairizuan-noorazman/qa-agent/testutil"
)

// setupTestStore creates a test database and test run store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, Store) {
	db := testutil.SetupTestDBWithModels(t, &TestRun{})
	store := NewMySQLStore(db, logger.NewTestLogger())
	return db, store
}

// sampleRun returns a pending script-mode run.
func sampleRun() *TestRun {
	return New("checkout", "TC1", "Add item to cart", ModeScript)
}
