package suite

import (
	"testing"

	"github.com/hairizuan-noorazman/qa-agent/logger"
	"github.com/hairizuan-noorazman/qa-agent/testutil"
	"gorm.io/gorm"
)

// setupTestStore creates a test database and suite store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, Store) {
	db := testutil.SetupTestDBWithModels(t, &Suite{})
	store := NewMySQLStore(db, logger.NewTestLogger())
	return db, store
}

// sampleSuite returns a suite with valid required fields.
func sampleSuite(name string) *Suite {
	return &Suite{
		Name:        name,
		Description: "checkout flows",
		Config: SuiteConfig{
			TargetURL: "https://shop.example.com",
			Goal:      "explore the checkout flow",
			Username:  "standard_user",
		},
	}
}

// sampleCases returns two extracted cases with selectors.
func sampleCases() Cases {
	return Cases{
		{
			ID:    "TC1",
			Title: "Add item to cart",
			Steps: []Step{
				{ActionText: "Navigate to the inventory page"},
				{ActionText: "Click add to cart using selector: #add-to-cart", Selector: "#add-to-cart"},
			},
		},
		{
			ID:    "TC2",
			Title: "Open the cart",
			Steps: []Step{
				{ActionText: "Click the cart icon using selector: .shopping_cart_link", Selector: ".shopping_cart_link"},
			},
		},
	}
}
