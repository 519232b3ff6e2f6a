package suite

import (
	"context"
)

// Store defines the interface for suite persistence operations. Suites are
// addressed by name; the UUID primary key is an implementation detail of
// the relational layout.
type Store interface {
	// Create creates a new suite. The name must be unused.
	Create(ctx context.Context, suite *Suite) error

	// GetByName retrieves a suite by its unique name.
	GetByName(ctx context.Context, name string) (*Suite, error)

	// List retrieves a paginated list of suites, newest first.
	List(ctx context.Context, limit, offset int) ([]*Suite, error)

	// Update applies the given setters to a suite in one transaction.
	Update(ctx context.Context, name string, setters ...UpdateSetter) error

	// Delete removes a suite. Run history is kept; it references suites by
	// name, not by foreign key.
	Delete(ctx context.Context, name string) error
}

// UpdateSetter is a function that updates a suite field.
type UpdateSetter func(*Suite) error
