package testrun

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for test run persistence operations.
type Store interface {
	// Create creates a new test run in the store.
	Create(ctx context.Context, testRun *TestRun) error

	// GetByID retrieves a test run by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*TestRun, error)

	// Update updates a test run with the given setters.
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error

	// ListBySuite retrieves a paginated list of runs for a suite, newest
	// first.
	ListBySuite(ctx context.Context, suiteName string, limit, offset int) ([]*TestRun, error)

	// Start marks a test run as started.
	Start(ctx context.Context, id uuid.UUID) error

	// Complete marks a test run as completed with a final verdict and the
	// output that produced it.
	Complete(ctx context.Context, id uuid.UUID, verdict Verdict, output string) error
}

// UpdateSetter is a function that updates a test run field.
type UpdateSetter func(*TestRun) error
