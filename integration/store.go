package integration

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for integration persistence operations.
type Store interface {
	// Create creates a new integration.
	Create(ctx context.Context, integration *Integration) error

	// GetByID retrieves an integration by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Integration, error)

	// List retrieves a paginated list of integrations, newest first.
	List(ctx context.Context, limit, offset int) ([]*Integration, error)

	// ListActive retrieves every active integration; this is what the
	// failure reporter consults after a failing run.
	ListActive(ctx context.Context) ([]*Integration, error)

	// Update applies the given setters to an integration.
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error

	// Delete removes an integration.
	Delete(ctx context.Context, id uuid.UUID) error

	// CreateIssueLink records an issue filed for a failing run.
	CreateIssueLink(ctx context.Context, link *IssueLink) error

	// ListIssueLinksByRun retrieves the issues filed for one run.
	ListIssueLinksByRun(ctx context.Context, runID uuid.UUID) ([]*IssueLink, error)
}

// UpdateSetter is a function that updates an integration field.
type UpdateSetter func(*Integration) error
