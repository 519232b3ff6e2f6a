// Package issuetracker files issues for failing test runs. The execution
// coordinator only ever needs two operations: create an issue and check
// that a configured connection works.
package issuetracker

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidProvider  = errors.New("invalid provider type")
	ErrMissingSetting   = errors.New("missing provider setting")
	ErrMissingToken     = errors.New("missing provider credential")
	ErrConnectionFailed = errors.New("connection validation failed")
	ErrCreateFailed     = errors.New("issue creation failed")
)

// ProviderType identifies a supported tracker.
type ProviderType string

const (
	ProviderJira   ProviderType = "jira"
	ProviderGitHub ProviderType = "github"
)

// IsValid checks if the provider type is supported.
func (p ProviderType) IsValid() bool {
	return p == ProviderJira || p == ProviderGitHub
}

// Issue is the tracker's view of a filed issue.
type Issue struct {
	ExternalID string       `json:"external_id"`
	Title      string       `json:"title"`
	URL        string       `json:"url"`
	Provider   ProviderType `json:"provider"`
	CreatedAt  time.Time    `json:"created_at"`
}

// CreateIssueInput carries everything a provider needs to file one issue.
type CreateIssueInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Labels      []string `json:"labels,omitempty"`
}

// Client is one configured tracker connection.
type Client interface {
	// CreateIssue files an issue and returns the tracker's identity for it.
	CreateIssue(ctx context.Context, input CreateIssueInput) (*Issue, error)

	// ValidateConnection verifies the settings and credentials against the
	// live tracker.
	ValidateConnection(ctx context.Context) error
}

// defaultTimeout bounds every tracker API call.
const defaultTimeout = 15 * time.Second
