// Package integration stores issue tracker connections used to report
// failing test runs. Tracker credentials are sealed at rest: the API
// accepts them in plaintext once, seals them with a key derived from the
// operator passphrase, and never returns them.
package integration

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hairizuan-noorazman/qa-agent/issuetracker"
)

var (
	ErrIntegrationNotFound  = errors.New("integration not found")
	ErrIssueLinkNotFound    = errors.New("issue link not found")
	ErrInvalidName          = errors.New("name is required")
	ErrInvalidProvider      = errors.New("invalid provider type")
	ErrMissingCredentials   = errors.New("sealed credentials are required")
	ErrInvalidRunID         = errors.New("run_id is required")
	ErrInvalidIntegrationID = errors.New("integration_id is required")
	ErrInvalidExternalID    = errors.New("external_id is required")
)

// Settings holds the non-secret provider configuration: repository
// owner/name for GitHub, base URL and project key for Jira. Secrets never
// belong here; they go through the sealed credential path.
type Settings map[string]string

// Value implements the driver.Valuer interface for database storage.
func (s Settings) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal(map[string]string{})
	}
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface for database retrieval.
func (s *Settings) Scan(value interface{}) error {
	if value == nil {
		*s = map[string]string{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan Settings: not a byte slice")
	}
	out := map[string]string{}
	if err := json.Unmarshal(bytes, &out); err != nil {
		return err
	}
	*s = out
	return nil
}

// Integration is one configured issue tracker connection.
type Integration struct {
	ID                uuid.UUID                 `json:"id" gorm:"type:char(36);primaryKey"`
	Name              string                    `json:"name" gorm:"type:varchar(255);not null"`
	Provider          issuetracker.ProviderType `json:"provider" gorm:"type:varchar(20);not null"`
	Settings          Settings                  `json:"settings" gorm:"type:json"`
	SealedCredentials []byte                    `json:"-" gorm:"type:blob;not null"`
	Active            bool                      `json:"active" gorm:"not null;default:true"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating a new integration.
func (i *Integration) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Validate checks if the integration has valid required fields.
func (i *Integration) Validate() error {
	if i.Name == "" {
		return ErrInvalidName
	}
	if !i.Provider.IsValid() {
		return ErrInvalidProvider
	}
	if len(i.SealedCredentials) == 0 {
		return ErrMissingCredentials
	}
	return nil
}

// IssueLink records an issue filed for a failing test run.
type IssueLink struct {
	ID            uuid.UUID                 `json:"id" gorm:"type:char(36);primaryKey"`
	RunID         uuid.UUID                 `json:"run_id" gorm:"type:char(36);not null;index:idx_issue_links_run_id"`
	IntegrationID uuid.UUID                 `json:"integration_id" gorm:"type:char(36);not null;index:idx_issue_links_integration_id"`
	ExternalID    string                    `json:"external_id" gorm:"type:varchar(255);not null"`
	Title         string                    `json:"title" gorm:"type:varchar(500)"`
	URL           string                    `json:"url" gorm:"type:varchar(1000)"`
	Provider      issuetracker.ProviderType `json:"provider" gorm:"type:varchar(20);not null"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating a new issue link.
func (il *IssueLink) BeforeCreate(tx *gorm.DB) error {
	if il.ID == uuid.Nil {
		il.ID = uuid.New()
	}
	return nil
}

// Validate checks if the issue link has valid required fields.
func (il *IssueLink) Validate() error {
	if il.RunID == uuid.Nil {
		return ErrInvalidRunID
	}
	if il.IntegrationID == uuid.Nil {
		return ErrInvalidIntegrationID
	}
	if il.ExternalID == "" {
		return ErrInvalidExternalID
	}
	if !il.Provider.IsValid() {
		return ErrInvalidProvider
	}
	return nil
}
