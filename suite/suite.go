package suite

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrSuiteNotFound is returned when a suite is not found.
	ErrSuiteNotFound = errors.New("suite not found")

	// ErrSuiteExists is returned when creating a suite whose name is taken.
	ErrSuiteExists = errors.New("suite already exists")

	// ErrInvalidSuiteName is returned when a suite name is empty.
	ErrInvalidSuiteName = errors.New("suite name is required")

	// ErrInvalidTargetURL is returned when a suite has no target URL.
	ErrInvalidTargetURL = errors.New("suite target URL is required")
)

// SuiteConfig is the non-secret generation configuration of a suite. It is
// persisted as JSON and echoed over the API, so it must never grow a
// password field; the login secret lives only in process configuration.
type SuiteConfig struct {
	TargetURL string `json:"target_url"`
	Goal      string `json:"goal,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Value implements the driver.Valuer interface for database storage.
func (c SuiteConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements the sql.Scanner interface for database retrieval.
func (c *SuiteConfig) Scan(value interface{}) error {
	if value == nil {
		*c = SuiteConfig{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan SuiteConfig: not a byte slice")
	}
	return json.Unmarshal(bytes, c)
}

// Scripts maps a test case id to the blob-storage key of its current
// materialized script. Regeneration repoints entries; superseded artifacts
// stay in blob storage under their timestamped keys.
type Scripts map[string]string

// Value implements the driver.Valuer interface for database storage.
func (s Scripts) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal(map[string]string{})
	}
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface for database retrieval.
func (s *Scripts) Scan(value interface{}) error {
	if value == nil {
		*s = map[string]string{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan Scripts: not a byte slice")
	}
	out := map[string]string{}
	if err := json.Unmarshal(bytes, &out); err != nil {
		return err
	}
	*s = out
	return nil
}

// Suite is a named collection of generated test cases for one target
// application, keyed by its unique name.
type Suite struct {
	ID          uuid.UUID   `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string      `json:"name" gorm:"not null;uniqueIndex:idx_suites_name"`
	Description string      `json:"description" gorm:"type:text"`
	Config      SuiteConfig `json:"config" gorm:"type:json"`
	Cases       Cases       `json:"cases" gorm:"type:json"`
	Scripts     Scripts     `json:"scripts" gorm:"type:json"`
	GeneratedAt *time.Time  `json:"generated_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating a new suite.
func (s *Suite) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Validate checks if the suite has valid required fields.
func (s *Suite) Validate() error {
	if s.Name == "" {
		return ErrInvalidSuiteName
	}
	if s.Config.TargetURL == "" {
		return ErrInvalidTargetURL
	}
	return nil
}
