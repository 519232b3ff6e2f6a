package suite

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

var (
	// ErrInvalidCaseID is returned when a test case has no id.
	ErrInvalidCaseID = errors.New("test case id is required")

	// ErrInvalidCaseTitle is returned when a test case has no title.
	ErrInvalidCaseTitle = errors.New("test case title is required")

	// ErrNoSteps is returned when a test case has no usable steps.
	ErrNoSteps = errors.New("test case has no steps")
)

// Step is one action of a test case. ActionText is the human-readable
// instruction; Selector is the CSS selector parsed out of it, empty when the
// step names no element.
type Step struct {
	ActionText string `json:"action_text"`
	Selector   string `json:"selector,omitempty"`
}

// TestCase is one generated test case.
type TestCase struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Steps []Step `json:"steps"`
}

// Validate checks the fields every downstream consumer relies on.
func (tc *TestCase) Validate() error {
	if tc.ID == "" {
		return ErrInvalidCaseID
	}
	if tc.Title == "" {
		return ErrInvalidCaseTitle
	}
	if len(tc.Steps) == 0 {
		return ErrNoSteps
	}
	for _, s := range tc.Steps {
		if s.ActionText != "" {
			return nil
		}
	}
	return ErrNoSteps
}

// Cases is the JSON column holding a suite's generated test cases.
type Cases []TestCase

// Value implements the driver.Valuer interface for database storage.
func (c Cases) Value() (driver.Value, error) {
	if c == nil {
		return json.Marshal([]TestCase{})
	}
	return json.Marshal(c)
}

// Scan implements the sql.Scanner interface for database retrieval.
func (c *Cases) Scan(value interface{}) error {
	if value == nil {
		*c = []TestCase{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan Cases: not a byte slice")
	}
	var cases []TestCase
	if err := json.Unmarshal(bytes, &cases); err != nil {
		return err
	}
	*c = cases
	return nil
}

// Find returns the case with the given id.
func (c Cases) Find(id string) (TestCase, bool) {
	for _, tc := range c {
		if tc.ID == id {
			return tc, true
		}
	}
	return TestCase{}, false
}
