package main

import (
	"time"

	"github.com/google/uuid"

	"github.com/hairizuan-noorazman/qa-agent/testrun"
)

// PaginatedResponse matches handlers.PaginatedResponse.
type PaginatedResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse matches handlers.ErrorResponse.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse matches handlers.SuccessResponse.
type SuccessResponse struct {
	Message string `json:"message"`
}

// CreateSuiteRequest matches handlers.CreateSuiteRequest.
type CreateSuiteRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	TargetURL   string `json:"target_url"`
	Goal        string `json:"goal,omitempty"`
	Username    string `json:"username,omitempty"`
}

// GenerateRequest matches handlers.GenerateRequest.
type GenerateRequest struct {
	Description string `json:"description,omitempty"`
	TargetURL   string `json:"target_url,omitempty"`
	Goal        string `json:"goal,omitempty"`
}

// CreateIntegrationRequest matches handlers.CreateIntegrationRequest.
type CreateIntegrationRequest struct {
	Name        string            `json:"name"`
	Provider    string            `json:"provider"`
	Settings    map[string]string `json:"settings,omitempty"`
	Credentials map[string]string `json:"credentials"`
}

// UpdateIntegrationRequest matches handlers.UpdateIntegrationRequest.
type UpdateIntegrationRequest struct {
	Active *bool `json:"active,omitempty"`
}

// StepJSON is used for deserializing test case steps.
type StepJSON struct {
	ActionText string `json:"action_text"`
	Selector   string `json:"selector,omitempty"`
}

// TestCaseJSON is used for deserializing test cases.
type TestCaseJSON struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Steps []StepJSON `json:"steps"`
}

// SuiteConfigJSON is used for deserializing suite configuration.
type SuiteConfigJSON struct {
	TargetURL string `json:"target_url"`
	Goal      string `json:"goal,omitempty"`
	Username  string `json:"username,omitempty"`
}

// SuiteResponse is used for deserializing suite responses.
type SuiteResponse struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Config      SuiteConfigJSON   `json:"config"`
	Cases       []TestCaseJSON    `json:"cases"`
	Scripts     map[string]string `json:"scripts"`
	GeneratedAt *time.Time        `json:"generated_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TestRunResponse is used for deserializing test run responses.
type TestRunResponse struct {
	ID          uuid.UUID       `json:"id"`
	SuiteName   string          `json:"suite_name"`
	CaseID      string          `json:"case_id"`
	CaseTitle   string          `json:"case_title"`
	Mode        testrun.Mode    `json:"mode"`
	Verdict     testrun.Verdict `json:"verdict"`
	Output      string          `json:"output"`
	ScriptKey   string          `json:"script_key,omitempty"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	DurationMS  int64           `json:"duration_ms"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SummaryResponse matches execution.Summary.
type SummaryResponse struct {
	Suite   string            `json:"suite"`
	Total   int               `json:"total"`
	Pass    int               `json:"pass"`
	Fail    int               `json:"fail"`
	Timeout int               `json:"timeout"`
	Error   int               `json:"error"`
	Runs    []TestRunResponse `json:"runs"`
}

// IntegrationResponse is used for deserializing integration responses.
// Sealed credentials are never part of the API surface.
type IntegrationResponse struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Provider  string            `json:"provider"`
	Settings  map[string]string `json:"settings"`
	Active    bool              `json:"active"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
