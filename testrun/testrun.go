// Package testrun records every execution attempt of a generated test case:
// which path ran it (subprocess script or directed agent), what verdict it
// reached, and the output that justified the verdict.
package testrun

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrTestRunNotFound is returned when a test run is not found.
	ErrTestRunNotFound = errors.New("test run not found")

	// ErrInvalidSuiteName is returned when suite_name is not set.
	ErrInvalidSuiteName = errors.New("suite_name is required")

	// ErrInvalidCaseID is returned when case_id is not set.
	ErrInvalidCaseID = errors.New("case_id is required")

	// ErrInvalidMode is returned when the execution mode is invalid.
	ErrInvalidMode = errors.New("invalid execution mode")

	// ErrInvalidVerdict is returned when a verdict is invalid.
	ErrInvalidVerdict = errors.New("invalid verdict")

	// ErrTestRunNotRunning is returned when completing a run that is not
	// running.
	ErrTestRunNotRunning = errors.New("test run is not running")

	// ErrTestRunAlreadyStarted is returned when starting a run twice.
	ErrTestRunAlreadyStarted = errors.New("test run already started")
)

// outputCap bounds how much combined output a run record keeps. The full
// script artifact stays in blob storage; the record only needs enough to
// explain the verdict.
const outputCap = 10000

// Mode identifies which execution path produced a run.
type Mode string

const (
	// ModeScript is the deterministic path: the materialized script ran as
	// an isolated subprocess.
	ModeScript Mode = "script"

	// ModeAgent is the fallback path: the stored steps were replayed by a
	// directed agent invocation.
	ModeAgent Mode = "agent"
)

// IsValid checks if the mode is valid.
func (m Mode) IsValid() bool {
	return m == ModeScript || m == ModeAgent
}

// Verdict is the outcome of a test run.
type Verdict string

const (
	VerdictPending Verdict = "pending"
	VerdictRunning Verdict = "running"
	VerdictPass    Verdict = "pass"
	VerdictFail    Verdict = "fail"
	VerdictTimeout Verdict = "timeout"
	VerdictError   Verdict = "error"
)

// IsValid checks if the verdict is valid.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictPending, VerdictRunning, VerdictPass, VerdictFail, VerdictTimeout, VerdictError:
		return true
	default:
		return false
	}
}

// IsFinal checks if the verdict is terminal.
func (v Verdict) IsFinal() bool {
	return v == VerdictPass || v == VerdictFail || v == VerdictTimeout || v == VerdictError
}

// TestRun is one execution attempt of one test case.
type TestRun struct {
	ID          uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	SuiteName   string     `json:"suite_name" gorm:"type:varchar(255);not null;index:idx_test_runs_suite_name"`
	CaseID      string     `json:"case_id" gorm:"type:varchar(255);not null;index:idx_test_runs_case_id"`
	CaseTitle   string     `json:"case_title" gorm:"type:varchar(500)"`
	Mode        Mode       `json:"mode" gorm:"type:varchar(20);not null"`
	Verdict     Verdict    `json:"verdict" gorm:"type:varchar(20);not null;default:'pending';index:idx_test_runs_verdict"`
	Output      string     `json:"output" gorm:"type:text"`
	ScriptKey   string     `json:"script_key,omitempty" gorm:"type:varchar(500)"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DurationMS  int64      `json:"duration_ms"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// New builds a pending run for one case.
func New(suiteName, caseID, caseTitle string, mode Mode) *TestRun {
	return &TestRun{
		SuiteName: suiteName,
		CaseID:    caseID,
		CaseTitle: caseTitle,
		Mode:      mode,
		Verdict:   VerdictPending,
	}
}

// BeforeCreate hook to generate UUID before creating a new test run.
func (tr *TestRun) BeforeCreate(tx *gorm.DB) error {
	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}
	return nil
}

// Validate checks if the test run has valid required fields.
func (tr *TestRun) Validate() error {
	if tr.SuiteName == "" {
		return ErrInvalidSuiteName
	}
	if tr.CaseID == "" {
		return ErrInvalidCaseID
	}
	if !tr.Mode.IsValid() {
		return ErrInvalidMode
	}
	if !tr.Verdict.IsValid() {
		return ErrInvalidVerdict
	}
	return nil
}

// Start sets the started_at timestamp and moves the run to running.
// Returns an error if the run has already been started.
func (tr *TestRun) Start() error {
	if tr.StartedAt != nil {
		return ErrTestRunAlreadyStarted
	}
	now := time.Now()
	tr.StartedAt = &now
	tr.Verdict = VerdictRunning
	return nil
}

// Complete records the final verdict and output, and derives the duration
// from the start timestamp. Returns an error if the run is not running or
// the verdict is not terminal.
func (tr *TestRun) Complete(verdict Verdict, output string) error {
	if tr.Verdict != VerdictRunning {
		return ErrTestRunNotRunning
	}
	if !verdict.IsFinal() {
		return ErrInvalidVerdict
	}
	now := time.Now()
	tr.CompletedAt = &now
	tr.Verdict = verdict
	tr.Output = truncateOutput(output)
	if tr.StartedAt != nil {
		tr.DurationMS = now.Sub(*tr.StartedAt).Milliseconds()
	}
	return nil
}

// truncateOutput keeps the head of an oversized output; the head carries
// the navigation trail, the tail is usually a repeated stack trace.
func truncateOutput(output string) string {
	if len(output) <= outputCap {
		return output
	}
	return output[:outputCap] + "\n... (truncated)"
}
