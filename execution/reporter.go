package execution

import (
	"context"
	"fmt"

	"github.com/hairizuan-noorazman/qa-agent/integration"
	"github.com/hairizuan-noorazman/qa-agent/issuetracker"
	"github.com/hairizuan-noorazman/qa-agent/logger"
	"github.com/hairizuan-noorazman/qa-agent/testrun"
)

// outputTailLen bounds how much run output an issue body carries.
const outputTailLen = 2000

// issueLabel tags every issue the reporter files.
const issueLabel = "qa-agent"

// Reporter files issues for failing runs through the configured active
// integrations. Reporting is strictly best effort: any failure is logged
// and the run's verdict stands.
type Reporter struct {
	integrations integration.Store
	key          [32]byte
	logger       logger.Logger

	// newClient is swapped in tests.
	newClient func(provider issuetracker.ProviderType, settings, credentials map[string]string) (issuetracker.Client, error)
}

// NewReporter builds a reporter sealing-key from the operator passphrase.
func NewReporter(integrations integration.Store, passphrase string, log logger.Logger) *Reporter {
	return &Reporter{
		integrations: integrations,
		key:          integration.DeriveKey(passphrase),
		logger:       log,
		newClient:    issuetracker.NewClient,
	}
}

// Report files one issue per active integration for a failing run and
// persists the resulting links.
func (r *Reporter) Report(ctx context.Context, run *testrun.TestRun) {
	if run.Verdict == testrun.VerdictPass || !run.Verdict.IsFinal() {
		return
	}

	active, err := r.integrations.ListActive(ctx)
	if err != nil {
		r.logger.Error(ctx, "unable to list active integrations", map[string]interface{}{
			"run_id": run.ID.String(),
			"error":  err.Error(),
		})
		return
	}

	for _, integ := range active {
		if err := r.reportOne(ctx, run, integ); err != nil {
			r.logger.Error(ctx, "issue reporting failed", map[string]interface{}{
				"run_id":      run.ID.String(),
				"integration": integ.Name,
				"provider":    string(integ.Provider),
				"error":       err.Error(),
			})
		}
	}
}

func (r *Reporter) reportOne(ctx context.Context, run *testrun.TestRun, integ *integration.Integration) error {
	credentials, err := integration.DecryptCredentials(r.key, integ.SealedCredentials)
	if err != nil {
		return fmt.Errorf("unseal credentials: %w", err)
	}

	client, err := r.newClient(integ.Provider, integ.Settings, credentials)
	if err != nil {
		return fmt.Errorf("build tracker client: %w", err)
	}

	issue, err := client.CreateIssue(ctx, issuetracker.CreateIssueInput{
		Title:       issueTitle(run),
		Description: issueBody(run),
		Labels:      []string{issueLabel},
	})
	if err != nil {
		return fmt.Errorf("create issue: %w", err)
	}

	link := &integration.IssueLink{
		RunID:         run.ID,
		IntegrationID: integ.ID,
		ExternalID:    issue.ExternalID,
		Title:         issue.Title,
		URL:           issue.URL,
		Provider:      issue.Provider,
	}
	if err := r.integrations.CreateIssueLink(ctx, link); err != nil {
		return fmt.Errorf("persist issue link: %w", err)
	}

	r.logger.Info(ctx, "issue filed for failing run", map[string]interface{}{
		"run_id":      run.ID.String(),
		"integration": integ.Name,
		"external_id": issue.ExternalID,
		"url":         issue.URL,
	})
	return nil
}

func issueTitle(run *testrun.TestRun) string {
	return fmt.Sprintf("%s / %s: %s", run.SuiteName, run.CaseID, run.Verdict)
}

// issueBody carries the run coordinates and the tail of the output; the
// tail is where the failure detail lives.
func issueBody(run *testrun.TestRun) string {
	output := run.Output
	if len(output) > outputTailLen {
		output = "..." + output[len(output)-outputTailLen:]
	}
	return fmt.Sprintf(
		"Suite: %s\nCase: %s (%s)\nMode: %s\nVerdict: %s\nDuration: %dms\n\nOutput:\n```\n%s\n```",
		run.SuiteName, run.CaseID, run.CaseTitle, run.Mode, run.Verdict, run.DurationMS, output)
}
