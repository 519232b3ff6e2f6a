package execution

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuan-noorazman/qa-agent/integration"
	"github.com/hairizuan-noorazman/qa-agent/issuetracker"
	"github.com/hairizuan-noorazman/qa-agent/logger"
	"github.com/hairizuan-noorazman/qa-agent/testrun"
	"github.com/hairizuan-noorazman/qa-agent/testutil"
)

const testPassphrase = "operator-passphrase"

// fakeTrackerClient records created issues.
type fakeTrackerClient struct {
	created []issuetracker.CreateIssueInput
	err     error
}

func (f *fakeTrackerClient) CreateIssue(ctx context.Context, input issuetracker.CreateIssueInput) (*issuetracker.Issue, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, input)
	return &issuetracker.Issue{
		ExternalID: "42",
		Title:      input.Title,
		URL:        "https://tracker.example.com/42",
		Provider:   issuetracker.ProviderGitHub,
		CreatedAt:  time.Now(),
	}, nil
}

func (f *fakeTrackerClient) ValidateConnection(ctx context.Context) error { return nil }

func setupReporter(t *testing.T, client issuetracker.Client) (*Reporter, integration.Store) {
	t.Helper()
	log := logger.NewTestLogger()
	db := testutil.SetupTestDBWithModels(t, &integration.Integration{}, &integration.IssueLink{})
	store := integration.NewMySQLStore(db, log)

	reporter := NewReporter(store, testPassphrase, log)
	reporter.newClient = func(provider issuetracker.ProviderType, settings, credentials map[string]string) (issuetracker.Client, error) {
		return client, nil
	}
	return reporter, store
}

func sealedCredentials(t *testing.T, passphrase string) []byte {
	t.Helper()
	key := integration.DeriveKey(passphrase)
	sealed, err := integration.EncryptCredentials(key, map[string]string{"token": "ghp_x"})
	require.NoError(t, err)
	return sealed
}

func createIntegration(t *testing.T, store integration.Store, sealed []byte, active bool) *integration.Integration {
	t.Helper()
	integ := &integration.Integration{
		Name:              "tracker",
		Provider:          issuetracker.ProviderGitHub,
		Settings:          integration.Settings{"owner": "acme", "repo": "shop-tests"},
		SealedCredentials: sealed,
		Active:            active,
	}
	require.NoError(t, store.Create(context.Background(), integ))
	return integ
}

func failingRun() *testrun.TestRun {
	return &testrun.TestRun{
		ID:        uuid.New(),
		SuiteName: "smoke",
		CaseID:    "TC1",
		CaseTitle: "Add to cart",
		Mode:      testrun.ModeScript,
		Verdict:   testrun.VerdictFail,
		Output:    "step failed: element not found\nFinal Result: FAIL",
	}
}

func TestReporter_FilesIssueForFailingRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := &fakeTrackerClient{}
	reporter, store := setupReporter(t, client)
	integ := createIntegration(t, store, sealedCredentials(t, testPassphrase), true)

	run := failingRun()
	reporter.Report(ctx, run)

	require.Len(t, client.created, 1)
	assert.Equal(t, "smoke / TC1: fail", client.created[0].Title)
	assert.Contains(t, client.created[0].Description, "Final Result: FAIL")
	assert.Equal(t, []string{issueLabel}, client.created[0].Labels)

	links, err := store.ListIssueLinksByRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "42", links[0].ExternalID)
	assert.Equal(t, integ.ID, links[0].IntegrationID)
	assert.Equal(t, "https://tracker.example.com/42", links[0].URL)
}

func TestReporter_SkipsPassingRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := &fakeTrackerClient{}
	reporter, store := setupReporter(t, client)
	createIntegration(t, store, sealedCredentials(t, testPassphrase), true)

	run := failingRun()
	run.Verdict = testrun.VerdictPass
	reporter.Report(ctx, run)

	assert.Empty(t, client.created)
}

func TestReporter_SkipsInactiveIntegration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := &fakeTrackerClient{}
	reporter, store := setupReporter(t, client)
	createIntegration(t, store, sealedCredentials(t, testPassphrase), false)

	reporter.Report(ctx, failingRun())
	assert.Empty(t, client.created)
}

func TestReporter_WrongPassphraseIsNonFatal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := &fakeTrackerClient{}
	reporter, store := setupReporter(t, client)
	createIntegration(t, store, sealedCredentials(t, "a-different-passphrase"), true)

	// Unsealing fails; the report is dropped without panicking and no
	// issue link is written.
	run := failingRun()
	reporter.Report(ctx, run)

	assert.Empty(t, client.created)
	links, err := store.ListIssueLinksByRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestReporter_TrackerErrorIsNonFatal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := &fakeTrackerClient{err: assert.AnError}
	reporter, store := setupReporter(t, client)
	createIntegration(t, store, sealedCredentials(t, testPassphrase), true)

	run := failingRun()
	reporter.Report(ctx, run)

	links, err := store.ListIssueLinksByRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestIssueBody_TruncatesLongOutput(t *testing.T) {
	t.Parallel()

	run := failingRun()
	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'x'
	}
	run.Output = string(long) + "TAIL"

	body := issueBody(run)
	assert.Contains(t, body, "TAIL")
	assert.Less(t, len(body), 3000)
}
