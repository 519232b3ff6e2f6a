// Package execution runs generated test cases and records a verdict for
// every attempt. The deterministic path executes the materialized script as
// an isolated subprocess; the agent path replays the stored steps through a
// directed agent invocation when no usable script exists.
package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/hairizuan-noorazman/qa-agent/identity"
	"github.com/hairizuan-noorazman/qa-agent/logger"
	"github.com/hairizuan-noorazman/qa-agent/scriptgen"
	"github.com/hairizuan-noorazman/qa-agent/storage"
	"github.com/hairizuan-noorazman/qa-agent/suite"
	"github.com/hairizuan-noorazman/qa-agent/testrun"
)

var (
	// ErrCaseNotFound is returned when a suite has no case with the given id.
	ErrCaseNotFound = errors.New("test case not found in suite")
)

// Config controls the execution coordinator.
type Config struct {
	// ScriptTimeout bounds one subprocess run.
	ScriptTimeout time.Duration

	// AgentTimeout bounds one directed fallback run. The agent path is
	// slower than a subprocess (a full login plus a model round-trip per
	// step), so it gets its own bound.
	AgentTimeout time.Duration

	// Workers bounds suite-wide fan-out.
	Workers int

	// PythonPath is the interpreter the scripts run under.
	PythonPath string
}

const (
	defaultScriptTimeout = 60 * time.Second
	defaultAgentTimeout  = 5 * time.Minute
	defaultWorkers       = 3
	defaultPythonPath    = "python3"
)

func (c Config) withDefaults() Config {
	if c.ScriptTimeout <= 0 {
		c.ScriptTimeout = defaultScriptTimeout
	}
	if c.AgentTimeout <= 0 {
		c.AgentTimeout = defaultAgentTimeout
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.PythonPath == "" {
		c.PythonPath = defaultPythonPath
	}
	return c
}

// StepRunner is the directed agent fallback; *agent.Explorer implements it.
type StepRunner interface {
	RunSteps(ctx context.Context, id *identity.Identity, targetURL string, steps []suite.Step) (string, error)
}

// Coordinator executes cases and persists one testrun record per attempt.
type Coordinator struct {
	config   Config
	suites   suite.Store
	runs     testrun.Store
	blobs    storage.BlobStorage
	fallback StepRunner
	identity *identity.Identity
	reporter *Reporter
	logger   logger.Logger
}

// NewCoordinator wires the coordinator. reporter may be nil when no issue
// reporting is configured.
func NewCoordinator(
	config Config,
	suites suite.Store,
	runs testrun.Store,
	blobs storage.BlobStorage,
	fallback StepRunner,
	id *identity.Identity,
	reporter *Reporter,
	log logger.Logger,
) *Coordinator {
	return &Coordinator{
		config:   config.withDefaults(),
		suites:   suites,
		runs:     runs,
		blobs:    blobs,
		fallback: fallback,
		identity: id,
		reporter: reporter,
		logger:   log,
	}
}

// RunCase executes one case. With a usable script artifact the subprocess
// path runs; without one, or when the subprocess verdict is error, the
// directed agent fallback runs as a second recorded attempt. The returned
// run is the attempt that settled the case.
func (c *Coordinator) RunCase(ctx context.Context, suiteName, caseID string) (*testrun.TestRun, error) {
	s, err := c.suites.GetByName(ctx, suiteName)
	if err != nil {
		return nil, err
	}
	tc, ok := s.Cases.Find(caseID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}

	if key := s.Scripts[tc.ID]; key != "" {
		run, err := c.runScript(ctx, s, tc, key)
		if err != nil {
			return nil, err
		}
		if run.Verdict != testrun.VerdictError {
			c.report(ctx, run)
			return run, nil
		}
		c.logger.Warn(ctx, "script attempt errored, falling back to directed agent", map[string]interface{}{
			"suite":   suiteName,
			"case_id": tc.ID,
			"run_id":  run.ID.String(),
		})
	}

	run, err := c.runAgent(ctx, s, tc)
	if err != nil {
		return nil, err
	}
	c.report(ctx, run)
	return run, nil
}

// runScript executes the materialized script as a subprocess and records
// the attempt. A missing artifact or a spawn failure yields an error
// verdict, which the caller treats as a fallback trigger.
func (c *Coordinator) runScript(ctx context.Context, s *suite.Suite, tc suite.TestCase, key string) (*testrun.TestRun, error) {
	run := testrun.New(s.Name, tc.ID, tc.Title, testrun.ModeScript)
	run.ScriptKey = key
	if err := c.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run record: %w", err)
	}
	if err := c.runs.Start(ctx, run.ID); err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}

	verdict, output := c.executeScript(ctx, s, key)
	if err := c.runs.Complete(ctx, run.ID, verdict, output); err != nil {
		return nil, fmt.Errorf("complete run: %w", err)
	}
	return c.runs.GetByID(ctx, run.ID)
}

// executeScript downloads the artifact, runs it under the script timeout,
// and maps the outcome to a verdict.
func (c *Coordinator) executeScript(ctx context.Context, s *suite.Suite, key string) (testrun.Verdict, string) {
	rc, err := c.blobs.Download(ctx, key)
	if err != nil {
		return testrun.VerdictError, fmt.Sprintf("script artifact %s unavailable: %v", key, err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "qa-agent-*.py")
	if err != nil {
		return testrun.VerdictError, fmt.Sprintf("stage script: %v", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		return testrun.VerdictError, fmt.Sprintf("stage script: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return testrun.VerdictError, fmt.Sprintf("stage script: %v", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.config.ScriptTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.config.PythonPath, tmp.Name())
	cmd.Env = c.scriptEnv(s)

	outBytes, runErr := cmd.CombinedOutput()
	output := string(outBytes)

	if runCtx.Err() == context.DeadlineExceeded {
		return testrun.VerdictTimeout, output
	}
	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		// The process never ran.
		return testrun.VerdictError, fmt.Sprintf("spawn script: %v", runErr)
	}

	if strings.Contains(output, scriptgen.PassSentinel) || runErr == nil {
		return testrun.VerdictPass, output
	}
	return testrun.VerdictFail, output
}

// scriptEnv builds the subprocess environment: the parent environment plus
// the target credentials. The secret goes straight from the identity into
// the env slice; it never touches a log or a run record.
func (c *Coordinator) scriptEnv(s *suite.Suite) []string {
	env := append(os.Environ(),
		"APP_USERNAME="+c.identity.Handle(),
		"APP_BASE_URL="+s.Config.TargetURL,
	)
	c.identity.WithSecret(func(secret string) error {
		env = append(env, "APP_PASSWORD="+secret)
		return nil
	})
	return env
}

// runAgent drives the directed fallback and records the attempt.
func (c *Coordinator) runAgent(ctx context.Context, s *suite.Suite, tc suite.TestCase) (*testrun.TestRun, error) {
	run := testrun.New(s.Name, tc.ID, tc.Title, testrun.ModeAgent)
	if err := c.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run record: %w", err)
	}
	if err := c.runs.Start(ctx, run.ID); err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}

	verdict, output := c.executeAgent(ctx, s, tc)
	if err := c.runs.Complete(ctx, run.ID, verdict, output); err != nil {
		return nil, fmt.Errorf("complete run: %w", err)
	}
	return c.runs.GetByID(ctx, run.ID)
}

// executeAgent maps the directed run's reply to a verdict. The task asks
// for a final PASS line on success; a reply that does not end with it did
// not demonstrably complete the steps, so anything but PASS is a fail.
func (c *Coordinator) executeAgent(ctx context.Context, s *suite.Suite, tc suite.TestCase) (testrun.Verdict, string) {
	runCtx, cancel := context.WithTimeout(ctx, c.config.AgentTimeout)
	defer cancel()

	reply, err := c.fallback.RunSteps(runCtx, c.identity, s.Config.TargetURL, tc.Steps)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return testrun.VerdictTimeout, fmt.Sprintf("directed run timed out: %v", err)
		}
		return testrun.VerdictError, fmt.Sprintf("directed run failed: %v", err)
	}

	if finalLine(reply) == "PASS" {
		return testrun.VerdictPass, reply
	}
	return testrun.VerdictFail, reply
}

// report files issues for a failing verdict; never fatal.
func (c *Coordinator) report(ctx context.Context, run *testrun.TestRun) {
	if c.reporter == nil {
		return
	}
	c.reporter.Report(ctx, run)
}

// finalLine returns the last non-empty trimmed line of a reply.
func finalLine(text string) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
