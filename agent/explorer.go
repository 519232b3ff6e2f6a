// Package agent orchestrates browser exploration: authenticate (cached
// session or fresh login), hand a secret-free task to the agent runner, and
// return its raw reply for extraction. The generation pipeline on top of it
// persists the results.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/hairizuan-noorazman/qa-agent/browser"
	"github.com/hairizuan-noorazman/qa-agent/identity"
	"github.com/hairizuan-noorazman/qa-agent/logger"
	"github.com/hairizuan-noorazman/qa-agent/login"
	"github.com/hairizuan-noorazman/qa-agent/session"
	"github.com/hairizuan-noorazman/qa-agent/suite"
)

// Explorer runs one exploration per call on a fresh page: session check,
// fresh login when needed, then the agent task. Every task text passes the
// leak guard before it reaches the runner.
type Explorer struct {
	driver   browser.Driver
	sessions *session.Store
	injector *login.Injector
	runner   Runner
	guard    *LeakGuard
	logger   logger.Logger
}

func NewExplorer(driver browser.Driver, sessions *session.Store, injector *login.Injector, runner Runner, log logger.Logger) *Explorer {
	return &Explorer{
		driver:   driver,
		sessions: sessions,
		injector: injector,
		runner:   runner,
		guard:    NewLeakGuard(),
		logger:   log,
	}
}

// Explore authenticates and runs the exploration task, returning the raw
// agent reply.
func (e *Explorer) Explore(ctx context.Context, id *identity.Identity, spec TaskSpec) (string, error) {
	page, err := e.driver.NewPage(ctx)
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	if err := e.authenticate(ctx, page, id); err != nil {
		return "", err
	}

	task := BuildTask(spec)
	if err := e.dispatchGuard(ctx, id, task); err != nil {
		return "", err
	}

	e.logger.Info(ctx, "starting exploration", map[string]interface{}{
		"identity_hash": id.Hash(),
		"target_url":    spec.TargetURL,
	})
	reply, err := e.runner.Run(ctx, task, page)
	if err != nil {
		return "", fmt.Errorf("exploration run: %w", err)
	}
	return reply, nil
}

// RunSteps authenticates and drives the directed fallback: the agent replays
// a stored step list and reports a bare PASS/FAIL verdict on its final line.
func (e *Explorer) RunSteps(ctx context.Context, id *identity.Identity, targetURL string, steps []suite.Step) (string, error) {
	page, err := e.driver.NewPage(ctx)
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	if err := e.authenticate(ctx, page, id); err != nil {
		return "", err
	}

	task := DirectedTask(targetURL, steps)
	if err := e.dispatchGuard(ctx, id, task); err != nil {
		return "", err
	}

	reply, err := e.runner.Run(ctx, task, page)
	if err != nil {
		return "", fmt.Errorf("directed run: %w", err)
	}
	return reply, nil
}

// authenticate tries the cached session first and falls back to a fresh
// login. Validation errors degrade to a login attempt rather than failing
// the run; login errors are fatal.
func (e *Explorer) authenticate(ctx context.Context, page browser.Page, id *identity.Identity) error {
	valid, err := e.sessions.Validate(ctx, page, id)
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		e.logger.Warn(ctx, "session validation failed, falling back to login", map[string]interface{}{
			"identity_hash": id.Hash(),
			"error":         err.Error(),
		})
	}
	if valid {
		return nil
	}

	if err := e.injector.Login(ctx, page, id); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

// dispatchGuard registers the identity's secret material and scans the task
// text before it leaves the process.
func (e *Explorer) dispatchGuard(ctx context.Context, id *identity.Identity, task string) error {
	e.guard.Register(id)
	if err := e.guard.Scan(task); err != nil {
		e.logger.Error(ctx, "secret material detected in outbound task, aborting", map[string]interface{}{
			"identity_hash": id.Hash(),
		})
		return err
	}
	return nil
}
