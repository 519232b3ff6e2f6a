// Package login performs the credential injection flow. It is the only
// package that reads identity secret material; everything downstream of it
// works with an already-authenticated page.
package login

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hairizuan-noorazman/qa-agent/browser"
	"github.com/hairizuan-noorazman/qa-agent/identity"
	"github.com/hairizuan-noorazman/qa-agent/logger"
	"github.com/hairizuan-noorazman/qa-agent/selector"
	"github.com/hairizuan-noorazman/qa-agent/session"
)

var (
	// ErrLoginFormNotFound is returned when neither a username nor a
	// password field could be resolved on the login page.
	ErrLoginFormNotFound = errors.New("login form not found")

	// ErrLoginRejected is returned when the application still shows the
	// login form after submitting credentials.
	ErrLoginRejected = errors.New("login rejected by application")
)

// interstitialDelay separates the two Escape presses that dismiss
// password-manager prompts and similar post-login overlays.
const interstitialDelay = time.Second

// Injector drives a login form with ordered selector candidates and caches
// the resulting session.
type Injector struct {
	resolver *selector.Resolver
	sessions *session.Store
	logger   logger.Logger
	delay    time.Duration
}

func NewInjector(resolver *selector.Resolver, sessions *session.Store, log logger.Logger) *Injector {
	return &Injector{resolver: resolver, sessions: sessions, logger: log, delay: interstitialDelay}
}

// Login navigates to the identity's login URL, fills whatever login fields
// resolve (best effort: a missing field is skipped with a warning), submits,
// dismisses post-login interstitials, verifies the form is gone, and caches
// the session cookies. Secret material flows through the fill call only;
// it never reaches a log or an error.
func (inj *Injector) Login(ctx context.Context, page browser.Page, id *identity.Identity) error {
	log := inj.logger.WithField("identity_hash", id.Hash())

	if err := page.Goto(ctx, id.LoginURL()); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	if err := page.WaitSettle(ctx); err != nil {
		return err
	}

	usernameFilled := true
	userMatched, err := inj.resolver.Fill(ctx, page, selector.UsernameCandidates, id.Handle())
	if errors.Is(err, selector.ErrNoInteractableMatch) {
		usernameFilled = false
		log.Warn(ctx, "username field not found, skipping", nil)
	} else if err != nil {
		return fmt.Errorf("fill username: %w", err)
	}

	passwordFilled := true
	var passMatched string
	err = id.WithSecret(func(secret string) error {
		matched, fillErr := inj.resolver.Fill(ctx, page, selector.PasswordCandidates, secret)
		passMatched = matched
		return fillErr
	})
	if errors.Is(err, selector.ErrNoInteractableMatch) {
		passwordFilled = false
		log.Warn(ctx, "password field not found, skipping", nil)
	} else if err != nil {
		return fmt.Errorf("fill password: %w", err)
	}

	if !usernameFilled && !passwordFilled {
		return ErrLoginFormNotFound
	}
	log.Debug(ctx, "login fields filled", map[string]interface{}{
		"username_selector": userMatched,
		"password_selector": passMatched,
	})

	if err := inj.submit(ctx, page, log); err != nil {
		return err
	}
	if err := page.WaitSettle(ctx); err != nil {
		return err
	}
	if err := inj.dismissInterstitials(ctx, page); err != nil {
		return err
	}

	if rejected, err := inj.loginFormStillShown(ctx, page); err != nil {
		return err
	} else if rejected {
		return ErrLoginRejected
	}

	cookies, err := page.Cookies(ctx)
	if err != nil {
		return fmt.Errorf("capture session cookies: %w", err)
	}
	if len(cookies) == 0 {
		log.Warn(ctx, "no cookies after login, session will not be cached", nil)
		return nil
	}
	if err := inj.sessions.Save(ctx, id, cookies); err != nil {
		return fmt.Errorf("cache session: %w", err)
	}

	log.Info(ctx, "login flow completed", map[string]interface{}{
		"cookies": len(cookies),
	})
	return nil
}

// submit clicks the submit candidates, falling back to pressing Enter in
// the focused field when no submit control resolves.
func (inj *Injector) submit(ctx context.Context, page browser.Page, log logger.Logger) error {
	matched, err := inj.resolver.Click(ctx, page, selector.SubmitCandidates)
	if errors.Is(err, selector.ErrNoInteractableMatch) {
		log.Debug(ctx, "no submit control, pressing Enter", nil)
		if err := page.PressKey(ctx, "Enter"); err != nil {
			return fmt.Errorf("submit via Enter: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("submit login form: %w", err)
	}
	log.Debug(ctx, "login form submitted", map[string]interface{}{
		"submit_selector": matched,
	})
	return nil
}

// dismissInterstitials presses Escape twice with a short pause, clearing
// save-password bubbles and welcome overlays that would sit on top of the
// page during exploration.
func (inj *Injector) dismissInterstitials(ctx context.Context, page browser.Page) error {
	if err := page.PressKey(ctx, "Escape"); err != nil {
		return err
	}
	select {
	case <-time.After(inj.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return page.PressKey(ctx, "Escape")
}

func (inj *Injector) loginFormStillShown(ctx context.Context, page browser.Page) (bool, error) {
	markers, err := page.Elements(ctx, selector.LoginFormMarker)
	if err != nil {
		return false, fmt.Errorf("probe login form: %w", err)
	}
	for _, el := range markers {
		ok, err := el.Interactable()
		if err != nil {
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
