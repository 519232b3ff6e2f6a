// Package selector resolves ordered CSS selector candidate lists against a
// live page. Order encodes caller preference: resolution walks the list and
// stops at the first currently-interactable match, so placing the most
// specific selector first keeps behavior stable across page variants.
package selector

import (
	"context"
	"errors"
	"fmt"

	"github.com/hairizuan-noorazman/qa-agent/browser"
	"github.com/hairizuan-noorazman/qa-agent/logger"
)

var ErrNoInteractableMatch = errors.New("no interactable element matched any candidate selector")

// Ordered login-form candidates. The first entries target the test shop
// conventions, the later ones generic login pages.
var (
	UsernameCandidates = []string{
		"input[name='user-name']",
		"#user-name",
		"input[type='email']",
		"input[name='username']",
		"input[name='email']",
		"#username",
		"#email",
	}

	PasswordCandidates = []string{
		"input[name='password']",
		"#password",
		"input[type='password']",
	}

	SubmitCandidates = []string{
		"input[type='submit']",
		"button[type='submit']",
		"#login-button",
		"button:has-text(\"Login\")",
		"button:has-text(\"Sign in\")",
	}
)

// LoginFormMarker is the combined probe used to decide whether a page is
// showing a login form. Its presence after navigating with cached cookies
// means the session was rejected.
const LoginFormMarker = "input[name='user-name'], #user-name, input[type='email']"

// Resolver walks candidate lists against a page.
type Resolver struct {
	logger logger.Logger
}

func NewResolver(log logger.Logger) *Resolver {
	return &Resolver{logger: log}
}

// Resolve returns the first currently-interactable element produced by the
// candidates, in list order, together with the candidate that matched.
// Candidates matching nothing advance the walk; a query failure aborts it.
// Exhaustion returns ErrNoInteractableMatch.
func (r *Resolver) Resolve(ctx context.Context, page browser.Page, candidates []string) (browser.Element, string, error) {
	for _, candidate := range candidates {
		elements, err := page.Elements(ctx, candidate)
		if err != nil {
			return nil, "", fmt.Errorf("querying %q: %w", candidate, err)
		}
		for _, el := range elements {
			ok, err := el.Interactable()
			if err != nil {
				r.logger.Debug(ctx, "interactability check failed, skipping element", map[string]interface{}{
					"selector": candidate,
				})
				continue
			}
			if ok {
				return el, candidate, nil
			}
		}
	}
	return nil, "", ErrNoInteractableMatch
}

// Fill resolves the candidates and fills the matched element, returning the
// candidate that matched. The value is never part of an error message.
func (r *Resolver) Fill(ctx context.Context, page browser.Page, candidates []string, value string) (string, error) {
	el, matched, err := r.Resolve(ctx, page, candidates)
	if err != nil {
		return "", fmt.Errorf("fill: %w", err)
	}
	if err := el.Fill(value); err != nil {
		return "", fmt.Errorf("fill via %q: %w", matched, err)
	}
	return matched, nil
}

// Click resolves the candidates and clicks the matched element, returning
// the candidate that matched.
func (r *Resolver) Click(ctx context.Context, page browser.Page, candidates []string) (string, error) {
	el, matched, err := r.Resolve(ctx, page, candidates)
	if err != nil {
		return "", fmt.Errorf("click: %w", err)
	}
	if err := el.Click(); err != nil {
		return "", fmt.Errorf("click via %q: %w", matched, err)
	}
	return matched, nil
}
