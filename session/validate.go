package session

import (
	"context"
	"fmt"

	"github.com/hairizuan-noorazman/qa-agent/browser"
	"github.com/hairizuan-noorazman/qa-agent/identity"
	"github.com/hairizuan-noorazman/qa-agent/selector"
)

// Validate loads the cached session, injects it into the page, navigates to
// the identity's login URL, and probes for the login-form marker. An
// interactable marker means the application bounced us back to the login
// page: the cache is invalidated and false is returned. No marker means the
// session is live.
//
// The probe is a heuristic: an application that keeps a hidden login form in
// the DOM while logged in would false-positive on a bare presence check,
// which is why only interactable markers count.
func (s *Store) Validate(ctx context.Context, page browser.Page, id *identity.Identity) (bool, error) {
	cookies, err := s.Load(ctx, id)
	if err != nil {
		return false, err
	}

	if err := page.AddCookies(ctx, cookies); err != nil {
		return false, fmt.Errorf("inject cached session: %w", err)
	}
	if err := page.Goto(ctx, id.LoginURL()); err != nil {
		return false, fmt.Errorf("validate cached session: %w", err)
	}
	if err := page.WaitSettle(ctx); err != nil {
		return false, err
	}

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
			s.logger.Info(ctx, "cached session rejected by application", map[string]interface{}{
				"identity_hash": id.Hash(),
			})
			if err := s.Invalidate(ctx, id); err != nil {
				s.logger.Warn(ctx, "unable to drop rejected session cache", map[string]interface{}{
					"identity_hash": id.Hash(),
					"error":         err.Error(),
				})
			}
			return false, nil
		}
	}

	s.logger.Info(ctx, "cached session accepted", map[string]interface{}{
		"identity_hash": id.Hash(),
	})
	return true, nil
}
