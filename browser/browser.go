// Package browser abstracts the driven Chromium instance behind small
// interfaces so the login, session, and exploration flows can be exercised
// against a fake. The real implementation wraps playwright-go.
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	ErrBrowserNotStarted = errors.New("browser driver not started")
	ErrPageClosed        = errors.New("page is closed")
)

// Driver owns a running browser process and hands out isolated pages. Each
// page gets its own browser context, so concurrent generation requests never
// share cookies or storage.
type Driver interface {
	// NewPage opens a fresh page in a new browser context.
	NewPage(ctx context.Context) (Page, error)

	// Close tears down every open context and stops the browser.
	Close() error
}

// Page is one tab in an isolated context.
type Page interface {
	// Goto navigates and waits for the document to load.
	Goto(ctx context.Context, url string) error

	// WaitSettle waits for the network to go quiet plus a fixed delay, so
	// post-navigation scripts and overlays have finished moving.
	WaitSettle(ctx context.Context) error

	// Elements returns every element matching the CSS selector. No match is
	// an empty slice, not an error.
	Elements(ctx context.Context, selector string) ([]Element, error)

	// Cookies returns the cookies of the page's context.
	Cookies(ctx context.Context) ([]Cookie, error)

	// AddCookies injects cookies into the page's context.
	AddCookies(ctx context.Context, cookies []Cookie) error

	// PressKey sends a keyboard key (for example "Escape" or "Enter") to the
	// focused element.
	PressKey(ctx context.Context, key string) error

	// Title returns the current document title.
	Title(ctx context.Context) (string, error)

	// URL returns the current page URL.
	URL() string

	// Close closes the page and its context.
	Close() error
}

// Element is a handle to a DOM element.
type Element interface {
	// Interactable reports whether the element is visible and enabled.
	Interactable() (bool, error)

	// Fill clears the element and types the value into it.
	Fill(value string) error

	// Click clicks the element.
	Click() error

	// Text returns the element's text content.
	Text() (string, error)

	// Describe returns a compact one-line descriptor (tag, id, name, text)
	// used to build page observations for the agent.
	Describe() (string, error)
}

// Config controls the real driver. Zero values are filled in by NewDriver.
type Config struct {
	Headless        bool
	SlowMoMS        float64
	NavTimeout      time.Duration
	SettleDelay     time.Duration
	InstallBrowsers bool
}

const (
	defaultNavTimeout  = 30 * time.Second
	defaultSettleDelay = 3 * time.Second

	viewportWidth  = 1280
	viewportHeight = 800
)
