package browser

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/hairizuan-noorazman/qa-agent/logger"
)

// Launch flags that keep Chromium from interfering with automated logins:
// password manager bubbles, first-run dialogs, and popup blocking all steal
// focus from the page under test.
var chromiumArgs = []string{
	"--disable-save-password-bubble",
	"--disable-infobars",
	"--no-default-browser-check",
	"--no-first-run",
	"--disable-popup-blocking",
	"--password-store=basic",
	"--disable-blink-features=AutofillShowTypePredictions",
}

// PlaywrightDriver drives a real Chromium through playwright-go. One driver
// owns one browser process; every NewPage call gets an isolated context.
type PlaywrightDriver struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	cfg     Config
	logger  logger.Logger
}

// NewDriver installs the playwright runtime when configured to, starts it,
// and launches Chromium. A launch failure is fatal to the caller; the error
// names the missing prerequisite.
func NewDriver(cfg Config, log logger.Logger) (*PlaywrightDriver, error) {
	if cfg.NavTimeout == 0 {
		cfg.NavTimeout = defaultNavTimeout
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = defaultSettleDelay
	}

	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if cfg.InstallBrowsers {
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("failed to install playwright browsers: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright driver (set browser.install to fetch it): %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args:     chromiumArgs,
	}
	if cfg.SlowMoMS > 0 {
		launchOpts.SlowMo = playwright.Float(cfg.SlowMoMS)
	}
	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch chromium: %w", err)
	}

	log.Info(context.Background(), "browser launched", map[string]interface{}{
		"headless": cfg.Headless,
	})
	return &PlaywrightDriver{pw: pw, browser: browser, cfg: cfg, logger: log}, nil
}

// NewPage opens a page inside a fresh browser context.
func (d *PlaywrightDriver) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.browser == nil {
		return nil, ErrBrowserNotStarted
	}

	browserCtx, err := d.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: viewportWidth, Height: viewportHeight},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(float64(d.cfg.NavTimeout.Milliseconds()))

	return &playwrightPage{page: page, context: browserCtx, cfg: d.cfg, logger: d.logger}, nil
}

// Close stops the browser and the playwright driver.
func (d *PlaywrightDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var firstErr error
	if d.browser != nil {
		if err := d.browser.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close browser: %w", err)
		}
		d.browser = nil
	}
	if d.pw != nil {
		if err := d.pw.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to stop playwright: %w", err)
		}
		d.pw = nil
	}
	return firstErr
}

type playwrightPage struct {
	page    playwright.Page
	context playwright.BrowserContext
	cfg     Config
	logger  logger.Logger
	closed  bool
}

func (p *playwrightPage) Goto(ctx context.Context, url string) error {
	if err := p.ready(ctx); err != nil {
		return err
	}
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(p.cfg.NavTimeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

func (p *playwrightPage) WaitSettle(ctx context.Context) error {
	if err := p.ready(ctx); err != nil {
		return err
	}
	// Network idle is best effort: long-polling apps never reach it, and
	// the fixed delay below is what actually lets overlays finish.
	if err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(p.cfg.SettleDelay.Milliseconds()) * 2),
	}); err != nil {
		p.logger.Debug(ctx, "network idle not reached", map[string]interface{}{"url": p.page.URL()})
	}
	select {
	case <-time.After(p.cfg.SettleDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *playwrightPage) Elements(ctx context.Context, selector string) ([]Element, error) {
	if err := p.ready(ctx); err != nil {
		return nil, err
	}
	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("selector query %q failed: %w", selector, err)
	}
	elements := make([]Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, &playwrightElement{handle: h})
	}
	return elements, nil
}

func (p *playwrightPage) Cookies(ctx context.Context) ([]Cookie, error) {
	if err := p.ready(ctx); err != nil {
		return nil, err
	}
	cookies, err := p.context.Cookies()
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	return fromPlaywrightCookies(cookies), nil
}

func (p *playwrightPage) AddCookies(ctx context.Context, cookies []Cookie) error {
	if err := p.ready(ctx); err != nil {
		return err
	}
	if len(cookies) == 0 {
		return nil
	}
	if err := p.context.AddCookies(toOptionalCookies(cookies)); err != nil {
		return fmt.Errorf("failed to inject cookies: %w", err)
	}
	return nil
}

func (p *playwrightPage) PressKey(ctx context.Context, key string) error {
	if err := p.ready(ctx); err != nil {
		return err
	}
	if err := p.page.Keyboard().Press(key); err != nil {
		return fmt.Errorf("failed to press %s: %w", key, err)
	}
	return nil
}

func (p *playwrightPage) Title(ctx context.Context) (string, error) {
	if err := p.ready(ctx); err != nil {
		return "", err
	}
	title, err := p.page.Title()
	if err != nil {
		return "", fmt.Errorf("failed to read title: %w", err)
	}
	return title, nil
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	_ = p.page.Close()
	if err := p.context.Close(); err != nil {
		return fmt.Errorf("failed to close browser context: %w", err)
	}
	return nil
}

func (p *playwrightPage) ready(ctx context.Context) error {
	if p.closed {
		return ErrPageClosed
	}
	return ctx.Err()
}

type playwrightElement struct {
	handle playwright.ElementHandle
}

func (e *playwrightElement) Interactable() (bool, error) {
	visible, err := e.handle.IsVisible()
	if err != nil {
		return false, err
	}
	if !visible {
		return false, nil
	}
	enabled, err := e.handle.IsEnabled()
	if err != nil {
		return false, err
	}
	return enabled, nil
}

func (e *playwrightElement) Fill(value string) error {
	return e.handle.Fill(value)
}

func (e *playwrightElement) Click() error {
	return e.handle.Click()
}

func (e *playwrightElement) Text() (string, error) {
	return e.handle.TextContent()
}

func (e *playwrightElement) Describe() (string, error) {
	desc, err := e.handle.Evaluate(`el => {
		const tag = el.tagName.toLowerCase();
		const id = el.id ? '#' + el.id : '';
		const name = el.name ? '[name=' + el.name + ']' : '';
		const type = el.type ? '[type=' + el.type + ']' : '';
		const text = (el.innerText || el.placeholder || el.value || '').trim().slice(0, 60);
		return tag + id + name + type + (text ? ' "' + text + '"' : '');
	}`)
	if err != nil {
		return "", err
	}
	s, ok := desc.(string)
	if !ok {
		return "", fmt.Errorf("unexpected describe result %T", desc)
	}
	return s, nil
}
