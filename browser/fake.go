package browser

import (
	"context"
	"sync"
)

// FakeDriver hands out scripted pages for tests. Pages are served from the
// Pages queue in order; an empty queue yields a fresh blank page.
type FakeDriver struct {
	mu     sync.Mutex
	Pages  []*FakePage
	Opened []*FakePage
	Closed bool
}

func (d *FakeDriver) NewPage(ctx context.Context) (Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var page *FakePage
	if len(d.Pages) > 0 {
		page = d.Pages[0]
		d.Pages = d.Pages[1:]
	} else {
		page = NewFakePage()
	}
	d.Opened = append(d.Opened, page)
	return page, nil
}

func (d *FakeDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
	return nil
}

// FakePage records everything done to it and serves elements from a
// selector-keyed map.
type FakePage struct {
	mu sync.Mutex

	PageTitle  string
	CurrentURL string

	// ElementsFor maps a CSS selector to the elements a query returns.
	ElementsFor map[string][]*FakeElement

	Jar         []Cookie
	Visited     []string
	PressedKeys []string
	SettleCount int
	Injected    [][]Cookie
	Closed      bool

	GotoErr    error
	CookiesErr error
}

func NewFakePage() *FakePage {
	return &FakePage{ElementsFor: make(map[string][]*FakeElement)}
}

func (p *FakePage) Goto(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.GotoErr != nil {
		return p.GotoErr
	}
	p.Visited = append(p.Visited, url)
	p.CurrentURL = url
	return nil
}

func (p *FakePage) WaitSettle(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SettleCount++
	return nil
}

func (p *FakePage) Elements(ctx context.Context, selector string) ([]Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fakes := p.ElementsFor[selector]
	elements := make([]Element, 0, len(fakes))
	for _, f := range fakes {
		elements = append(elements, f)
	}
	return elements, nil
}

func (p *FakePage) Cookies(ctx context.Context) ([]Cookie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.CookiesErr != nil {
		return nil, p.CookiesErr
	}
	out := make([]Cookie, len(p.Jar))
	copy(out, p.Jar)
	return out, nil
}

func (p *FakePage) AddCookies(ctx context.Context, cookies []Cookie) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Injected = append(p.Injected, cookies)
	p.Jar = append(p.Jar, cookies...)
	return nil
}

func (p *FakePage) PressKey(ctx context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.PressedKeys = append(p.PressedKeys, key)
	return nil
}

func (p *FakePage) Title(ctx context.Context) (string, error) {
	return p.PageTitle, nil
}

func (p *FakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CurrentURL
}

func (p *FakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// FakeElement is a scriptable element handle.
type FakeElement struct {
	Visible    bool
	Enabled    bool
	Filled     []string
	Clicks     int
	TextValue  string
	Descriptor string

	InteractableErr error
	FillErr         error
	ClickErr        error
}

// NewFakeElement returns an interactable element.
func NewFakeElement() *FakeElement {
	return &FakeElement{Visible: true, Enabled: true}
}

func (e *FakeElement) Interactable() (bool, error) {
	if e.InteractableErr != nil {
		return false, e.InteractableErr
	}
	return e.Visible && e.Enabled, nil
}

func (e *FakeElement) Fill(value string) error {
	if e.FillErr != nil {
		return e.FillErr
	}
	e.Filled = append(e.Filled, value)
	return nil
}

func (e *FakeElement) Click() error {
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.Clicks++
	return nil
}

func (e *FakeElement) Text() (string, error) {
	return e.TextValue, nil
}

func (e *FakeElement) Describe() (string, error) {
	return e.Descriptor, nil
}
