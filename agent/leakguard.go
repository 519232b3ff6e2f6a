package agent

import (
	"errors"
	"strings"
	"sync"

	"github.com/hairizuan-noorazman/qa-agent/identity"
)

// ErrSecretLeak is returned when outbound text contains registered secret
// material. The run fails closed; the offending text is never logged.
var ErrSecretLeak = errors.New("outbound text contains secret material")

// LeakGuard scans outbound agent text for registered secret material.
// Detection is a plain substring check, best effort: encoded or transformed
// secrets are out of scope. The guard holds the material privately and
// never exposes it; a hit reports only that a leak happened.
type LeakGuard struct {
	mu      sync.RWMutex
	secrets []string
}

func NewLeakGuard() *LeakGuard {
	return &LeakGuard{}
}

// Register adds an identity's secret material to the scan set.
func (g *LeakGuard) Register(id *identity.Identity) {
	id.WithSecret(func(secret string) error {
		if secret == "" {
			return nil
		}
		g.mu.Lock()
		defer g.mu.Unlock()
		g.secrets = append(g.secrets, secret)
		return nil
	})
}

// Scan returns ErrSecretLeak when the text contains any registered secret.
func (g *LeakGuard) Scan(text string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, secret := range g.secrets {
		if strings.Contains(text, secret) {
			return ErrSecretLeak
		}
	}
	return nil
}
