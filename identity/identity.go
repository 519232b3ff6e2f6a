// Package identity models the target application account the pipeline logs
// in with. Secret material is held in an unexported field and leaves the
// package only through WithSecret; formatting and JSON encoding an Identity
// never expose it.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	ErrMissingHandle   = errors.New("identity handle is required")
	ErrMissingSecret   = errors.New("identity secret is required")
	ErrMissingLoginURL = errors.New("identity login URL is required")
)

// hashLen is the number of hex characters of the handle digest used as the
// session cache key.
const hashLen = 12

// Identity is the login identity for the application under test. It is
// constructed once per run from configuration and passed by pointer; the
// zero value is not usable.
type Identity struct {
	handle   string
	secret   string
	loginURL string
}

// New validates and builds an Identity.
func New(handle, secret, loginURL string) (*Identity, error) {
	if handle == "" {
		return nil, ErrMissingHandle
	}
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if loginURL == "" {
		return nil, ErrMissingLoginURL
	}
	return &Identity{handle: handle, secret: secret, loginURL: loginURL}, nil
}

// Handle returns the login identifier (username or email). Handles are not
// secret and may appear in logs and metadata.
func (i *Identity) Handle() string {
	return i.handle
}

// LoginURL returns the page the login flow starts from.
func (i *Identity) LoginURL() string {
	return i.loginURL
}

// Hash returns a stable, non-reversible cache key for this identity: the
// hex SHA-256 of the handle truncated to 12 characters.
func (i *Identity) Hash() string {
	sum := sha256.Sum256([]byte(i.handle))
	return hex.EncodeToString(sum[:])[:hashLen]
}

// WithSecret invokes fn with the secret material. This is the only way the
// secret leaves the package; callers must not retain the value beyond the
// callback except where their contract says so (the leak guard keeps it to
// scan outbound text).
func (i *Identity) WithSecret(fn func(secret string) error) error {
	return fn(i.secret)
}

// String identifies the identity by handle only.
func (i *Identity) String() string {
	return fmt.Sprintf("identity(%s)", i.handle)
}

// GoString mirrors String so %#v cannot leak the secret field.
func (i *Identity) GoString() string {
	return i.String()
}
