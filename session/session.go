// Package session caches authenticated browser cookies on disk, keyed by
// identity hash, so repeat generation runs skip the login flow. Cache files
// hold live session cookies and are therefore owner-only; corrupt or stale
// files self-heal by deletion.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hairizuan-noorazman/qa-agent/browser"
	"github.com/hairizuan-noorazman/qa-agent/identity"
	"github.com/hairizuan-noorazman/qa-agent/logger"
)

var (
	// ErrNoSession is returned when no usable cached session exists for an
	// identity: missing, expired, corrupt (after self-heal), or empty.
	ErrNoSession = errors.New("no cached session")
)

// DefaultTTL bounds how long a cached session is trusted before a fresh
// login is forced regardless of cookie expiry.
const DefaultTTL = 12 * time.Hour

const (
	dirMode  = 0o700
	fileMode = 0o600
)

// Store is the on-disk session cache. Same-identity operations serialize on
// a per-identity mutex; distinct identities never contend.
type Store struct {
	dir    string
	ttl    time.Duration
	logger logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a session cache rooted at dir. A non-positive ttl falls
// back to DefaultTTL.
func NewStore(dir string, ttl time.Duration, log logger.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		dir:    dir,
		ttl:    ttl,
		logger: log,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Path returns the cache file for an identity: <hash>_session.json.
func (s *Store) Path(id *identity.Identity) string {
	return filepath.Join(s.dir, id.Hash()+"_session.json")
}

func (s *Store) lock(id *identity.Identity) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id.Hash()]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id.Hash()] = l
	}
	return l
}

// Load returns the cached cookies for an identity. Every unusable state
// maps to ErrNoSession; corrupt and stale files are removed on the way.
func (s *Store) Load(ctx context.Context, id *identity.Identity) ([]browser.Cookie, error) {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()
	return s.loadLocked(ctx, id)
}

func (s *Store) loadLocked(ctx context.Context, id *identity.Identity) ([]browser.Cookie, error) {
	path := s.Path(id)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("stat session cache: %w", err)
	}

	if time.Since(info.ModTime()) > s.ttl {
		s.logger.Info(ctx, "session cache expired", map[string]interface{}{
			"identity_hash": id.Hash(),
			"age":           time.Since(info.ModTime()).String(),
		})
		os.Remove(path)
		return nil, ErrNoSession
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session cache: %w", err)
	}

	var cookies []browser.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		s.logger.Warn(ctx, "corrupt session cache removed", map[string]interface{}{
			"identity_hash": id.Hash(),
			"error":         err.Error(),
		})
		os.Remove(path)
		return nil, fmt.Errorf("%w: %s", ErrNoSession, "cache was corrupt")
	}
	if len(cookies) == 0 {
		os.Remove(path)
		return nil, ErrNoSession
	}
	return cookies, nil
}

// Save atomically persists cookies for an identity with owner-only
// permissions.
func (s *Store) Save(ctx context.Context, id *identity.Identity, cookies []browser.Cookie) error {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return fmt.Errorf("create session cache dir: %w", err)
	}

	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session cache: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create session cache temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write session cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close session cache temp file: %w", err)
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("restrict session cache permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish session cache: %w", err)
	}

	s.logger.Info(ctx, "session cached", map[string]interface{}{
		"identity_hash": id.Hash(),
		"cookies":       len(cookies),
	})
	return nil
}

// Invalidate removes an identity's cache. A missing file is not an error.
func (s *Store) Invalidate(ctx context.Context, id *identity.Identity) error {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	err := os.Remove(s.Path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session cache: %w", err)
	}
	return nil
}
