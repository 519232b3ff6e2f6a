package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuan-noorazman/qa-agent/browser"
	"github.com/hairizuan-noorazman/qa-agent/identity"
	"github.com/hairizuan-noorazman/qa-agent/logger"
)

func testIdentity(t *testing.T) *identity.Identity {
	t.Helper()
	id, err := identity.New("standard_user", "hunter2", "https://app.example.com/login")
	require.NoError(t, err)
	return id
}

func testCookies() []browser.Cookie {
	return []browser.Cookie{
		{Name: "sid", Value: "abc123", Domain: "app.example.com", Path: "/", Expires: float64(time.Now().Add(time.Hour).Unix())},
		{Name: "csrf", Value: "tok", Domain: "app.example.com", Path: "/", Expires: -1},
	}
}

func newTestStore(t *testing.T) (*Store, *logger.TestLogger) {
	t.Helper()
	log := logger.NewTestLogger()
	return NewStore(t.TempDir(), DefaultTTL, log), log
}

func TestStore_SaveAndLoad(t *testing.T) {
	store, _ := newTestStore(t)
	id := testIdentity(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, id, testCookies()))

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "sid", loaded[0].Name)
	assert.Equal(t, "abc123", loaded[0].Value)
}

func TestStore_FileNameAndPermissions(t *testing.T) {
	store, _ := newTestStore(t)
	id := testIdentity(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, id, testCookies()))

	path := store.Path(id)
	assert.Equal(t, id.Hash()+"_session.json", filepath.Base(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// File content is the documented cookie record shape.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &records))
	require.NotEmpty(t, records)
	for _, key := range []string{"name", "value", "domain", "path", "expiry"} {
		assert.Contains(t, records[0], key)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load(context.Background(), testIdentity(t))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_LoadCorruptSelfHeals(t *testing.T) {
	store, log := newTestStore(t)
	id := testIdentity(t)
	ctx := context.Background()

	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path(id)), 0o700))
	require.NoError(t, os.WriteFile(store.Path(id), []byte("{not json"), 0o600))

	_, err := store.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NoFileExists(t, store.Path(id))
	assert.True(t, log.Contains("warn", "corrupt session cache"))

	// Next load is a clean miss, not another parse attempt.
	_, err = store.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_LoadExpiredByTTL(t *testing.T) {
	log := logger.NewTestLogger()
	store := NewStore(t.TempDir(), time.Hour, log)
	id := testIdentity(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, id, testCookies()))
	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(store.Path(id), stale, stale))

	_, err := store.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NoFileExists(t, store.Path(id))
}

func TestStore_LoadEmptyList(t *testing.T) {
	store, _ := newTestStore(t)
	id := testIdentity(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, id, []browser.Cookie{}))

	_, err := store.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_Invalidate(t *testing.T) {
	store, _ := newTestStore(t)
	id := testIdentity(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, id, testCookies()))
	require.NoError(t, store.Invalidate(ctx, id))
	assert.NoFileExists(t, store.Path(id))

	// Invalidating a missing cache is fine.
	require.NoError(t, store.Invalidate(ctx, id))
}

func TestStore_DistinctIdentitiesDistinctFiles(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	a := testIdentity(t)
	b, err := identity.New("other_user", "hunter2", "https://app.example.com/login")
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, a, testCookies()))
	require.NoError(t, store.Save(ctx, b, testCookies()[:1]))

	assert.NotEqual(t, store.Path(a), store.Path(b))

	loadedA, err := store.Load(ctx, a)
	require.NoError(t, err)
	loadedB, err := store.Load(ctx, b)
	require.NoError(t, err)
	assert.Len(t, loadedA, 2)
	assert.Len(t, loadedB, 1)
}

func TestStore_ConcurrentSameIdentity(t *testing.T) {
	store, _ := newTestStore(t)
	id := testIdentity(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Save(ctx, id, testCookies())
			_, _ = store.Load(ctx, id)
		}()
	}
	wg.Wait()

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestValidate_AcceptsLiveSession(t *testing.T) {
	store, _ := newTestStore(t)
	id := testIdentity(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, id, testCookies()))

	page := browser.NewFakePage()

	ok, err := store.Validate(ctx, page, id)
	require.NoError(t, err)
	assert.True(t, ok)

	// Cookies were injected before navigating to the login URL.
	require.Len(t, page.Injected, 1)
	assert.Len(t, page.Injected[0], 2)
	assert.Equal(t, []string{"https://app.example.com/login"}, page.Visited)
	assert.Equal(t, 1, page.SettleCount)
}

func TestValidate_RejectsWhenLoginFormShown(t *testing.T) {
	store, log := newTestStore(t)
	id := testIdentity(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, id, testCookies()))

	page := browser.NewFakePage()
	page.ElementsFor["input[name='user-name'], #user-name, input[type='email']"] = []*browser.FakeElement{
		browser.NewFakeElement(),
	}

	ok, err := store.Validate(ctx, page, id)
	require.NoError(t, err)
	assert.False(t, ok)
	// Rejected cache self-heals so the next run goes straight to login.
	assert.NoFileExists(t, store.Path(id))
	assert.True(t, log.Contains("info", "cached session rejected"))
}

func TestValidate_HiddenMarkerDoesNotReject(t *testing.T) {
	store, _ := newTestStore(t)
	id := testIdentity(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, id, testCookies()))

	hidden := browser.NewFakeElement()
	hidden.Visible = false
	page := browser.NewFakePage()
	page.ElementsFor["input[name='user-name'], #user-name, input[type='email']"] = []*browser.FakeElement{hidden}

	ok, err := store.Validate(ctx, page, id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidate_NoCache(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Validate(context.Background(), browser.NewFakePage(), testIdentity(t))
	assert.ErrorIs(t, err, ErrNoSession)
}
