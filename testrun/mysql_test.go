package testrun

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLStore_Create(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	t.Run("creates run with generated ID and default verdict", func(t *testing.T) {
		tr := &TestRun{SuiteName: "checkout", CaseID: "TC1", Mode: ModeScript}
		require.NoError(t, store.Create(ctx, tr))
		assert.NotEqual(t, uuid.Nil, tr.ID)

		fetched, err := store.GetByID(ctx, tr.ID)
		require.NoError(t, err)
		assert.Equal(t, VerdictPending, fetched.Verdict)
	})

	t.Run("rejects missing suite name", func(t *testing.T) {
		err := store.Create(ctx, &TestRun{CaseID: "TC1", Mode: ModeScript})
		assert.ErrorIs(t, err, ErrInvalidSuiteName)
	})

	t.Run("rejects invalid mode", func(t *testing.T) {
		err := store.Create(ctx, &TestRun{SuiteName: "checkout", CaseID: "TC1", Mode: "manual"})
		assert.ErrorIs(t, err, ErrInvalidMode)
	})
}

func TestMySQLStore_GetByID(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrTestRunNotFound)
}

func TestMySQLStore_ListBySuite(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Create(ctx, sampleRun()))
	}
	require.NoError(t, store.Create(ctx, New("other", "TC9", "Other case", ModeAgent)))

	runs, err := store.ListBySuite(ctx, "checkout", 10, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	page, err := store.ListBySuite(ctx, "checkout", 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	none, err := store.ListBySuite(ctx, "missing", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMySQLStore_StartAndComplete(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	tr := sampleRun()
	require.NoError(t, store.Create(ctx, tr))

	require.NoError(t, store.Start(ctx, tr.ID))
	running, err := store.GetByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, VerdictRunning, running.Verdict)
	require.NotNil(t, running.StartedAt)

	require.NoError(t, store.Complete(ctx, tr.ID, VerdictPass, "Final Result: PASS"))
	done, err := store.GetByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, VerdictPass, done.Verdict)
	assert.Equal(t, "Final Result: PASS", done.Output)
	require.NotNil(t, done.CompletedAt)

	// Lifecycle guard holds at the store level too.
	assert.ErrorIs(t, store.Start(ctx, tr.ID), ErrTestRunAlreadyStarted)
	assert.ErrorIs(t, store.Complete(ctx, tr.ID, VerdictFail, ""), ErrTestRunNotRunning)
}

func TestMySQLStore_Update(t *testing.T) {
	_, store := setupTestStore(t)
	ctx := context.Background()

	tr := sampleRun()
	require.NoError(t, store.Create(ctx, tr))

	require.NoError(t, store.Update(ctx, tr.ID,
		SetScriptKey("scripts/checkout_TC1_add_item_to_cart_20260824T101500.py"),
	))

	fetched, err := store.GetByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Contains(t, fetched.ScriptKey, "checkout_TC1")

	err = store.Update(ctx, uuid.New(), SetVerdict(VerdictError))
	assert.ErrorIs(t, err, ErrTestRunNotFound)
}
