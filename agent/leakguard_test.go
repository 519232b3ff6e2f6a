package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuan-noorazman/qa-agent/identity"
)

func TestLeakGuard(t *testing.T) {
	t.Parallel()

	id, err := identity.New("standard_user", "hunter2-secret", "https://shop.example.com/login")
	require.NoError(t, err)

	guard := NewLeakGuard()
	guard.Register(id)

	t.Run("clean text passes", func(t *testing.T) {
		assert.NoError(t, guard.Scan("Explore the application as standard_user"))
	})

	t.Run("embedded secret is caught", func(t *testing.T) {
		err := guard.Scan("log in with password hunter2-secret please")
		assert.ErrorIs(t, err, ErrSecretLeak)
	})

	t.Run("error carries no secret material", func(t *testing.T) {
		err := guard.Scan("hunter2-secret")
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "hunter2")
	})

	t.Run("unregistered guard passes everything", func(t *testing.T) {
		assert.NoError(t, NewLeakGuard().Scan("hunter2-secret"))
	})
}

func TestParseAction(t *testing.T) {
	t.Parallel()

	t.Run("plain object", func(t *testing.T) {
		act, err := parseAction(`{"action": "click", "selector": "#login-button"}`)
		require.NoError(t, err)
		assert.Equal(t, "click", act.Action)
		assert.Equal(t, "#login-button", act.Selector)
	})

	t.Run("fenced object", func(t *testing.T) {
		act, err := parseAction("```json\n{\"action\": \"none\", \"done\": true, \"result\": \"ok\"}\n```")
		require.NoError(t, err)
		assert.True(t, act.Done)
		assert.Equal(t, "ok", act.Result)
	})

	t.Run("prose is not an action", func(t *testing.T) {
		_, err := parseAction("I clicked the button and it worked.")
		assert.Error(t, err)
	})
}
