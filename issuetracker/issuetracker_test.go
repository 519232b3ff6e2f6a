package issuetracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("github", func(t *testing.T) {
		client, err := NewClient(ProviderGitHub,
			map[string]string{"owner": "acme", "repo": "shop-tests"},
			map[string]string{"token": "ghp_x"})
		require.NoError(t, err)
		assert.IsType(t, &GitHubClient{}, client)
	})

	t.Run("jira", func(t *testing.T) {
		client, err := NewClient(ProviderJira,
			map[string]string{"base_url": "https://acme.atlassian.net", "project_key": "QA"},
			map[string]string{"email": "qa@acme.com", "token": "secret"})
		require.NoError(t, err)
		assert.IsType(t, &JiraClient{}, client)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewClient("gitlab", nil, nil)
		assert.ErrorIs(t, err, ErrInvalidProvider)
	})

	t.Run("github missing settings", func(t *testing.T) {
		_, err := NewClient(ProviderGitHub, map[string]string{"owner": "acme"}, map[string]string{"token": "x"})
		assert.ErrorIs(t, err, ErrMissingSetting)
	})

	t.Run("github missing token", func(t *testing.T) {
		_, err := NewClient(ProviderGitHub,
			map[string]string{"owner": "acme", "repo": "r"}, map[string]string{})
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("jira missing credentials", func(t *testing.T) {
		_, err := NewClient(ProviderJira,
			map[string]string{"base_url": "https://x", "project_key": "QA"},
			map[string]string{"email": "qa@acme.com"})
		assert.ErrorIs(t, err, ErrMissingToken)
	})
}

func TestGitHubClient_CreateIssue(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotPayload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/repos/acme/shop-tests/issues" {
			gotAuth = r.Header.Get("Authorization")
			json.NewDecoder(r.Body).Decode(&gotPayload)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"number":   42,
				"title":    gotPayload["title"],
				"html_url": "https://github.com/acme/shop-tests/issues/42",
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewGitHubClient(
		map[string]string{"owner": "acme", "repo": "shop-tests", "api_url": server.URL},
		map[string]string{"token": "ghp_x"})
	require.NoError(t, err)

	issue, err := client.CreateIssue(context.Background(), CreateIssueInput{
		Title:       "checkout / TC1: fail",
		Description: "Final Result: FAIL",
		Labels:      []string{"qa-agent"},
	})
	require.NoError(t, err)

	assert.Equal(t, "42", issue.ExternalID)
	assert.Equal(t, "https://github.com/acme/shop-tests/issues/42", issue.URL)
	assert.Equal(t, ProviderGitHub, issue.Provider)
	assert.Equal(t, "Bearer ghp_x", gotAuth)
	assert.Equal(t, "checkout / TC1: fail", gotPayload["title"])
}

func TestGitHubClient_CreateIssueError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewGitHubClient(
		map[string]string{"owner": "acme", "repo": "shop-tests", "api_url": server.URL},
		map[string]string{"token": "bad"})
	require.NoError(t, err)

	_, err = client.CreateIssue(context.Background(), CreateIssueInput{Title: "x"})
	assert.ErrorContains(t, err, "401")
}

func TestGitHubClient_ValidateConnection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/acme/shop-tests" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"full_name":"acme/shop-tests"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewGitHubClient(
		map[string]string{"owner": "acme", "repo": "shop-tests", "api_url": server.URL},
		map[string]string{"token": "ghp_x"})
	require.NoError(t, err)

	assert.NoError(t, client.ValidateConnection(context.Background()))

	client.repo = "missing"
	assert.ErrorIs(t, client.ValidateConnection(context.Background()), ErrConnectionFailed)
}

func TestJiraClient_CreateIssue(t *testing.T) {
	t.Parallel()

	var gotPayload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/rest/api/2/issue" {
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "qa@acme.com", user)
			assert.Equal(t, "secret", pass)

			json.NewDecoder(r.Body).Decode(&gotPayload)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"key": "QA-7"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewJiraClient(
		map[string]string{"base_url": server.URL, "project_key": "QA"},
		map[string]string{"email": "qa@acme.com", "token": "secret"})
	require.NoError(t, err)

	issue, err := client.CreateIssue(context.Background(), CreateIssueInput{
		Title:       "checkout / TC2: timeout",
		Description: "script exceeded the execution bound",
	})
	require.NoError(t, err)

	assert.Equal(t, "QA-7", issue.ExternalID)
	assert.Equal(t, server.URL+"/browse/QA-7", issue.URL)
	assert.Equal(t, ProviderJira, issue.Provider)

	fields := gotPayload["fields"].(map[string]interface{})
	assert.Equal(t, "checkout / TC2: timeout", fields["summary"])
	assert.Equal(t, map[string]interface{}{"key": "QA"}, fields["project"])
	assert.Equal(t, map[string]interface{}{"name": "Bug"}, fields["issuetype"])
}

func TestJiraClient_ValidateConnection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/api/2/myself" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"accountId":"abc"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewJiraClient(
		map[string]string{"base_url": server.URL, "project_key": "QA"},
		map[string]string{"email": "qa@acme.com", "token": "secret"})
	require.NoError(t, err)

	assert.NoError(t, client.ValidateConnection(context.Background()))
}
