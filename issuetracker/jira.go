package issuetracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// JiraClient files issues into one Jira project through the REST API v2,
// authenticating with email + API token (Jira Cloud basic auth).
type JiraClient struct {
	baseURL    string
	projectKey string
	issueType  string
	email      string
	token      string
	httpClient *http.Client
}

// NewJiraClient builds a client from integration settings (base_url,
// project_key, optional issue_type) and credentials (email, token).
func NewJiraClient(settings, credentials map[string]string) (*JiraClient, error) {
	baseURL := strings.TrimSuffix(settings["base_url"], "/")
	projectKey := settings["project_key"]
	if baseURL == "" || projectKey == "" {
		return nil, fmt.Errorf("%w: base_url and project_key are required", ErrMissingSetting)
	}
	email := credentials["email"]
	token := credentials["token"]
	if email == "" || token == "" {
		return nil, fmt.Errorf("%w: email and token are required", ErrMissingToken)
	}

	issueType := settings["issue_type"]
	if issueType == "" {
		issueType = "Bug"
	}

	return &JiraClient{
		baseURL:    baseURL,
		projectKey: projectKey,
		issueType:  issueType,
		email:      email,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}, nil
}

// CreateIssue files an issue in the configured project.
func (c *JiraClient) CreateIssue(ctx context.Context, input CreateIssueInput) (*Issue, error) {
	payload := map[string]interface{}{
		"fields": map[string]interface{}{
			"project":     map[string]string{"key": c.projectKey},
			"summary":     input.Title,
			"description": input.Description,
			"issuetype":   map[string]string{"name": c.issueType},
			"labels":      input.Labels,
		},
	}

	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/rest/api/2/issue", payload, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	var created struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrCreateFailed, err)
	}

	return &Issue{
		ExternalID: created.Key,
		Title:      input.Title,
		URL:        fmt.Sprintf("%s/browse/%s", c.baseURL, created.Key),
		Provider:   ProviderJira,
		CreatedAt:  time.Now(),
	}, nil
}

// ValidateConnection checks that the credentials authenticate.
func (c *JiraClient) ValidateConnection(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, c.baseURL+"/rest/api/2/myself", nil, http.StatusOK)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	return nil
}

func (c *JiraClient) do(ctx context.Context, method, url string, payload interface{}, wantStatus int) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jira request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read jira response: %w", err)
	}
	if resp.StatusCode != wantStatus {
		return nil, fmt.Errorf("jira API returned %d: %s", resp.StatusCode, truncateBody(body))
	}
	return body, nil
}
