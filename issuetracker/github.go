package issuetracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const githubDefaultAPIURL = "https://api.github.com"

// GitHubClient files issues against one repository through the GitHub REST
// API.
type GitHubClient struct {
	apiURL     string
	owner      string
	repo       string
	token      string
	httpClient *http.Client
}

// NewGitHubClient builds a client from integration settings (owner, repo,
// optional api_url for GitHub Enterprise) and credentials (token).
func NewGitHubClient(settings, credentials map[string]string) (*GitHubClient, error) {
	owner := settings["owner"]
	repo := settings["repo"]
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("%w: owner and repo are required", ErrMissingSetting)
	}
	token := credentials["token"]
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrMissingToken)
	}

	apiURL := settings["api_url"]
	if apiURL == "" {
		apiURL = githubDefaultAPIURL
	}

	return &GitHubClient{
		apiURL:     apiURL,
		owner:      owner,
		repo:       repo,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}, nil
}

// CreateIssue files an issue in the configured repository.
func (c *GitHubClient) CreateIssue(ctx context.Context, input CreateIssueInput) (*Issue, error) {
	payload := map[string]interface{}{
		"title": input.Title,
		"body":  input.Description,
	}
	if len(input.Labels) > 0 {
		payload["labels"] = input.Labels
	}

	body, err := c.do(ctx, http.MethodPost,
		fmt.Sprintf("%s/repos/%s/%s/issues", c.apiURL, c.owner, c.repo),
		payload, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	var created struct {
		Number    int       `json:"number"`
		Title     string    `json:"title"`
		HTMLURL   string    `json:"html_url"`
		CreatedAt time.Time `json:"created_at"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrCreateFailed, err)
	}

	return &Issue{
		ExternalID: strconv.Itoa(created.Number),
		Title:      created.Title,
		URL:        created.HTMLURL,
		Provider:   ProviderGitHub,
		CreatedAt:  created.CreatedAt,
	}, nil
}

// ValidateConnection checks that the token can see the repository.
func (c *GitHubClient) ValidateConnection(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet,
		fmt.Sprintf("%s/repos/%s/%s", c.apiURL, c.owner, c.repo),
		nil, http.StatusOK)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	return nil
}

func (c *GitHubClient) do(ctx context.Context, method, url string, payload interface{}, wantStatus int) ([]byte, error) {
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
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read github response: %w", err)
	}
	if resp.StatusCode != wantStatus {
		return nil, fmt.Errorf("github API returned %d: %s", resp.StatusCode, truncateBody(body))
	}
	return body, nil
}

// truncateBody keeps error messages readable when the tracker replies with
// a full HTML page.
func truncateBody(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
