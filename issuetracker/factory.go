package issuetracker

// NewClient builds a tracker client from an integration's non-secret
// settings and its unsealed credentials.
func NewClient(provider ProviderType, settings, credentials map[string]string) (Client, error) {
	switch provider {
	case ProviderGitHub:
		return NewGitHubClient(settings, credentials)
	case ProviderJira:
		return NewJiraClient(settings, credentials)
	default:
		return nil, ErrInvalidProvider
	}
}
