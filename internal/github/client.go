// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/substancelab/changelogger/internal/config"
	"github.com/substancelab/changelogger/internal/logging"
)

// UserAgent is sent with every request to GitHub.
const UserAgent = "Changelogger CLI"

// rateLimitTimeout bounds the quota check performed by CheckRateLimit.
const rateLimitTimeout = 5 * time.Second

// Client encapsulates the GitHub REST and GraphQL API clients.
type Client struct {
	rest    *github.Client
	graphql *githubv4.Client
}

// APIURLs returns the REST and GraphQL endpoints for a GitHub domain.
// An empty domain means github.com.
func APIURLs(domain string) (restURL, graphqlURL string) {
	if domain == "" || domain == config.DefaultDomain {
		return "https://api.github.com/", "https://api.github.com/graphql"
	}
	return fmt.Sprintf("https://%s/api/v3/", domain), fmt.Sprintf("https://%s/api/graphql", domain)
}

// ParseRepository splits a repository in the format "owner/repo".
func ParseRepository(repository string) (owner, repo string, err error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format: %q, expected format: owner/repo", repository)
	}
	return parts[0], parts[1], nil
}

// NewClient creates a GitHub client for the configured domain, authenticating
// every request with the configured token. It does not contact GitHub.
func NewClient(cfg config.GitHubConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token not found in configuration")
	}

	restURL, graphqlURL := APIURLs(cfg.Domain)

	logging.Info("github configuration",
		"domain", cfg.Domain,
		"api_url", restURL,
		"graphql_url", graphqlURL,
		"token", logging.MaskSensitive(cfg.Token))

	return newClient(cfg.Token, restURL, graphqlURL)
}

func newClient(token, restURL, graphqlURL string) (*Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Transport = &userAgentTransport{base: tc.Transport}

	parsedURL, err := url.Parse(restURL)
	if err != nil {
		return nil, fmt.Errorf("invalid github api url: %w", err)
	}

	rest := github.NewClient(tc)
	rest.UserAgent = UserAgent
	rest.BaseURL = parsedURL
	rest.UploadURL = parsedURL

	return &Client{
		rest:    rest,
		graphql: githubv4.NewEnterpriseClient(graphqlURL, tc),
	}, nil
}

// CheckRateLimit logs the remaining GraphQL quota for the token. Every token
// type may read its rate limit, so a failure here only produces a warning;
// the milestone query reports real authentication problems.
func (c *Client) CheckRateLimit(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, rateLimitTimeout)
	defer cancel()

	limits, resp, err := c.rest.RateLimits(ctx)
	if err != nil {
		statusCode := 0
		if resp != nil {
			statusCode = resp.StatusCode
		}
		logging.Warn("failed to check github rate limit",
			"error", err,
			"status_code", statusCode)
		return
	}

	rate := limits.GetGraphQL()
	if rate == nil {
		return
	}
	if rate.Remaining == 0 {
		logging.Warn("github graphql rate limit exhausted",
			"limit", rate.Limit,
			"reset", rate.Reset.Time)
		return
	}
	logging.Info("github graphql rate limit",
		"remaining", rate.Remaining,
		"limit", rate.Limit)
}

// userAgentTransport sets the User-Agent header on outgoing requests.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", UserAgent)
	return t.base.RoundTrip(req)
}
