package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/substancelab/changelogger/internal/config"
	"github.com/substancelab/changelogger/internal/logging"
)

func TestAPIURLs(t *testing.T) {
	testCases := []struct {
		name               string
		domain             string
		expectedAPIURL     string
		expectedGraphQLURL string
	}{
		{
			name:               "Default GitHub.com",
			domain:             "github.com",
			expectedAPIURL:     "https://api.github.com/",
			expectedGraphQLURL: "https://api.github.com/graphql",
		},
		{
			name:               "GitHub Enterprise",
			domain:             "github.example.com",
			expectedAPIURL:     "https://github.example.com/api/v3/",
			expectedGraphQLURL: "https://github.example.com/api/graphql",
		},
		{
			name:               "Empty Domain (should default to github.com)",
			domain:             "",
			expectedAPIURL:     "https://api.github.com/",
			expectedGraphQLURL: "https://api.github.com/graphql",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			apiURL, graphqlURL := APIURLs(tc.domain)
			assert.Equal(t, tc.expectedAPIURL, apiURL)
			assert.Equal(t, tc.expectedGraphQLURL, graphqlURL)

			parsedURL, err := url.Parse(apiURL)
			require.NoError(t, err)
			assert.Equal(t, apiURL, parsedURL.String())
		})
	}
}

func TestParseRepository(t *testing.T) {
	owner, repo, err := ParseRepository("substancelab/changelogger")
	require.NoError(t, err)
	assert.Equal(t, "substancelab", owner)
	assert.Equal(t, "changelogger", repo)

	for _, invalid := range []string{"", "invalid-repo-format", "a/b/c", "/repo", "owner/"} {
		t.Run(invalid, func(t *testing.T) {
			_, _, err := ParseRepository(invalid)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid repository format")
		})
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	client, err := NewClient(config.GitHubConfig{Domain: "github.com"})
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestNewClientEnterpriseBaseURL(t *testing.T) {
	client, err := NewClient(config.GitHubConfig{Token: "test-token", Domain: "github.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "https://github.example.com/api/v3/", client.rest.BaseURL.String())
	assert.Equal(t, "https://github.example.com/api/v3/", client.rest.UploadURL.String())
}

// newTestClient points a client at srv for both REST and GraphQL.
func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	client, err := newClient("test-token", srv.URL+"/", srv.URL+"/graphql")
	require.NoError(t, err)
	return client
}

// captureLogs sends log output to a buffer for the duration of a test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	t.Cleanup(func() { logging.SetupLogger(os.Stderr, logging.DefaultLevel) })

	var buf bytes.Buffer
	logging.SetupLogger(&buf, logging.LevelInfo)
	return &buf
}

func TestCheckRateLimit(t *testing.T) {
	logs := captureLogs(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rate_limit", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"resources":{"core":{"limit":5000,"remaining":4999,"reset":1714564800},"graphql":{"limit":5000,"remaining":4321,"reset":1714564800}}}`)
	}))
	defer srv.Close()

	newTestClient(t, srv).CheckRateLimit(context.Background())

	assert.Contains(t, logs.String(), "github graphql rate limit")
	assert.Contains(t, logs.String(), "remaining=4321")
}

func TestInstallationTokenStillFetchesMilestones(t *testing.T) {
	logs := captureLogs(t)

	graphqlCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/graphql":
			graphqlCalls++
			io.WriteString(w, milestonesResponse)
		default:
			// GitHub Actions tokens may not read /user or, on some
			// Enterprise versions, /rate_limit.
			w.WriteHeader(http.StatusForbidden)
			io.WriteString(w, `{"message":"Resource not accessible by integration"}`)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	client.CheckRateLimit(context.Background())

	milestones, err := client.FetchMilestones(context.Background(), "acme/widgets")
	require.NoError(t, err)
	assert.Len(t, milestones, 4)
	assert.Equal(t, 1, graphqlCalls)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "failed to check github rate limit")
}

const milestonesResponse = `{
  "data": {
    "repository": {
      "milestones": {
        "nodes": [
          {
            "title": "Release 2",
            "dueOn": "2024-06-01T00:00:00Z",
            "issues": {"nodes": []},
            "pullRequests": {"nodes": []}
          },
          {
            "title": "Release 1",
            "dueOn": "2024-04-01T07:00:00Z",
            "issues": {
              "nodes": [
                {
                  "closed": true,
                  "title": "Patch CVE",
                  "url": "https://github.com/acme/widgets/issues/1",
                  "labels": {"nodes": [{"name": "security"}]}
                }
              ]
            },
            "pullRequests": {
              "nodes": [
                {
                  "closed": true,
                  "title": "Bump foo from 1 to 2",
                  "url": "https://github.com/acme/widgets/pull/2",
                  "labels": {"nodes": [{"name": "dependencies"}, {"name": "ruby"}]}
                },
                {
                  "closed": false,
                  "title": "Work in progress",
                  "url": "https://github.com/acme/widgets/pull/3",
                  "labels": {"nodes": []}
                }
              ]
            }
          },
          {
            "title": "Someday",
            "dueOn": null,
            "issues": {"nodes": []},
            "pullRequests": {"nodes": []}
          },
          {
            "title": "Garbled",
            "dueOn": "next tuesday",
            "issues": {"nodes": []},
            "pullRequests": {"nodes": []}
          }
        ]
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func TestFetchMilestones(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graphql", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))

		var req graphqlRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "acme", req.Variables["owner"])
		assert.Equal(t, "widgets", req.Variables["name"])
		assert.Contains(t, req.Query, "milestones(first: 10, orderBy: {field: DUE_DATE, direction: DESC})")
		assert.Contains(t, req.Query, "issues(first: 100)")
		assert.Contains(t, req.Query, "pullRequests(first: 100)")
		assert.Contains(t, req.Query, "labels(first: 100)")

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, milestonesResponse)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	milestones, err := client.FetchMilestones(context.Background(), "acme/widgets")
	require.NoError(t, err)
	require.Len(t, milestones, 4)

	assert.Equal(t, "Release 2", milestones[0].Title)
	require.NotNil(t, milestones[0].DueOn)
	assert.True(t, milestones[0].DueOn.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Empty(t, milestones[0].Issues)

	release1 := milestones[1]
	require.Len(t, release1.Issues, 1)
	assert.Equal(t, "Patch CVE", release1.Issues[0].Title)
	assert.Equal(t, "https://github.com/acme/widgets/issues/1", release1.Issues[0].URL)
	assert.True(t, release1.Issues[0].Closed)
	assert.Equal(t, []string{"security"}, release1.Issues[0].Labels)

	require.Len(t, release1.PullRequests, 2)
	assert.Equal(t, []string{"dependencies", "ruby"}, release1.PullRequests[0].Labels)
	assert.False(t, release1.PullRequests[1].Closed)

	assert.Nil(t, milestones[2].DueOn, "null due date")
	assert.Nil(t, milestones[3].DueOn, "unparseable due date")
}

func TestFetchMilestonesGraphQLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":{"repository":null},"errors":[{"type":"NOT_FOUND","message":"Could not resolve to a Repository with the name 'acme/missing'."}]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	milestones, err := client.FetchMilestones(context.Background(), "acme/missing")
	assert.Nil(t, milestones)

	var queryErr *QueryError
	require.True(t, errors.As(err, &queryErr), "expected QueryError, got %v", err)
	assert.Equal(t, "acme/missing", queryErr.Repository)
	assert.Contains(t, err.Error(), "Could not resolve to a Repository")
}

func TestFetchMilestonesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream unavailable")
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	_, err := client.FetchMilestones(context.Background(), "acme/widgets")

	var queryErr *QueryError
	require.True(t, errors.As(err, &queryErr), "expected QueryError, got %v", err)
}

func TestFetchMilestonesInvalidRepository(t *testing.T) {
	client := &Client{}

	_, err := client.FetchMilestones(context.Background(), "invalid-repo-format")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid repository format"))
}
