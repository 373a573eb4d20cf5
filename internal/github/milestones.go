package github

import (
	"context"
	"fmt"
	"time"

	"github.com/shurcooL/githubv4"

	"github.com/substancelab/changelogger/internal/logging"
	"github.com/substancelab/changelogger/pkg/models"
)

// QueryError is returned when GitHub rejects or fails the milestone query.
type QueryError struct {
	Repository string
	Err        error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("github query for %s failed: %v", e.Repository, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// milestonesQuery fetches the ten milestones due last, newest first, with
// their issues and pull requests.
type milestonesQuery struct {
	Repository struct {
		Milestones struct {
			Nodes []milestoneNode
		} `graphql:"milestones(first: 10, orderBy: {field: DUE_DATE, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

type milestoneNode struct {
	Title string
	// DueOn is decoded as a string so an unparseable date does not fail the query.
	DueOn  *string
	Issues struct {
		Nodes []changeNode
	} `graphql:"issues(first: 100)"`
	PullRequests struct {
		Nodes []changeNode
	} `graphql:"pullRequests(first: 100)"`
}

type changeNode struct {
	Closed bool
	Title  string
	URL    string
	Labels struct {
		Nodes []struct {
			Name string
		}
	} `graphql:"labels(first: 100)"`
}

// FetchMilestones retrieves the repository's most recently due milestones
// ordered by due date, newest first. The repository should be in the format
// "owner/repo". Failures reported by GitHub are returned as *QueryError.
func (c *Client) FetchMilestones(ctx context.Context, repository string) ([]models.Milestone, error) {
	owner, repo, err := ParseRepository(repository)
	if err != nil {
		return nil, err
	}

	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
	}

	logging.Debug("querying milestones", "repository", repository)

	var q milestonesQuery
	if err := c.graphql.Query(ctx, &q, variables); err != nil {
		logging.Error("failed to fetch milestones", "repository", repository, "error", err)
		return nil, &QueryError{Repository: repository, Err: err}
	}

	nodes := q.Repository.Milestones.Nodes
	milestones := make([]models.Milestone, 0, len(nodes))
	for _, node := range nodes {
		milestones = append(milestones, models.Milestone{
			Title:        node.Title,
			DueOn:        parseDueOn(node.Title, node.DueOn),
			Issues:       toChangeItems(node.Issues.Nodes),
			PullRequests: toChangeItems(node.PullRequests.Nodes),
		})
	}

	logging.Info("fetched milestones",
		"repository", repository,
		"count", len(milestones))

	return milestones, nil
}

// parseDueOn returns nil for a missing or unparseable due date.
func parseDueOn(title string, dueOn *string) *time.Time {
	if dueOn == nil || *dueOn == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *dueOn)
	if err != nil {
		logging.Warn("ignoring unparseable milestone due date",
			"milestone", title,
			"due_on", *dueOn,
			"error", err)
		return nil
	}
	return &t
}

func toChangeItems(nodes []changeNode) []models.ChangeItem {
	items := make([]models.ChangeItem, 0, len(nodes))
	for _, node := range nodes {
		labelNames := make([]string, 0, len(node.Labels.Nodes))
		for _, label := range node.Labels.Nodes {
			labelNames = append(labelNames, label.Name)
		}

		items = append(items, models.ChangeItem{
			Title:  node.Title,
			URL:    node.URL,
			Closed: node.Closed,
			Labels: labelNames,
		})
	}
	return items
}
