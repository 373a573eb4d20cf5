// Package models defines data structures shared across the application.
package models

import (
	"time"
)

// Milestone represents a GitHub milestone with the work items attached to it.
type Milestone struct {
	// Title is the milestone's name (e.g., "v1.2.0")
	Title string

	// DueOn is the milestone's due date. It is nil when the milestone has
	// no due date or the tracker returned one that could not be parsed.
	DueOn *time.Time

	// Issues are the milestone's issues in the order the tracker returned them
	Issues []ChangeItem

	// PullRequests are the milestone's pull requests in the order the tracker returned them
	PullRequests []ChangeItem
}

// IsDueBefore reports whether the milestone has a known due date earlier than t.
func (m Milestone) IsDueBefore(t time.Time) bool {
	return m.DueOn != nil && m.DueOn.Before(t)
}

// ChangeItem is the changelog view of an issue or a pull request.
type ChangeItem struct {
	// Title is the issue or pull request title
	Title string

	// URL is the HTML link to the issue or pull request
	URL string

	// Closed reports whether the issue or pull request is closed
	Closed bool

	// Labels is a slice of label names attached to the item
	Labels []string
}

// HasLabel reports whether the item carries a label named exactly name.
func (c ChangeItem) HasLabel(name string) bool {
	for _, label := range c.Labels {
		if label == name {
			return true
		}
	}
	return false
}
