package changelog

import (
	"github.com/substancelab/changelogger/pkg/models"
)

// Category is the changelog section a change belongs to.
type Category int

const (
	// Regular changes are listed individually.
	Regular Category = iota
	// Security changes are listed individually after regular ones.
	Security
	// Dependencies are summarised in a single "Bumped" line.
	Dependencies
)

// Label names that select a category.
const (
	SecurityLabel     = "security"
	DependenciesLabel = "dependencies"
)

// String returns the lower-case name of the category.
func (c Category) String() string {
	switch c {
	case Regular:
		return "regular"
	case Security:
		return "security"
	case Dependencies:
		return "dependencies"
	default:
		return "unknown"
	}
}

// ChangeSet groups closed change items by category, preserving input order
// within each category.
type ChangeSet map[Category][]models.ChangeItem

// Len returns the number of items across all categories.
func (cs ChangeSet) Len() int {
	n := 0
	for _, items := range cs {
		n += len(items)
	}
	return n
}

// CategoryOf returns the category for an item. The security label takes
// precedence over the dependencies label.
func CategoryOf(item models.ChangeItem) Category {
	switch {
	case item.HasLabel(SecurityLabel):
		return Security
	case item.HasLabel(DependenciesLabel):
		return Dependencies
	default:
		return Regular
	}
}

// Classify sorts the closed items into categories. Open items are dropped.
func Classify(items []models.ChangeItem) ChangeSet {
	changes := ChangeSet{}
	classifyInto(changes, items)
	return changes
}

// ClassifyMilestone classifies a milestone's issues followed by its pull
// requests, each kept in its original order.
func ClassifyMilestone(m models.Milestone) ChangeSet {
	changes := ChangeSet{}
	classifyInto(changes, m.Issues)
	classifyInto(changes, m.PullRequests)
	return changes
}

func classifyInto(changes ChangeSet, items []models.ChangeItem) {
	for _, item := range items {
		if !item.Closed {
			continue
		}
		category := CategoryOf(item)
		changes[category] = append(changes[category], item)
	}
}
