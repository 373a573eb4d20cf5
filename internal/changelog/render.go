package changelog

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/substancelab/changelogger/pkg/models"
)

// listedCategories are rendered item by item, in this order.
var listedCategories = []Category{Regular, Security}

// Render writes the changelog for a milestone to w.
//
// Dependency names are extracted before anything is written, so a
// malformed dependency title leaves w untouched.
func Render(w io.Writer, milestoneTitle string, changes ChangeSet) error {
	bumped, err := bumpedDependencies(changes[Dependencies])
	if err != nil {
		return err
	}

	if err := renderHeader(w, milestoneTitle); err != nil {
		return fmt.Errorf("rendering header: %w", err)
	}

	for _, category := range listedCategories {
		if err := renderCategory(w, changes[category]); err != nil {
			return fmt.Errorf("rendering %s changes: %w", category, err)
		}
	}

	if _, err := fmt.Fprintf(w, "* Bumped %s.\n", strings.Join(bumped, ", ")); err != nil {
		return fmt.Errorf("rendering dependencies: %w", err)
	}

	return nil
}

// RenderString is a convenience function that renders to a string.
func RenderString(milestoneTitle string, changes ChangeSet) (string, error) {
	var b strings.Builder
	if err := Render(&b, milestoneTitle, changes); err != nil {
		return "", err
	}
	return b.String(), nil
}

// renderHeader writes the title underlined with dashes and a blank line.
func renderHeader(w io.Writer, title string) error {
	underline := strings.Repeat("-", utf8.RuneCountInString(title))
	_, err := fmt.Fprintf(w, "%s\n%s\n\n", title, underline)
	return err
}

// renderCategory writes one entry per item, sorted by title, each followed
// by a blank line.
func renderCategory(w io.Writer, items []models.ChangeItem) error {
	sorted := slices.Clone(items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Title < sorted[j].Title
	})

	for _, item := range sorted {
		if _, err := fmt.Fprintf(w, "* %s: %s\n\n", item.Title, item.URL); err != nil {
			return err
		}
	}
	return nil
}

// bumpedDependencies returns the sorted, deduplicated dependency names.
func bumpedDependencies(items []models.ChangeItem) ([]string, error) {
	names := make([]string, 0, len(items))
	for _, item := range items {
		name, err := ExtractDependencyName(item.Title)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}
