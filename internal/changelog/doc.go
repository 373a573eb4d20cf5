// Package changelog turns a milestone's closed issues and pull requests into
// a plain-text changelog.
//
// The pipeline is SelectMilestone, then ClassifyMilestone, then Render.
// Items labelled "security" and regular items are listed one per line;
// items labelled "dependencies" are summarised in a single "Bumped" line
// built from their "Bump <name> from ..." titles.
package changelog
