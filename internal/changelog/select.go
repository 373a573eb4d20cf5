package changelog

import (
	"strings"
	"time"

	"github.com/substancelab/changelogger/internal/logging"
	"github.com/substancelab/changelogger/pkg/models"
)

// SelectMilestone picks the milestone to build the changelog for.
//
// When name is non-empty the first milestone whose title equals name
// case-insensitively is returned. Otherwise the first milestone, in the
// order given, that was due before now is returned; milestones without a
// due date are skipped. The recency rule relies on milestones arriving
// ordered by due date, newest first.
func SelectMilestone(milestones []models.Milestone, name string, now time.Time) (models.Milestone, error) {
	if name != "" {
		for _, m := range milestones {
			if strings.EqualFold(m.Title, name) {
				logging.Debug("selected milestone by title", "title", m.Title)
				return m, nil
			}
		}
		return models.Milestone{}, &NotFoundError{Title: name, Now: now}
	}

	for _, m := range milestones {
		if m.DueOn == nil {
			logging.Debug("skipping milestone without due date", "title", m.Title)
			continue
		}
		if m.IsDueBefore(now) {
			logging.Debug("selected most recently due milestone",
				"title", m.Title,
				"due_on", m.DueOn.Format(time.RFC3339))
			return m, nil
		}
	}
	return models.Milestone{}, &NotFoundError{Now: now}
}
