package changelog

import (
	"fmt"
	"time"
)

// NotFoundError is returned when no milestone satisfies the selection rule.
type NotFoundError struct {
	// Title is the requested milestone title, empty for recency selection.
	Title string
	// Now is the reference time used for recency selection.
	Now time.Time
}

func (e *NotFoundError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("no milestone titled %q found", e.Title)
	}
	return fmt.Sprintf("no milestone due before %s found", e.Now.Format(time.RFC3339))
}

// MalformedTitleError is returned when a dependency item's title does not
// follow the "Bump <name> from ..." convention.
type MalformedTitleError struct {
	Title string
}

func (e *MalformedTitleError) Error() string {
	return fmt.Sprintf("dependency title %q does not match \"Bump <name> from\"", e.Title)
}
