package changelog

import (
	"regexp"
)

// bumpPattern matches dependency update titles such as
// "Bump lodash from 4.17.19 to 4.17.21".
var bumpPattern = regexp.MustCompile(`Bump (.*?) from`)

// ExtractDependencyName returns the dependency name from a bump title.
// It returns a *MalformedTitleError when the title does not contain
// "Bump <name> from".
func ExtractDependencyName(title string) (string, error) {
	matches := bumpPattern.FindStringSubmatch(title)
	if len(matches) < 2 {
		return "", &MalformedTitleError{Title: title}
	}
	return matches[1], nil
}
