package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	usageLabel = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// MissingArgumentError is returned when a required positional argument is absent.
type MissingArgumentError struct {
	// Name is the argument's placeholder, e.g. "owner/repo".
	Name string
	// Usage is the command's usage line.
	Usage string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument <%s>", e.Name)
}

// FormatError formats an error for display in the terminal. Colors are
// dropped automatically when the output is not a terminal.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(errorLabel("Error:"))
	sb.WriteString(" ")
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	var missing *MissingArgumentError
	if errors.As(err, &missing) && missing.Usage != "" {
		sb.WriteString(usageLabel("Usage:"))
		sb.WriteString(" ")
		sb.WriteString(missing.Usage)
		sb.WriteString("\n")
	}

	return sb.String()
}
