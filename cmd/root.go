// Package cmd provides the command-line interface for changelogger.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/substancelab/changelogger/internal/changelog"
	"github.com/substancelab/changelogger/internal/config"
	"github.com/substancelab/changelogger/internal/github"
	"github.com/substancelab/changelogger/internal/logging"
	"github.com/substancelab/changelogger/pkg/models"
)

// Version is the changelogger release, overridable with -ldflags.
var Version = "1.0.0"

// milestoneFetcher is the part of the GitHub client the command needs.
type milestoneFetcher interface {
	FetchMilestones(ctx context.Context, repository string) ([]models.Milestone, error)
}

// newFetcher builds the GitHub client once per run and logs its quota.
var newFetcher = func(ctx context.Context, cfg *config.Config) (milestoneFetcher, error) {
	client, err := github.NewClient(cfg.GitHub)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize github client: %w", err)
	}
	client.CheckRateLimit(ctx)
	return client, nil
}

// now is the reference time for picking the most recently due milestone.
var now = time.Now

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changelogger <owner/repo> [milestone]",
		Short: "Generate a changelog for a GitHub milestone",
		Long: `Changelogger prints a changelog for a milestone of a GitHub repository.

Without a milestone argument the most recently due milestone whose due date
has passed is used. With one, the milestone with that title (ignoring case)
is used.

Closed issues and pull requests of the milestone are grouped by label:
- items labelled 'security' are listed after regular items
- items labelled 'dependencies' are summarised in a single "Bumped" line,
  using the name from their "Bump <name> from ..." title
- everything else is listed as a regular change

A GitHub token must be available as GITHUB_PERSONAL_ACCESS_TOKEN or
GITHUB_TOKEN, either in the environment or in a .env file (see --env-file).

Example:
  changelogger substancelab/changelogger
  changelogger substancelab/changelogger "Release 1.2"`,
		Version:       Version,
		Args:          validateArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runChangelog,
	}

	cmd.PersistentFlags().String("domain", "", "GitHub domain, for GitHub Enterprise (default \"github.com\")")
	cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error (default \"warn\")")
	cmd.Flags().StringP("output", "o", "", "write the changelog to this file instead of stdout")
	cmd.Flags().String("env-file", ".env", "load environment variables from this file when it exists")

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// validateArgs checks the positional arguments before any network call.
func validateArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return &MissingArgumentError{
			Name:  "owner/repo",
			Usage: cmd.UseLine(),
		}
	}
	if len(args) > 2 {
		return fmt.Errorf("accepts at most 2 args, received %d", len(args))
	}
	if _, _, err := github.ParseRepository(args[0]); err != nil {
		return err
	}
	return nil
}

func runChangelog(cmd *cobra.Command, args []string) error {
	repository := args[0]
	milestoneName := ""
	if len(args) > 1 {
		milestoneName = args[1]
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return err
	}

	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.SetupLogger(cmd.ErrOrStderr(), logging.LogLevel(cfg.Log.Level))

	logging.Info("generating changelog",
		"repository", repository,
		"milestone", milestoneName)

	fetcher, err := newFetcher(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	text, err := generate(cmd.Context(), fetcher, repository, milestoneName, now())
	if err != nil {
		return err
	}

	if output != "" {
		if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write changelog: %w", err)
		}
		logging.Info("changelog written", "path", output)
		return nil
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), text)
	return err
}

// generate fetches the milestones, selects one and renders its changelog.
func generate(ctx context.Context, fetcher milestoneFetcher, repository, milestoneName string, at time.Time) (string, error) {
	milestones, err := fetcher.FetchMilestones(ctx, repository)
	if err != nil {
		return "", err
	}

	milestone, err := changelog.SelectMilestone(milestones, milestoneName, at)
	if err != nil {
		return "", err
	}

	changes := changelog.ClassifyMilestone(milestone)
	logging.Info("classified changes",
		"milestone", milestone.Title,
		"regular", len(changes[changelog.Regular]),
		"security", len(changes[changelog.Security]),
		"dependencies", len(changes[changelog.Dependencies]))

	text, err := changelog.RenderString(milestone.Title, changes)
	if err != nil {
		return "", fmt.Errorf("rendering milestone %q: %w", milestone.Title, err)
	}
	return text, nil
}
