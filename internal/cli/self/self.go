// Package self implements the self update command of the jbuilder binary.
package self

import (
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/jbuilder-go/internal/cli/env"
	"github.com/nightconcept/jbuilder-go/internal/core/report"
)

// DefaultRepository publishes the jbuilder releases.
const DefaultRepository = "nightconcept/jbuilder-go"

// NewSelfCommand creates a new command for self-management.
func NewSelfCommand() *cli.Command {
	return &cli.Command{
		Name:  "self",
		Usage: "Manage the jbuilder CLI application itself",
		Subcommands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Update jbuilder to the latest version",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Automatically confirm the update",
					},
					&cli.BoolFlag{
						Name:  "check",
						Usage: "Check for available updates without installing",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Specify a custom GitHub update source as 'owner/repo' (e.g., '" + DefaultRepository + "')",
					},
				},
				Action: updateAction,
			},
		},
	}
}

// ParseVersion parses the running version, with or without a "v" prefix.
func ParseVersion(raw string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimPrefix(raw, "v"))
	if err != nil {
		return nil, report.Wrap(report.KindInvalidInput, err,
			fmt.Sprintf("Error parsing current version '%s', ensure version is like vX.Y.Z or X.Y.Z", raw))
	}
	return v, nil
}

// RepositorySlug validates the --source value; empty selects the default.
func RepositorySlug(flag string) (string, error) {
	if flag == "" {
		return DefaultRepository, nil
	}
	parts := strings.Split(flag, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", report.New(report.KindInvalidInput,
			fmt.Sprintf("Invalid --source format. Expected 'owner/repo', got: %s", flag))
	}
	return flag, nil
}

func updateAction(c *cli.Context) error {
	e, err := env.New(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	out := e.Console

	current, err := ParseVersion(c.App.Version)
	if err != nil {
		return e.Fail(err)
	}
	slug, err := RepositorySlug(c.String("source"))
	if err != nil {
		return e.Fail(err)
	}
	out.Debugf("jbuilder current version: %s, update source: %s", current, slug)

	ghSource, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return e.Fail(fmt.Errorf("error creating GitHub source: %w", err))
	}
	updater, err := selfupdate.NewUpdater(selfupdate.Config{Source: ghSource})
	if err != nil {
		return e.Fail(fmt.Errorf("failed to initialize updater: %w", err))
	}

	latest, found, err := updater.DetectLatest(c.Context, selfupdate.ParseSlug(slug))
	if err != nil {
		return e.Fail(fmt.Errorf("error detecting latest version: %w", err))
	}
	if !found || !latest.GreaterThan(current.String()) {
		out.Success(fmt.Sprintf("Current version %s is already the latest", current))
		return nil
	}
	out.Debugf("Latest version detected: %s (Release URL: %s)", latest.Version(), latest.URL)

	out.Note(fmt.Sprintf("New version available: %s (current: %s)", latest.Version(), current))
	if c.Bool("check") {
		return nil
	}

	if !c.Bool("yes") {
		ok, err := e.Prompter.Confirm("Do you want to update?", false)
		if err != nil {
			return e.Fail(err)
		}
		if !ok {
			out.Comment("Update cancelled")
			return nil
		}
	}

	execPath, err := os.Executable()
	if err != nil {
		return e.Fail(fmt.Errorf("could not get executable path: %w", err))
	}
	if err := updater.UpdateTo(c.Context, latest, execPath); err != nil {
		return e.Fail(fmt.Errorf("failed to update: %w", err))
	}

	out.Success(fmt.Sprintf("Successfully updated to version %s", latest.Version()))
	return nil
}
