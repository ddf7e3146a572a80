// Package outdated implements project:outdated: the installed Joomla and FOF
// versions are compared with the latest releases matching their constraints.
package outdated

import (
	"context"
	"fmt"
	"io"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/jbuilder-go/internal/cli/env"
	"github.com/nightconcept/jbuilder-go/internal/core/config"
	"github.com/nightconcept/jbuilder-go/internal/core/lockfile"
	"github.com/nightconcept/jbuilder-go/internal/core/report"
	"github.com/nightconcept/jbuilder-go/internal/core/source"
	"github.com/nightconcept/jbuilder-go/internal/joomla"
)

// Status of a target against its latest release.
type Status string

const (
	StatusUpToDate     Status = "up-to-date"
	StatusOutdated     Status = "outdated"
	StatusNotInstalled Status = "not installed"
	StatusUnknown      Status = "unknown"
)

// Check is the comparison result of one target.
type Check struct {
	Target string
	Locked string
	Latest string
	Status Status
	Err    error
}

// Release names a target and the source its versions come from.
type Release struct {
	Target string
	Source *source.ParsedSource
}

var (
	upToDateColor = color.New(color.FgGreen).SprintFunc()
	outdatedColor = color.New(color.FgYellow, color.Bold).SprintFunc()
	missingColor  = color.New(color.FgHiBlack).SprintFunc()
	errorColor    = color.New(color.FgRed).SprintFunc()
)

// NewOutdatedCommand creates the project:outdated command.
func NewOutdatedCommand() *cli.Command {
	return &cli.Command{
		Name:  "project:outdated",
		Usage: "Compares the installed Joomla and FOF versions with the latest releases",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "github-api",
				Value:   source.DefaultGithubAPIBaseURL,
				Usage:   "GitHub API base URL",
				EnvVars: []string{"JBUILDER_GITHUB_API"},
			},
		},
		Action: func(c *cli.Context) error {
			e, err := env.New(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if _, err := config.MustLoad(e.Root); err != nil {
				return e.Fail(err)
			}
			lf, err := lockfile.Load(e.Root)
			if err != nil {
				return e.Fail(report.Wrap(report.KindConfigCorrupt, err, "The lockfile cannot be read", lockfile.Path(e.Root)))
			}

			releases, err := DefaultReleases()
			if err != nil {
				return e.Fail(err)
			}
			gh := source.NewGitHub(c.String("github-api"))
			checks := Compare(c.Context, gh, lf, releases)
			Print(e.Console.Out, checks)
			return nil
		},
	}
}

// DefaultReleases returns the Joomla and FOF releases with the source
// recorded by default.
func DefaultReleases() ([]Release, error) {
	var out []Release
	for _, r := range []struct{ target, raw string }{
		{joomla.TargetJoomla, joomla.DefaultJoomlaSource},
		{joomla.TargetFOF, joomla.DefaultFOFSource},
	} {
		src, err := source.ParseSource(r.raw)
		if err != nil {
			return nil, err
		}
		out = append(out, Release{Target: r.target, Source: src})
	}
	return out, nil
}

// Compare checks each release against the lockfile. A target installed from
// another source is checked against the recorded source. Lookup failures are
// reported per target.
func Compare(ctx context.Context, gh *source.GitHub, lf *lockfile.Lockfile, releases []Release) []Check {
	checks := make([]Check, 0, len(releases))
	for _, r := range releases {
		entry, ok := lf.Target(r.Target)
		if !ok || entry.Version == "" {
			checks = append(checks, Check{Target: r.Target, Status: StatusNotInstalled})
			continue
		}

		check := Check{Target: r.Target, Locked: entry.Version}
		src := r.Source
		if entry.Source != "" {
			if parsed, err := source.ParseSource(entry.Source); err == nil {
				src = parsed
			}
		}
		check.Status, check.Latest, check.Err = compareOne(ctx, gh, src, entry.Version)
		checks = append(checks, check)
	}
	return checks
}

func compareOne(ctx context.Context, gh *source.GitHub, src *source.ParsedSource, locked string) (Status, string, error) {
	latest, err := gh.LatestVersion(ctx, src)
	if err != nil {
		return StatusUnknown, "", err
	}
	current, err := semver.NewVersion(locked)
	if err != nil {
		return StatusUnknown, latest.String(), fmt.Errorf("invalid locked version %q: %w", locked, err)
	}
	if latest.GreaterThan(current) {
		return StatusOutdated, latest.String(), nil
	}
	return StatusUpToDate, latest.String(), nil
}

// Print writes one line per check.
func Print(w io.Writer, checks []Check) {
	for _, c := range checks {
		var line string
		switch c.Status {
		case StatusUpToDate:
			line = upToDateColor(fmt.Sprintf("up-to-date (%s)", c.Locked))
		case StatusOutdated:
			line = outdatedColor(fmt.Sprintf("outdated (%s -> %s)", c.Locked, c.Latest))
		case StatusNotInstalled:
			line = missingColor("not installed")
		default:
			line = errorColor(fmt.Sprintf("unknown (%v)", c.Err))
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", c.Target, line)
	}
}
