// Package status implements project:status.
package status

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/jbuilder-go/internal/cli/entity"
	"github.com/nightconcept/jbuilder-go/internal/cli/env"
	"github.com/nightconcept/jbuilder-go/internal/core/config"
	"github.com/nightconcept/jbuilder-go/internal/core/fsutil"
	"github.com/nightconcept/jbuilder-go/internal/core/lockfile"
	"github.com/nightconcept/jbuilder-go/internal/core/project"
	"github.com/nightconcept/jbuilder-go/internal/core/report"
)

// targetDisplayInfo holds what is displayed for one lockfile target.
type targetDisplayInfo struct {
	Name    string
	Version string
	Hash    string
	Path    string
	Missing bool
}

var (
	projectNameColor = color.New(color.FgMagenta, color.Bold, color.Underline).SprintFunc()
	projectPathColor = color.New(color.FgHiBlack, color.Bold, color.Underline).SprintFunc()
	headerColor      = color.New(color.FgCyan, color.Bold).SprintFunc()
	nameColor        = color.New(color.FgWhite).SprintFunc()
	versionColor     = color.New(color.FgMagenta).SprintFunc()
	hashColor        = color.New(color.FgYellow).SprintFunc()
	pathColor        = color.New(color.FgHiBlack).SprintFunc()
	missingColor     = color.New(color.FgRed).SprintFunc()
)

// NewStatusCommand creates the project:status command.
func NewStatusCommand() *cli.Command {
	return &cli.Command{
		Name:    "project:status",
		Aliases: []string{"status"},
		Usage:   "Displays the project layout, its components and the installed targets",
		Action: func(c *cli.Context) error {
			e, err := env.New(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			proj, err := config.MustLoad(e.Root)
			if err != nil {
				return e.Fail(err)
			}
			lf, err := lockfile.Load(e.Root)
			if err != nil {
				return e.Fail(report.Wrap(report.KindConfigCorrupt, err, "The lockfile cannot be read", lockfile.Path(e.Root)))
			}
			components, err := entity.Components(e.Root, proj)
			if err != nil {
				return e.Fail(err)
			}

			Print(e.Console.Out, e.Root, proj, components, lf)
			return nil
		},
	}
}

// Print writes the status of a project to w.
func Print(w io.Writer, root string, proj *project.Project, components []string, lf *lockfile.Lockfile) {
	_, _ = fmt.Fprintf(w, "%s %s\n\n", projectNameColor(proj.Name), projectPathColor(root))

	_, _ = fmt.Fprintln(w, headerColor("paths:"))
	for _, p := range []struct{ label, rel string }{
		{"src", proj.Paths.Src},
		{"components", proj.Paths.Components},
		{"libraries", proj.Paths.Libraries},
		{"demo", proj.Paths.Demo},
	} {
		line := fmt.Sprintf("%s %s", nameColor(p.label), pathColor(p.rel))
		if !fsutil.IsDir(project.Abs(root, p.rel)) {
			line += " " + missingColor("(missing)")
		}
		_, _ = fmt.Fprintln(w, line)
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, headerColor("components:"))
	if len(components) == 0 {
		_, _ = fmt.Fprintln(w, "No component found.")
	}
	for _, c := range components {
		_, _ = fmt.Fprintln(w, nameColor("com_"+c))
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, headerColor("targets:"))
	targets := collectTargets(root, lf)
	if len(targets) == 0 {
		_, _ = fmt.Fprintln(w, "Nothing installed yet, run project:install.")
		return
	}
	for _, t := range targets {
		version := t.Version
		if version == "" {
			version = "-"
		}
		hash := t.Hash
		if hash == "" {
			hash = "no hash"
		}
		line := fmt.Sprintf("%s %s %s %s", nameColor(t.Name), versionColor(version), hashColor(hash), pathColor(t.Path))
		if t.Missing {
			line += " " + missingColor("(missing)")
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

func collectTargets(root string, lf *lockfile.Lockfile) []targetDisplayInfo {
	var out []targetDisplayInfo
	for _, name := range lf.Names() {
		entry, _ := lf.Target(name)
		out = append(out, targetDisplayInfo{
			Name:    name,
			Version: entry.Version,
			Hash:    entry.Hash,
			Path:    entry.Path,
			Missing: entry.Path != "" && !fsutil.Exists(filepath.Join(root, filepath.FromSlash(entry.Path))),
		})
	}
	return out
}
