// Package install implements project:install: the Joomla demo site, the FOF
// library and the project package are installed one after the other.
package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/jbuilder-go/internal/cli/console"
	"github.com/nightconcept/jbuilder-go/internal/cli/env"
	"github.com/nightconcept/jbuilder-go/internal/core/config"
	coreinstall "github.com/nightconcept/jbuilder-go/internal/core/install"
	"github.com/nightconcept/jbuilder-go/internal/core/lockfile"
	"github.com/nightconcept/jbuilder-go/internal/core/prompt"
	"github.com/nightconcept/jbuilder-go/internal/core/report"
	"github.com/nightconcept/jbuilder-go/internal/core/source"
	"github.com/nightconcept/jbuilder-go/internal/joomla"
)

// On-existing policies.
const (
	OnExistingAsk    = "ask"
	OnExistingUse    = "use"
	OnExistingDelete = "delete"
)

// NewInstallCommand creates a new cli.Command for the "project:install" command.
func NewInstallCommand() *cli.Command {
	return &cli.Command{
		Name:  "project:install",
		Usage: "Install Joomla, FOF and the project package into the demo site",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "on-existing",
				Value: OnExistingAsk,
				Usage: "What to do with an existing installation: ask, use or delete",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Download the archives again even if they were already downloaded",
			},
			&cli.StringFlag{
				Name:    "console",
				Value:   joomla.DefaultConsoleBinary,
				Usage:   "Joomlatools console `BINARY`",
				EnvVars: []string{"JBUILDER_CONSOLE"},
			},
			&cli.StringFlag{
				Name:    "joomla-version",
				Value:   constraintOf(joomla.DefaultJoomlaSource),
				Usage:   "Joomla version constraint",
				EnvVars: []string{"JBUILDER_JOOMLA_VERSION"},
			},
			&cli.StringFlag{
				Name:    "fof-version",
				Value:   constraintOf(joomla.DefaultFOFSource),
				Usage:   "FOF version constraint",
				EnvVars: []string{"JBUILDER_FOF_VERSION"},
			},
			&cli.StringFlag{
				Name:    "joomla-url",
				Value:   joomla.DefaultJoomlaURL,
				Usage:   "Joomla archive URL template",
				EnvVars: []string{"JBUILDER_JOOMLA_URL"},
			},
			&cli.StringFlag{
				Name:    "fof-url",
				Value:   joomla.DefaultFOFURL,
				Usage:   "FOF archive URL template",
				EnvVars: []string{"JBUILDER_FOF_URL"},
			},
			&cli.StringFlag{
				Name:    "github-api",
				Value:   source.DefaultGithubAPIBaseURL,
				Usage:   "GitHub API base URL",
				EnvVars: []string{"JBUILDER_GITHUB_API"},
			},
			&cli.StringFlag{
				Name:    "cache-dir",
				Usage:   "Directory keeping the downloaded archives",
				EnvVars: []string{"JBUILDER_CACHE_DIR"},
			},
		},
		Action: func(c *cli.Context) error {
			e, err := env.New(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			opts, err := releaseOptions(c)
			if err != nil {
				return e.Fail(err)
			}
			opts.Console = &joomla.Console{
				Binary: c.String("console"),
				WWW:    e.Root,
				Stdout: e.Console.Out,
				Stderr: e.Console.Err,
			}

			w := &Workflow{
				Root:       e.Root,
				OnExisting: c.String("on-existing"),
				Force:      c.Bool("force"),
				CacheDir:   c.String("cache-dir"),
				Options:    opts,
				Console:    e.Console,
				Prompter:   e.Prompter,
			}
			if _, err := w.Run(c.Context); err != nil {
				return e.Fail(err)
			}
			return nil
		},
	}
}

func constraintOf(raw string) string {
	if i := strings.LastIndex(raw, "@"); i >= 0 {
		return raw[i+1:]
	}
	return "*"
}

func withConstraint(raw, constraint string) string {
	if i := strings.LastIndex(raw, "@"); i >= 0 {
		raw = raw[:i]
	}
	return raw + "@" + constraint
}

func releaseOptions(c *cli.Context) (joomla.Options, error) {
	joomlaSrc, err := source.ParseSource(withConstraint(joomla.DefaultJoomlaSource, c.String("joomla-version")))
	if err != nil {
		return joomla.Options{}, report.Wrap(report.KindInvalidInput, err, "Invalid --joomla-version")
	}
	fofSrc, err := source.ParseSource(withConstraint(joomla.DefaultFOFSource, c.String("fof-version")))
	if err != nil {
		return joomla.Options{}, report.Wrap(report.KindInvalidInput, err, "Invalid --fof-version")
	}
	return joomla.Options{
		GitHub:       source.NewGitHub(c.String("github-api")),
		JoomlaSource: joomlaSrc,
		JoomlaURL:    c.String("joomla-url"),
		FOFSource:    fofSrc,
		FOFURL:       c.String("fof-url"),
	}, nil
}

// Workflow installs the targets of a project and records them in the
// lockfile.
type Workflow struct {
	Root       string
	OnExisting string
	Force      bool
	CacheDir   string
	Options    joomla.Options
	Console    *console.Console
	Prompter   *prompt.Prompter
}

// Run installs every target. The lockfile is saved even when a required
// target failed, so completed targets stay recorded.
func (w *Workflow) Run(ctx context.Context) ([]coreinstall.Result, error) {
	w.Console.Title("Install project")

	proj, err := config.MustLoad(w.Root)
	if err != nil {
		return nil, err
	}
	preset, err := parseOnExisting(w.OnExisting)
	if err != nil {
		return nil, err
	}
	lf, err := lockfile.Load(w.Root)
	if err != nil {
		return nil, report.Wrap(report.KindConfigCorrupt, err, "The lockfile cannot be read", lockfile.Path(w.Root))
	}
	cacheDir, err := w.cacheDir()
	if err != nil {
		return nil, err
	}

	orch := &coreinstall.Orchestrator{
		Root:     w.Root,
		CacheDir: cacheDir,
		Lock:     lf,
		Force:    w.Force,
		Decider:  coreinstall.Preset{Choice: preset, Next: promptDecider{p: w.Prompter}},
		Reporter: w.Console,
		OnTransition: func(target string, from, to coreinstall.State) {
			w.Console.Debugf("%s: %s -> %s", target, from, to)
		},
	}
	results, runErr := orch.Run(ctx, joomla.Targets(joomla.NewLayout(w.Root, proj), w.Options))

	if err := lockfile.Save(w.Root, lf); err != nil {
		saveErr := report.Wrap(report.KindWriteError, err, "The lockfile cannot be saved", lockfile.Path(w.Root))
		if runErr == nil {
			return results, saveErr
		}
		w.Console.Report(saveErr)
	}

	w.summary(results)
	if runErr != nil {
		return results, runErr
	}
	w.Console.Success("Project installed")
	return results, nil
}

func (w *Workflow) cacheDir() (string, error) {
	dir := w.CacheDir
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		dir = filepath.Join(base, "jbuilder")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", report.Wrap(report.KindWriteError, err, "The download cache cannot be created", dir)
	}
	return dir, nil
}

func (w *Workflow) summary(results []coreinstall.Result) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		version := "-"
		if r.Artifact != nil && r.Artifact.Version != "" {
			version = r.Artifact.Version
		}
		rows = append(rows, []string{r.Target, r.State.String(), version})
	}
	w.Console.Section("Summary")
	w.Console.Table([]string{"target", "state", "version"}, rows)
}

func parseOnExisting(v string) (coreinstall.Choice, error) {
	switch v {
	case "", OnExistingAsk:
		return "", nil
	case OnExistingUse:
		return coreinstall.ChoiceUse, nil
	case OnExistingDelete:
		return coreinstall.ChoiceDelete, nil
	}
	return "", report.New(report.KindInvalidInput,
		fmt.Sprintf("Unknown --on-existing value %q, use one of ask, use, delete", v))
}

// promptDecider asks the operator through the prompter. Without interaction
// every question takes its default.
type promptDecider struct {
	p *prompt.Prompter
}

func (d promptDecider) Choose(question string, def coreinstall.Choice) (coreinstall.Choice, error) {
	answer, err := d.p.Choice(question, coreinstall.Choices, string(def))
	if err != nil {
		return "", err
	}
	return coreinstall.Choice(answer), nil
}

func (d promptDecider) Confirm(question string, def bool) (bool, error) {
	return d.p.Confirm(question, def)
}
