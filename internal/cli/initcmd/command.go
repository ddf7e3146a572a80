// Package initcmd implements project:init.
package initcmd

import (
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/jbuilder-go/internal/cli/env"
	"github.com/nightconcept/jbuilder-go/internal/core/config"
	"github.com/nightconcept/jbuilder-go/internal/core/project"
)

// NewInitCommand creates the project:init command.
func NewInitCommand() *cli.Command {
	return &cli.Command{
		Name:      "project:init",
		Usage:     "Init a new Joomla project (creates the .jbuilder file)",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Package name"},
			&cli.StringFlag{Name: "src", Usage: "Sources directory"},
			&cli.StringFlag{Name: "components", Usage: "Components directory"},
			&cli.StringFlag{Name: "libraries", Usage: "Libraries directory"},
			&cli.StringFlag{Name: "demo", Usage: "Joomla website directory"},
			&cli.StringFlag{Name: "author", Usage: "Author of the package"},
			&cli.StringFlag{Name: "email", Usage: "Author email"},
			&cli.StringFlag{Name: "url", Usage: "Author website URL"},
			&cli.StringFlag{Name: "copyright", Usage: "Copyright notice"},
			&cli.StringFlag{Name: "license", Usage: "License notice"},
			&cli.StringFlag{Name: "description", Usage: "Package description"},
			&cli.BoolFlag{Name: "gitignore-demo", Usage: "Add the demo directory to .gitignore"},
		},
		Action: func(c *cli.Context) error {
			e, err := env.New(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			root := e.Root
			if c.Args().Present() {
				root = c.Args().First()
				if !filepath.IsAbs(root) {
					root = filepath.Join(e.Root, root)
				}
			}

			var gitignore *bool
			if c.IsSet("gitignore-demo") {
				v := c.Bool("gitignore-demo")
				gitignore = &v
			}

			w := &Workflow{
				Root: root,
				Overrides: project.Overrides{
					Name:        env.StringOverride(c, "name"),
					Src:         env.StringOverride(c, "src"),
					Components:  env.StringOverride(c, "components"),
					Libraries:   env.StringOverride(c, "libraries"),
					Demo:        env.StringOverride(c, "demo"),
					Author:      env.StringOverride(c, "author"),
					Email:       env.StringOverride(c, "email"),
					URL:         env.StringOverride(c, "url"),
					Copyright:   env.StringOverride(c, "copyright"),
					License:     env.StringOverride(c, "license"),
					Description: env.StringOverride(c, "description"),
				},
				GitignoreDemo: gitignore,
				Console:       e.Console,
				Prompter:      e.Prompter,
			}
			proj, err := w.Run()
			if err != nil {
				return e.Fail(err)
			}
			e.Console.Debugf("project: %s", config.String(proj))
			return nil
		},
	}
}
