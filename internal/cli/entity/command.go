// Package entity implements component:entity.
package entity

import (
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/jbuilder-go/internal/cli/env"
	"github.com/nightconcept/jbuilder-go/internal/core/inflect"
)

// NewEntityCommand creates the component:entity command.
func NewEntityCommand() *cli.Command {
	return &cli.Command{
		Name:  "component:entity",
		Usage: "Generate a new component entity (e.g. todos)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "The new entity name"},
			&cli.StringFlag{Name: "component", Usage: "Component receiving the entity, with or without com_"},
			&cli.BoolFlag{Name: "frontend", Usage: "Generate only the frontend"},
			&cli.BoolFlag{Name: "backend", Usage: "Generate only the backend"},
			&cli.StringFlag{Name: "table", Usage: "Table generator: default, builder or none"},
		},
		Action: func(c *cli.Context) error {
			e, err := env.New(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			w := &Workflow{
				Root:         e.Root,
				Name:         c.String("name"),
				Component:    c.String("component"),
				Table:        c.String("table"),
				FrontendOnly: c.Bool("frontend"),
				BackendOnly:  c.Bool("backend"),
				Inflector:    inflect.English{},
				Console:      e.Console,
				Prompter:     e.Prompter,
			}
			if _, err := w.Run(c.Context); err != nil {
				return e.Fail(err)
			}
			return nil
		},
	}
}
