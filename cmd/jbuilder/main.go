// Command jbuilder scaffolds Joomla FOF3 projects: it initializes the
// project layout, installs a demo site and generates component entities.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/jbuilder-go/internal/cli/entity"
	"github.com/nightconcept/jbuilder-go/internal/cli/env"
	"github.com/nightconcept/jbuilder-go/internal/cli/initcmd"
	"github.com/nightconcept/jbuilder-go/internal/cli/install"
	"github.com/nightconcept/jbuilder-go/internal/cli/outdated"
	"github.com/nightconcept/jbuilder-go/internal/cli/self"
	"github.com/nightconcept/jbuilder-go/internal/cli/status"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "v0.1.0"

func main() {
	app := &cli.App{
		Name:    "jbuilder",
		Usage:   "Build Joomla extensions with FOF3",
		Version: version,
		Flags:   env.GlobalFlags(),
		Action: func(c *cli.Context) error {
			// Default action if no command is specified
			_ = cli.ShowAppHelp(c)
			return nil
		},
		Commands: []*cli.Command{
			initcmd.NewInitCommand(),
			install.NewInstallCommand(),
			entity.NewEntityCommand(),
			status.NewStatusCommand(),
			outdated.NewOutdatedCommand(),
			self.NewSelfCommand(),
		},
		ExitErrHandler: env.HandleExit,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
