// Package env builds what every jbuilder command needs from the cli context:
// the project root, the console and the prompter.
package env

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/jbuilder-go/internal/cli/console"
	"github.com/nightconcept/jbuilder-go/internal/core/prompt"
)

// Global flag names.
const (
	FlagNoInteraction = "no-interaction"
	FlagInteractive   = "interactive"
	FlagVerbose       = "verbose"
	FlagCwd           = "cwd"
)

// GlobalFlags are registered on the application and read by every command.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    FlagNoInteraction,
			Aliases: []string{"n"},
			Usage:   "Do not ask any interactive question",
			EnvVars: []string{"JBUILDER_NO_INTERACTION"},
		},
		&cli.BoolFlag{
			Name:  FlagInteractive,
			Usage: "Ask questions even when stdin is not a terminal",
		},
		&cli.BoolFlag{
			Name:    FlagVerbose,
			Usage:   "Enable verbose output",
			EnvVars: []string{"JBUILDER_VERBOSE"},
		},
		&cli.StringFlag{
			Name:    FlagCwd,
			Usage:   "Use `DIR` as the project root instead of the working directory",
			EnvVars: []string{"JBUILDER_CWD"},
		},
	}
}

// Env is the per-invocation state shared by the command workflows.
type Env struct {
	Root     string
	Console  *console.Console
	Prompter *prompt.Prompter
}

// New resolves the environment of a command invocation.
func New(c *cli.Context) (*Env, error) {
	root := c.String(FlagCwd)
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	out := c.App.Writer
	if out == nil {
		out = os.Stdout
	}
	errOut := c.App.ErrWriter
	if errOut == nil {
		errOut = os.Stderr
	}
	var in io.Reader = c.App.Reader
	if in == nil {
		in = os.Stdin
	}

	interactive := c.Bool(FlagInteractive)
	if f, ok := in.(*os.File); ok && !interactive {
		interactive = prompt.IsTerminal(f)
	}
	if c.Bool(FlagNoInteraction) {
		interactive = false
	}

	return &Env{
		Root:     root,
		Console:  console.New(out, errOut, c.Bool(FlagVerbose)),
		Prompter: prompt.New(in, out, interactive),
	}, nil
}

// ExitError carries a failure that was already displayed out of a command
// action.
type ExitError struct {
	Err  error
	Code int
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

func (e *ExitError) ExitCode() int { return e.Code }

// Fail displays err and returns it as an exit code 1 failure.
func (e *Env) Fail(err error) error {
	e.Console.Report(err)
	return &ExitError{Err: err, Code: 1}
}

// HandleExit is the application ExitErrHandler: failures returned by Fail
// were displayed already and only set the exit status.
func HandleExit(c *cli.Context, err error) {
	if exitErr, ok := err.(*ExitError); ok {
		cli.OsExiter(exitErr.Code)
		return
	}
	cli.HandleExitCoder(err)
}

// StringOverride returns a pointer to the flag value when it was set.
func StringOverride(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}
