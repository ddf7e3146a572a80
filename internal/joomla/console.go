// Package joomla binds the install targets of a jbuilder project to the
// Joomlatools console and to the Joomla and FOF release archives.
package joomla

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// DefaultConsoleBinary is the Joomlatools console executable.
const DefaultConsoleBinary = "joomla"

// Console runs Joomlatools console commands against the sites of a project.
type Console struct {
	Binary string
	// WWW is the directory the console treats as its web root.
	WWW    string
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the console with args. The process is killed when ctx is done.
func (c *Console) Run(ctx context.Context, args ...string) error {
	binary := c.Binary
	if binary == "" {
		binary = DefaultConsoleBinary
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = c.WWW
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", binary, strings.Join(args, " "), err)
	}
	return nil
}

// SiteInstall installs the database of a downloaded site with the default
// sample data.
func (c *Console) SiteInstall(ctx context.Context, site string) error {
	return c.Run(ctx, "site:install", site, "--www", c.WWW, "--sample-data", "default")
}

// ExtensionInstall registers an extension whose files are already in place.
func (c *Console) ExtensionInstall(ctx context.Context, site, extension string) error {
	return c.Run(ctx, "extension:install", site, extension, "--www", c.WWW)
}
