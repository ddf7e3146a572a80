package joomla

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/nightconcept/jbuilder-go/internal/core/install"
	"github.com/nightconcept/jbuilder-go/internal/core/project"
	"github.com/nightconcept/jbuilder-go/internal/core/source"
)

// Release sources and download templates.
const (
	DefaultJoomlaSource = "github:joomla/joomla-cms@~3.10"
	DefaultJoomlaURL    = "https://github.com/joomla/joomla-cms/releases/download/{VERSION}/Joomla_{VERSION}-Stable-Full_Package.zip"
	DefaultFOFSource    = "github:akeeba/fof@^3"
	DefaultFOFURL       = "https://www.akeebabackup.com/download/fof3/{VERSION_DASHED}/lib_fof30-{VERSION_DASHED}-zip.zip"
)

// Target names, also used as lockfile keys.
const (
	TargetJoomla  = "joomla"
	TargetFOF     = "fof"
	TargetPackage = "package"
)

// FOFExtension is the installer name of the FOF 3 library.
const FOFExtension = "lib_fof30"

// Options selects the releases installed into the demo site.
type Options struct {
	Console      *Console
	GitHub       *source.GitHub
	JoomlaSource *source.ParsedSource
	JoomlaURL    string
	FOFSource    *source.ParsedSource
	FOFURL       string
}

// Layout holds the absolute locations involved in installing a project.
type Layout struct {
	Root      string
	Site      string // demo path as given to the console, without trailing slash
	Demo      string
	Libraries string
	Package   string
	Name      string
}

// NewLayout resolves the install locations of proj under root.
func NewLayout(root string, proj *project.Project) Layout {
	return Layout{
		Root:      root,
		Site:      strings.TrimSuffix(proj.Paths.Demo, "/"),
		Demo:      project.Abs(root, proj.Paths.Demo),
		Libraries: project.Abs(root, proj.Paths.Libraries),
		Package:   project.Abs(root, proj.PackageManifestPath()),
		Name:      proj.Name,
	}
}

// FOFDir is where the FOF library is placed inside the project sources.
func (l Layout) FOFDir() string {
	return filepath.Join(l.Libraries, "fof30")
}

// Targets returns the Joomla, FOF and package targets in install order.
func Targets(l Layout, opts Options) []install.Target {
	c := opts.Console
	fofDir := l.FOFDir()
	packageXML := "pkg_" + l.Name + ".xml"

	return []install.Target{
		{
			Name:          TargetJoomla,
			Label:         "Joomla",
			Required:      true,
			Probe:         filepath.Join(l.Demo, "includes", "defines.php"),
			ProbeQuestion: "Joomla already exists, do you want to use it?",
			Clear:         l.Demo,
			Dest:          l.Demo,
			PlaceQuestion: "The demo directory is not empty, use it?",
			PlaceDefault:  install.ChoiceUse,
			Backend: &Release{
				Name:        TargetJoomla,
				GitHub:      opts.GitHub,
				Source:      opts.JoomlaSource,
				URLTemplate: opts.JoomlaURL,
				Registrar: func(ctx context.Context) error {
					return c.SiteInstall(ctx, l.Site)
				},
			},
		},
		{
			Name:          TargetFOF,
			Label:         "FOF",
			Dest:          fofDir,
			PlaceQuestion: "FOF directory detected in your libraries sources, use it?",
			PlaceDefault:  install.ChoiceDelete,
			Links: []install.Link{
				{Source: filepath.Join(fofDir, "fof"), Target: filepath.Join(l.Demo, "libraries", "fof30")},
				{
					Source: filepath.Join(fofDir, "fof", FOFExtension+".xml"),
					Target: filepath.Join(l.Demo, "administrator", "manifests", "libraries", FOFExtension+".xml"),
				},
			},
			Backend: &Release{
				Name:        TargetFOF,
				GitHub:      opts.GitHub,
				Source:      opts.FOFSource,
				URLTemplate: opts.FOFURL,
				Registrar: func(ctx context.Context) error {
					return c.ExtensionInstall(ctx, l.Site, FOFExtension)
				},
			},
		},
		{
			Name:  TargetPackage,
			Label: "Package",
			Links: []install.Link{
				{Source: l.Package, Target: filepath.Join(l.Demo, "administrator", "manifests", "packages", packageXML)},
			},
			Backend: Registration(func(ctx context.Context) error {
				return c.ExtensionInstall(ctx, l.Site, "pkg_"+l.Name)
			}),
		},
	}
}
