package joomla

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nightconcept/jbuilder-go/internal/core/downloader"
	"github.com/nightconcept/jbuilder-go/internal/core/install"
	"github.com/nightconcept/jbuilder-go/internal/core/source"
)

// Release downloads the latest archive of a GitHub tagged project and
// registers it through Registrar.
type Release struct {
	Name        string
	GitHub      *source.GitHub
	Source      *source.ParsedSource
	URLTemplate string
	Registrar   func(ctx context.Context) error
}

var _ install.Backend = (*Release)(nil)

// Download resolves the newest tag matching the source constraint and stores
// the archive as <cacheDir>/<name>-<version>.zip.
func (r *Release) Download(ctx context.Context, cacheDir string) (*install.Artifact, error) {
	v, err := r.GitHub.LatestVersion(ctx, r.Source)
	if err != nil {
		return nil, err
	}
	archive := filepath.Join(cacheDir, fmt.Sprintf("%s-%s.zip", r.Name, v))
	if _, err := downloader.DownloadTo(ctx, source.ArchiveURL(r.URLTemplate, v), archive); err != nil {
		return nil, err
	}
	return &install.Artifact{Version: v.String(), Source: r.Source.String(), Archive: archive}, nil
}

func (r *Release) Register(ctx context.Context) error {
	return r.Registrar(ctx)
}

// Registration is a backend without a download: its files are linked from
// the project sources.
type Registration func(ctx context.Context) error

var _ install.Backend = Registration(nil)

func (Registration) Download(context.Context, string) (*install.Artifact, error) {
	return nil, nil
}

func (r Registration) Register(ctx context.Context) error {
	return r(ctx)
}
