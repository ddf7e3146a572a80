// Package project holds the in-memory representation of a jbuilder project
// descriptor (.jbuilder).
package project

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Project represents the overall structure of the .jbuilder file.
// Field order is the serialization order.
type Project struct {
	Name  string `json:"name"`
	Paths Paths  `json:"paths"`
	Infos Infos  `json:"infos"`
}

// Paths are relative to the project root and always end with a separator.
type Paths struct {
	Src        string `json:"src"`
	Components string `json:"components"`
	Libraries  string `json:"libraries"`
	Demo       string `json:"demo"`
}

// Infos is the extension metadata copied into generated manifests.
type Infos struct {
	Author      string `json:"author"`
	Email       string `json:"email"`
	URL         string `json:"url"`
	Copyright   string `json:"copyright"`
	License     string `json:"license"`
	Description string `json:"description"`
}

const DefaultName = "myproject"

// DefaultPaths returns the default directory layout.
func DefaultPaths() Paths {
	return Paths{
		Src:        "src/",
		Components: "src/components/",
		Libraries:  "src/libraries/",
		Demo:       "demo/",
	}
}

// DefaultInfos returns the default extension metadata.
func DefaultInfos() Infos {
	return Infos{
		Author:      "me",
		Email:       "me@domain.tld",
		URL:         "http://www.domain.tld",
		Copyright:   "Copyright (c) 2016 Me",
		License:     "GNU General Public License version 2 or later",
		Description: "",
	}
}

// NewProject creates a project with default paths and infos and no name.
func NewProject() *Project {
	return &Project{
		Paths: DefaultPaths(),
		Infos: DefaultInfos(),
	}
}

// Overrides are values supplied before the first persistence. Nil fields
// keep the default.
type Overrides struct {
	Name *string

	Src        *string
	Components *string
	Libraries  *string
	Demo       *string

	Author      *string
	Email       *string
	URL         *string
	Copyright   *string
	License     *string
	Description *string
}

// Apply merges the overrides into p. Path values are normalized with a
// trailing separator.
func (o Overrides) Apply(p *Project) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setPath := func(dst *string, v *string) {
		if v != nil {
			*dst = DirPath(*v)
		}
	}

	set(&p.Name, o.Name)

	setPath(&p.Paths.Src, o.Src)
	setPath(&p.Paths.Components, o.Components)
	setPath(&p.Paths.Libraries, o.Libraries)
	setPath(&p.Paths.Demo, o.Demo)

	set(&p.Infos.Author, o.Author)
	set(&p.Infos.Email, o.Email)
	set(&p.Infos.URL, o.URL)
	set(&p.Infos.Copyright, o.Copyright)
	set(&p.Infos.License, o.License)
	set(&p.Infos.Description, o.Description)
}

// DirPath normalizes a directory path so it ends with exactly one slash.
// Descriptor paths always use forward slashes.
func DirPath(p string) string {
	p = filepath.ToSlash(strings.TrimSpace(p))
	return strings.TrimRight(p, "/") + "/"
}

// ComponentDir returns the relative directory of a component, e.g.
// "src/components/com_todo/".
func (p *Project) ComponentDir(component string) string {
	return p.Paths.Components + "com_" + component + "/"
}

// LibraryDir returns the relative directory of a library inside the sources.
func (p *Project) LibraryDir(library string) string {
	return p.Paths.Libraries + library + "/"
}

// PackageManifestPath returns the relative path of the package manifest.
func (p *Project) PackageManifestPath() string {
	return p.Paths.Src + "pkg_" + p.Name + ".xml"
}

// Abs resolves a descriptor-relative path against root.
func Abs(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

// ValidateDir checks a descriptor-relative directory. It must name a
// directory strictly inside the project root.
func ValidateDir(rel string) error {
	rel = filepath.ToSlash(strings.TrimSpace(rel))
	if rel == "" {
		return errors.New("the directory cannot be empty")
	}
	clean := path.Clean(rel)
	if path.IsAbs(rel) || filepath.IsAbs(rel) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return errors.New("the directory must be inside the project root")
	}
	return nil
}

// Validate reports the first inconsistency of a loaded descriptor: a missing
// name or a path that is empty, lacks its trailing slash or leaves the root.
func (p *Project) Validate() error {
	if p.Name == "" {
		return errors.New("the project name is missing")
	}
	for _, d := range []struct {
		field string
		value string
	}{
		{"src", p.Paths.Src},
		{"components", p.Paths.Components},
		{"libraries", p.Paths.Libraries},
		{"demo", p.Paths.Demo},
	} {
		if err := ValidateDir(d.value); err != nil {
			return fmt.Errorf("paths.%s: %w", d.field, err)
		}
		if !strings.HasSuffix(d.value, "/") {
			return fmt.Errorf("paths.%s: %q must end with /", d.field, d.value)
		}
	}
	return nil
}
