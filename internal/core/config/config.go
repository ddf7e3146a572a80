// Package config loads, initializes and persists the .jbuilder project
// descriptor. The descriptor is the only signal that a directory is an
// initialized project.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nightconcept/jbuilder-go/internal/core/fsutil"
	"github.com/nightconcept/jbuilder-go/internal/core/project"
	"github.com/nightconcept/jbuilder-go/internal/core/report"
)

const DescriptorName = ".jbuilder"

// DescriptorPath returns the descriptor location for a project root.
func DescriptorPath(root string) string {
	return filepath.Join(root, DescriptorName)
}

// Load reads the descriptor from root. found is false, with a nil error, when
// no descriptor exists. An unparsable descriptor is a ConfigCorrupt report and
// no partially decoded project is returned.
func Load(root string) (proj *project.Project, found bool, err error) {
	path := DescriptorPath(root)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, report.Wrap(report.KindConfigCorrupt, err, "The project file cannot be read", path)
	}

	p, err := decode(data)
	if err != nil {
		return nil, true, report.Wrap(report.KindConfigCorrupt, err, "The project file is corrupted, please check", path)
	}
	return p, true, nil
}

// decode accepts exactly one JSON object describing a complete project.
func decode(data []byte) (*project.Project, error) {
	var p *project.Project
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after the project object")
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the project object")
	}
	if p == nil {
		return nil, errors.New("the project object is null")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// MustLoad is Load for commands that require an initialized project: a
// missing descriptor is a NotInitialized report.
func MustLoad(root string) (*project.Project, error) {
	p, found, err := Load(root)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, report.New(report.KindNotInitialized,
			"This directory is not a jbuilder project, run project:init first",
			filepath.Clean(root)+string(filepath.Separator))
	}
	return p, nil
}

// Init builds a new in-memory project for root from the defaults merged with
// overrides. Nothing is written.
func Init(root string, overrides project.Overrides) (*project.Project, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, report.New(report.KindInvalidPath,
			"This directory does not exists, please check", root)
	}
	if fsutil.Exists(DescriptorPath(root)) {
		return nil, report.Warning(report.KindAlreadyInitialized,
			"This directory has already been init", root)
	}

	p := project.NewProject()
	overrides.Apply(p)
	return p, nil
}

// Marshal serializes a project deterministically: keys follow the struct
// field order, indentation is fixed and the output ends with a newline.
func Marshal(p *project.Project) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Persist writes the descriptor for p into root. The name is required. The
// write goes through a temporary file so an existing descriptor stays intact
// on failure.
func Persist(p *project.Project, root string) error {
	if p.Name == "" {
		return report.Warning(report.KindMissingRequiredInput,
			"Action canceled, enter a name for this project")
	}

	data, err := Marshal(p)
	if err != nil {
		return report.Wrap(report.KindWriteError, err, "The project file cannot be encoded")
	}

	path := DescriptorPath(root)
	if err := fsutil.WriteAtomic(path, data, 0o644); err != nil {
		return report.Wrap(report.KindWriteError, err,
			"Action canceled, the builder file cannot be created, please check.", path)
	}
	return nil
}

// String renders a short description of the configured layout, used in
// verbose output.
func String(p *project.Project) string {
	return fmt.Sprintf("%s (src=%s components=%s libraries=%s demo=%s)",
		p.Name, p.Paths.Src, p.Paths.Components, p.Paths.Libraries, p.Paths.Demo)
}
