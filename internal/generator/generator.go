// Package generator is the file-based code generation backend. It renders
// FOF3 style PHP classes, form layouts and table schema files into the
// component tree of a jbuilder project.
package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nightconcept/jbuilder-go/internal/core/fsutil"
	"github.com/nightconcept/jbuilder-go/internal/core/manifest"
	"github.com/nightconcept/jbuilder-go/internal/core/project"
	"github.com/nightconcept/jbuilder-go/internal/core/scaffold"
)

// Section directories inside a component.
const (
	BackendDir  = "backend"
	FrontendDir = "frontend"
)

// Generator implements scaffold.Gateway on top of the filesystem.
type Generator struct {
	// Dir is the absolute component directory, e.g. /proj/src/components/com_todo.
	Dir       string
	Component string
	Infos     project.Infos
	Renderer  *Renderer
	// OnWrite and OnSkip are called with the path of each written or kept file.
	OnWrite func(path string)
	OnSkip  func(path string)
}

var _ scaffold.Gateway = (*Generator)(nil)

// New creates a generator for component inside the project rooted at root.
func New(root string, proj *project.Project, component string) *Generator {
	return &Generator{
		Dir:       project.Abs(root, proj.ComponentDir(component)),
		Component: component,
		Infos:     proj.Infos,
		Renderer:  NewRenderer(nil),
	}
}

// SectionDir returns the directory receiving the artifacts of a section.
func (g *Generator) SectionDir(section scaffold.Section) string {
	if section == scaffold.SectionAdmin {
		return filepath.Join(g.Dir, BackendDir)
	}
	return filepath.Join(g.Dir, FrontendDir)
}

type classData struct {
	Package   string
	Copyright string
	License   string
	Namespace string
	ClassName string
}

type layoutData struct {
	Package    string
	Copyright  string
	License    string
	FormType   string
	Option     string
	Item       string
	LangPrefix string
}

// GenerateClass writes the PHP file of a controller, model or view class.
// An existing file is kept.
func (g *Generator) GenerateClass(_ context.Context, kind scaffold.Kind, class, _ string, section scaffold.Section) error {
	prefix := scaffold.NamespacePrefix(g.Component, section)
	if !strings.HasPrefix(class, prefix) {
		return fmt.Errorf("class %s is outside the namespace %s", class, prefix)
	}
	relative := strings.TrimPrefix(class, prefix)

	sep := strings.LastIndex(class, `\`)
	data := classData{
		Package:   "com_" + g.Component,
		Copyright: g.Infos.Copyright,
		License:   g.Infos.License,
		Namespace: class[:sep],
		ClassName: class[sep+1:],
	}

	var tmpl string
	switch kind {
	case scaffold.KindController:
		tmpl = "controller.php.tmpl"
	case scaffold.KindModel:
		tmpl = "model.php.tmpl"
	case scaffold.KindView:
		tmpl = "view.php.tmpl"
	default:
		return fmt.Errorf("unsupported class kind %q", kind)
	}

	path := filepath.Join(g.SectionDir(section), filepath.FromSlash(strings.ReplaceAll(relative, `\`, "/"))+".php")
	return g.render(path, tmpl, data)
}

// GenerateLayout writes View/<resource>/tmpl/<layout>.xml under the
// directory of the output section.
func (g *Generator) GenerateLayout(_ context.Context, layout, resource string, output scaffold.Section) error {
	formType := "browse"
	switch layout {
	case "form.form":
		formType = "edit"
	case "form.item":
		formType = "read"
	}

	data := layoutData{
		Package:    "com_" + g.Component,
		Copyright:  g.Infos.Copyright,
		License:    g.Infos.License,
		FormType:   formType,
		Option:     "com_" + g.Component,
		Item:       resource,
		LangPrefix: strings.ToUpper("com_" + g.Component + "_" + resource),
	}

	path := filepath.Join(g.SectionDir(output), "View", resource, "tmpl", layout+".xml")
	return g.render(path, "layout.xml.tmpl", data)
}

// tableFile returns the schema file path of a table without the #__ prefix.
func (g *Generator) tableFile(table, dir, ext string) string {
	name := strings.TrimPrefix(table, "#__")
	return filepath.Join(g.SectionDir(scaffold.SectionAdmin), "sql", dir, name+ext)
}

// TableExists reports whether a schema file was already written for table.
func (g *Generator) TableExists(_ context.Context, table string) (bool, error) {
	_, err := os.Stat(g.tableFile(table, "xml", ".xml"))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// CreateTable writes the table-structure document and the matching MySQL
// statement into backend/sql.
func (g *Generator) CreateTable(_ context.Context, table manifest.TableDescription) error {
	doc, err := manifest.RenderTable(table)
	if err != nil {
		return fmt.Errorf("render table %s: %w", table.Name, err)
	}
	if err := g.write(g.tableFile(table.Name, "xml", ".xml"), doc); err != nil {
		return err
	}
	return g.write(g.tableFile(table.Name, "mysql", ".sql"), []byte(manifest.RenderCreateTable(table)))
}

func (g *Generator) render(path, tmpl string, data any) error {
	if fsutil.Exists(path) {
		if g.OnSkip != nil {
			g.OnSkip(path)
		}
		return nil
	}
	content, err := g.Renderer.Render(tmpl, data)
	if err != nil {
		return err
	}
	return g.write(path, content)
}

func (g *Generator) write(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", filepath.Dir(path), err)
	}
	if err := fsutil.WriteAtomic(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if g.OnWrite != nil {
		g.OnWrite(path)
	}
	return nil
}
