package entity

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/nightconcept/jbuilder-go/internal/cli/console"
	"github.com/nightconcept/jbuilder-go/internal/core/config"
	"github.com/nightconcept/jbuilder-go/internal/core/inflect"
	"github.com/nightconcept/jbuilder-go/internal/core/manifest"
	"github.com/nightconcept/jbuilder-go/internal/core/project"
	"github.com/nightconcept/jbuilder-go/internal/core/prompt"
	"github.com/nightconcept/jbuilder-go/internal/core/report"
	"github.com/nightconcept/jbuilder-go/internal/core/scaffold"
	"github.com/nightconcept/jbuilder-go/internal/generator"
)

const componentPrefix = "com_"

// Workflow generates the MVC artifacts of one component entity.
type Workflow struct {
	Root      string
	Name      string
	Component string

	// Table is the table strategy given on the command line, empty to ask.
	Table        string
	FrontendOnly bool
	BackendOnly  bool

	Inflector inflect.Inflector
	Console   *console.Console
	Prompter  *prompt.Prompter

	// NewGateway builds the generation backend of a component. Defaults to
	// the file-based generator.
	NewGateway func(root string, proj *project.Project, component string) scaffold.Gateway
}

// Run validates the request, describes the table and submits the planned
// requests in order. Nothing is generated when validation fails.
func (w *Workflow) Run(ctx context.Context) ([]scaffold.Request, error) {
	w.Console.Title("Generate new entity")

	proj, err := config.MustLoad(w.Root)
	if err != nil {
		return nil, err
	}
	name, err := w.Prompter.EntityName(w.Name)
	if err != nil {
		return nil, err
	}
	sections, err := scaffold.Sections(w.FrontendOnly, w.BackendOnly)
	if err != nil {
		return nil, err
	}
	component, err := w.resolveComponent(proj)
	if err != nil {
		return nil, err
	}

	gw := w.gateway(proj, component)
	spec := scaffold.EntitySpec{Component: component, Name: name, Sections: sections}

	w.Console.Section("Database table")
	if spec.Table, err = w.tableStrategy(); err != nil {
		return nil, err
	}
	if err := w.describeTable(ctx, gw, spec); err != nil {
		return nil, err
	}

	w.Console.Section("Scaffolding")
	reqs := scaffold.NewPlanner(w.inflector()).Plan(spec)
	var done []scaffold.Request
	err = scaffold.Execute(ctx, gw, reqs, func(r scaffold.Request) {
		done = append(done, r)
		w.Console.Debugf("%s %s", r.Kind, r.Name())
	})
	if err != nil {
		return done, err
	}

	w.Console.Success(fmt.Sprintf("Entity %s created in com_%s", name, component))
	return done, nil
}

func (w *Workflow) inflector() inflect.Inflector {
	if w.Inflector != nil {
		return w.Inflector
	}
	return inflect.English{}
}

func (w *Workflow) gateway(proj *project.Project, component string) scaffold.Gateway {
	if w.NewGateway != nil {
		return w.NewGateway(w.Root, proj, component)
	}
	g := generator.New(w.Root, proj, component)
	g.OnWrite = func(path string) { w.Console.Comment("Created " + path) }
	g.OnSkip = func(path string) { w.Console.Note("Skip file creation, this file already exists\n" + path) }
	return g
}

// resolveComponent returns the component name without its com_ prefix.
func (w *Workflow) resolveComponent(proj *project.Project) (string, error) {
	found, err := Components(w.Root, proj)
	if err != nil {
		return "", err
	}

	if w.Component != "" {
		name := strings.TrimPrefix(w.Component, componentPrefix)
		if !validComponentName(name) {
			return "", report.New(report.KindInvalidInput,
				"Invalid --component value, you can use only A-Z and _ (e.g. todo)", w.Component)
		}
		if i := sort.SearchStrings(found, name); i == len(found) || found[i] != name {
			return "", report.New(report.KindInvalidInput,
				"The component does not exist", project.Abs(w.Root, proj.ComponentDir(name)))
		}
		return name, nil
	}
	switch len(found) {
	case 0:
		return "", report.New(report.KindMissingRequiredInput,
			"No component found, use --component to name one", project.Abs(w.Root, proj.Paths.Components))
	case 1:
		return found[0], nil
	}

	if !w.Prompter.Interactive() {
		return "", report.New(report.KindMissingRequiredInput,
			"Several components found, use --component to select one: "+strings.Join(found, ", "))
	}
	return w.Prompter.Choice("Which component receives the entity?", found, found[0])
}

// Components lists the component names found under the components
// directory, sorted and without the com_ prefix. Directories whose name is
// not usable as a namespace are ignored.
func Components(root string, proj *project.Project) ([]string, error) {
	dir := project.Abs(root, proj.Paths.Components)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, report.Wrap(report.KindInvalidPath, err, "The components directory cannot be read", dir)
	}

	var names []string
	for _, e := range entries {
		name := strings.TrimPrefix(e.Name(), componentPrefix)
		if e.IsDir() && name != e.Name() && validComponentName(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// validComponentName reports whether name can be used as a PHP namespace
// segment. It follows the entity name rule.
func validComponentName(name string) bool {
	return prompt.ValidateEntityName(name) == nil
}

func (w *Workflow) tableStrategy() (scaffold.TableStrategy, error) {
	if w.Table != "" {
		return scaffold.ParseTableStrategy(w.Table)
	}
	if !w.Prompter.Interactive() {
		return scaffold.TableDefault, nil
	}

	w.Console.Table([]string{"type", "description"}, [][]string{
		{string(scaffold.TableDefault), "Fields: id, title, created_on, created_by, modified_on, modified_by"},
		{string(scaffold.TableBuilder), "Create the table using the CLI builder"},
		{string(scaffold.TableNone), "No table, Model and Layouts will not be generated"},
	})
	choices := make([]string, len(scaffold.TableStrategies))
	for i, ts := range scaffold.TableStrategies {
		choices[i] = string(ts)
	}
	answer, err := w.Prompter.Choice("What table generator do you want to use for this entity?", choices, string(scaffold.TableDefault))
	if err != nil {
		return "", err
	}
	return scaffold.ParseTableStrategy(answer)
}

func (w *Workflow) describeTable(ctx context.Context, gw scaffold.Gateway, spec scaffold.EntitySpec) error {
	singular := w.inflector().Singularize(spec.Name)

	var table manifest.TableDescription
	switch spec.Table {
	case scaffold.TableNone:
		w.Console.Note("No table, the Model and Layouts will not be generated")
		return nil
	case scaffold.TableBuilder:
		cols, err := w.buildColumns()
		if err != nil {
			return err
		}
		table = manifest.TableDescription{
			Name:    manifest.TableName(spec.Component, singular),
			IDField: manifest.IDFieldName(spec.Component, singular),
			Columns: append([]manifest.Column{manifest.IDColumn(spec.Component, singular)}, cols...),
		}
	default:
		table = manifest.DefaultTable(spec.Component, singular)
	}

	created, err := scaffold.EnsureTable(ctx, gw, table)
	if err != nil {
		return err
	}
	if !created {
		w.Console.Note("The table already exists, skip the table creation\n" + table.Name)
		return nil
	}
	w.Console.Comment("Table " + table.Name + " created")
	return nil
}

// buildColumns asks for columns until an empty name is given.
func (w *Workflow) buildColumns() ([]manifest.Column, error) {
	if !w.Prompter.Interactive() {
		return nil, report.New(report.KindMissingRequiredInput,
			"The table builder needs an interactive session, use --table=default or --table=none")
	}

	var cols []manifest.Column
	seen := map[string]bool{}
	for {
		name, err := w.Prompter.Ask("Column name (empty to finish)", "")
		if err != nil {
			return nil, err
		}
		if name == "" {
			break
		}
		if err := prompt.ValidateEntityName(name); err != nil || seen[name] {
			w.Console.Error(fmt.Sprintf("Invalid or duplicated column name %q", name))
			continue
		}
		colType, err := w.Prompter.Ask("Column type", "VARCHAR(255)")
		if err != nil {
			return nil, err
		}
		nullable, err := w.Prompter.Confirm("Can the column be NULL?", false)
		if err != nil {
			return nil, err
		}
		seen[name] = true
		cols = append(cols, manifest.Column{Name: name, Type: strings.ToUpper(colType), Nullable: nullable})
	}
	return cols, nil
}
