// Package scaffold plans and runs the generation of the MVC artifacts of a
// component entity. The actual code generation is delegated to a Gateway.
package scaffold

import (
	"context"
	"fmt"

	"github.com/nightconcept/jbuilder-go/internal/core/manifest"
	"github.com/nightconcept/jbuilder-go/internal/core/report"
)

// Section is a generation target of a component.
type Section string

const (
	SectionAdmin Section = "admin"
	SectionSite  Section = "site"
)

// Sections derives the active sections from the --frontend/--backend flags.
// Neither flag means both sections.
func Sections(frontendOnly, backendOnly bool) ([]Section, error) {
	switch {
	case frontendOnly && backendOnly:
		return nil, report.New(report.KindInvalidInput, "The --frontend and --backend options cannot be used together")
	case frontendOnly:
		return []Section{SectionSite}, nil
	case backendOnly:
		return []Section{SectionAdmin}, nil
	default:
		return []Section{SectionAdmin, SectionSite}, nil
	}
}

// TableStrategy selects how the entity table is described.
type TableStrategy string

const (
	TableDefault TableStrategy = "default"
	TableBuilder TableStrategy = "builder"
	TableNone    TableStrategy = "none"
)

// TableStrategies lists the strategies in display order.
var TableStrategies = []TableStrategy{TableDefault, TableBuilder, TableNone}

// ParseTableStrategy validates a strategy name.
func ParseTableStrategy(s string) (TableStrategy, error) {
	for _, ts := range TableStrategies {
		if string(ts) == s {
			return ts, nil
		}
	}
	return "", report.New(report.KindInvalidInput,
		fmt.Sprintf("Unknown table generator %q, use one of default, builder, none", s))
}

// EntitySpec is one entity-generation request.
type EntitySpec struct {
	Component string
	Name      string
	Sections  []Section
	Table     TableStrategy
}

// Kind is the artifact kind of a generation request.
type Kind string

const (
	KindController Kind = "controller"
	KindLayout     Kind = "layout"
	KindModel      Kind = "model"
	KindView       Kind = "view"
)

// Request is one generation request submitted to the Gateway.
type Request struct {
	Kind    Kind
	Section Section
	// Class is the fully qualified class name (controller, model, view).
	Class string
	// Resource is the view or layout resource name.
	Resource string
	// Layout is the layout id, e.g. "form.default" (layouts only).
	Layout string
	// OutputSection is the section whose directory receives a layout.
	OutputSection Section
}

// Name returns the identifier used in error messages.
func (r Request) Name() string {
	if r.Kind == KindLayout {
		return r.Layout + " (" + r.Resource + ")"
	}
	return r.Class
}

// Gateway is the code generation and schema backend.
type Gateway interface {
	GenerateClass(ctx context.Context, kind Kind, class, resource string, section Section) error
	GenerateLayout(ctx context.Context, layout, resource string, output Section) error
	TableExists(ctx context.Context, table string) (bool, error)
	CreateTable(ctx context.Context, table manifest.TableDescription) error
}

// EnsureTable creates table through gw unless it already exists. created is
// false when an existing table was kept.
func EnsureTable(ctx context.Context, gw Gateway, table manifest.TableDescription) (created bool, err error) {
	exists, err := gw.TableExists(ctx, table.Name)
	if err != nil {
		return false, report.Wrap(report.KindGenerationFailed, err, "Cannot check the table "+table.Name)
	}
	if exists {
		return false, nil
	}
	if err := gw.CreateTable(ctx, table); err != nil {
		gf := &GenerationFailed{Kind: "table", Class: table.Name, Err: err}
		return false, report.Wrap(report.KindGenerationFailed, gf, "An error occurred while creating the table "+table.Name)
	}
	return true, nil
}
