package scaffold

import (
	"context"

	"github.com/nightconcept/jbuilder-go/internal/core/inflect"
	"github.com/nightconcept/jbuilder-go/internal/core/report"
)

// layoutKinds are the layouts generated per section: the listing layout
// first, then the per-item one.
var layoutKinds = map[Section][]string{
	SectionAdmin: {"default", "form"},
	SectionSite:  {"default", "item"},
}

// Planner turns an EntitySpec into an ordered list of generation requests.
type Planner struct {
	Inflector inflect.Inflector
}

// NewPlanner creates a planner using in for singular/plural forms.
func NewPlanner(in inflect.Inflector) *Planner {
	return &Planner{Inflector: in}
}

// Namespace returns the PHP namespace root of a component, e.g. "Todo" for
// "todo" or "TodoList" for "todo_list".
func Namespace(component string) string {
	out := ""
	upper := true
	for _, r := range component {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			out += inflect.Ucfirst(string(r))
			upper = false
			continue
		}
		out += string(r)
	}
	return out
}

// NamespacePrefix returns the namespace prefix of a section, e.g. "Todo\Admin\".
func NamespacePrefix(component string, section Section) string {
	part := "Site"
	if section == SectionAdmin {
		part = "Admin"
	}
	return Namespace(component) + `\` + part + `\`
}

// Plan emits controllers for all sections, then layouts, then models, then
// views. Controllers and per-item layouts use the singular form; models,
// views and listing layouts the plural form. With the "none" table strategy
// no layouts and models are planned.
func (p *Planner) Plan(spec EntitySpec) []Request {
	singular := p.Inflector.Singularize(spec.Name)
	plural := p.Inflector.Pluralize(spec.Name)
	withData := spec.Table != TableNone

	var reqs []Request

	for _, s := range spec.Sections {
		reqs = append(reqs, Request{
			Kind:     KindController,
			Section:  s,
			Class:    NamespacePrefix(spec.Component, s) + `Controller\` + inflect.Ucfirst(singular),
			Resource: singular,
		})
	}

	if withData {
		for _, s := range spec.Sections {
			for _, lk := range layoutKinds[s] {
				resource := inflect.Ucfirst(singular)
				if lk == "default" {
					resource = inflect.Ucfirst(plural)
				}
				reqs = append(reqs, Request{
					Kind:          KindLayout,
					Section:       s,
					Resource:      resource,
					Layout:        "form." + lk,
					OutputSection: s,
				})
			}
		}

		for _, s := range spec.Sections {
			reqs = append(reqs, Request{
				Kind:     KindModel,
				Section:  s,
				Class:    NamespacePrefix(spec.Component, s) + `Model\` + inflect.Ucfirst(plural),
				Resource: plural,
			})
		}
	}

	for _, s := range spec.Sections {
		reqs = append(reqs, Request{
			Kind:     KindView,
			Section:  s,
			Class:    NamespacePrefix(spec.Component, s) + `View\` + inflect.Ucfirst(plural) + `\Html`,
			Resource: plural,
		})
	}

	return reqs
}

// GenerationFailed is returned when the gateway rejects a request. Requests
// emitted before it are left in place.
type GenerationFailed struct {
	Kind  Kind
	Class string
	Err   error
}

func (e *GenerationFailed) Error() string {
	return "failed to generate " + string(e.Kind) + " " + e.Class + ": " + e.Err.Error()
}

func (e *GenerationFailed) Unwrap() error { return e.Err }

// Observer is notified after each successful request.
type Observer func(Request)

// Execute submits reqs in order and stops at the first failure. The returned
// error is a GenerationFailed report wrapping a *GenerationFailed.
func Execute(ctx context.Context, gw Gateway, reqs []Request, done Observer) error {
	for _, r := range reqs {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch r.Kind {
		case KindLayout:
			err = gw.GenerateLayout(ctx, r.Layout, r.Resource, r.OutputSection)
		default:
			err = gw.GenerateClass(ctx, r.Kind, r.Class, r.Resource, r.Section)
		}
		if err != nil {
			gf := &GenerationFailed{Kind: r.Kind, Class: r.Name(), Err: err}
			return report.Wrap(report.KindGenerationFailed, gf,
				"An error occurred while creating the "+displayKind(r.Kind)+" "+r.Name())
		}
		if done != nil {
			done(r)
		}
	}
	return nil
}

func displayKind(k Kind) string {
	switch k {
	case KindController:
		return "Controller class"
	case KindModel:
		return "Model class"
	case KindView:
		return "View class"
	default:
		return "Layout"
	}
}
