package scaffold

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightconcept/jbuilder-go/internal/core/inflect"
	"github.com/nightconcept/jbuilder-go/internal/core/manifest"
	"github.com/nightconcept/jbuilder-go/internal/core/report"
)

var todoInflector = inflect.Static{
	Singular: map[string]string{"todo": "todo", "todos": "todo"},
	Plural:   map[string]string{"todo": "todos", "todos": "todos"},
}

// fakeGateway records requests and fails on the configured class or layout.
type fakeGateway struct {
	calls   []string
	failOn  string
	tables  map[string]bool
	created []manifest.TableDescription
}

func (f *fakeGateway) GenerateClass(_ context.Context, kind Kind, class, resource string, section Section) error {
	f.calls = append(f.calls, string(kind)+":"+string(section)+":"+class+":"+resource)
	if class == f.failOn {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeGateway) GenerateLayout(_ context.Context, layout, resource string, output Section) error {
	f.calls = append(f.calls, "layout:"+string(output)+":"+layout+":"+resource)
	if layout+":"+resource == f.failOn {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeGateway) TableExists(_ context.Context, table string) (bool, error) {
	return f.tables[table], nil
}

func (f *fakeGateway) CreateTable(_ context.Context, table manifest.TableDescription) error {
	f.created = append(f.created, table)
	return nil
}

func kinds(reqs []Request) []Kind {
	out := make([]Kind, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Kind)
	}
	return out
}

func TestPlan_BothSections(t *testing.T) {
	reqs := NewPlanner(todoInflector).Plan(EntitySpec{
		Component: "todo",
		Name:      "todo",
		Sections:  []Section{SectionAdmin, SectionSite},
		Table:     TableDefault,
	})

	assert.Equal(t, []Kind{
		KindController, KindController,
		KindLayout, KindLayout, KindLayout, KindLayout,
		KindModel, KindModel,
		KindView, KindView,
	}, kinds(reqs))

	assert.Equal(t, `Todo\Admin\Controller\Todo`, reqs[0].Class)
	assert.Equal(t, `Todo\Site\Controller\Todo`, reqs[1].Class)
	assert.Equal(t, "todo", reqs[0].Resource)

	assert.Equal(t, Request{Kind: KindLayout, Section: SectionAdmin, Resource: "Todos", Layout: "form.default", OutputSection: SectionAdmin}, reqs[2])
	assert.Equal(t, Request{Kind: KindLayout, Section: SectionAdmin, Resource: "Todo", Layout: "form.form", OutputSection: SectionAdmin}, reqs[3])
	assert.Equal(t, Request{Kind: KindLayout, Section: SectionSite, Resource: "Todos", Layout: "form.default", OutputSection: SectionSite}, reqs[4])
	assert.Equal(t, Request{Kind: KindLayout, Section: SectionSite, Resource: "Todo", Layout: "form.item", OutputSection: SectionSite}, reqs[5])

	assert.Equal(t, `Todo\Admin\Model\Todos`, reqs[6].Class)
	assert.Equal(t, "todos", reqs[6].Resource)
	assert.Equal(t, `Todo\Site\View\Todos\Html`, reqs[9].Class)
}

func TestPlan_SingleSection(t *testing.T) {
	reqs := NewPlanner(todoInflector).Plan(EntitySpec{
		Component: "todo",
		Name:      "todos",
		Sections:  []Section{SectionSite},
		Table:     TableDefault,
	})

	assert.Equal(t, []Kind{KindController, KindLayout, KindLayout, KindModel, KindView}, kinds(reqs))
	for _, r := range reqs {
		assert.Equal(t, SectionSite, r.Section)
	}
}

func TestPlan_NoTableSkipsLayoutsAndModels(t *testing.T) {
	reqs := NewPlanner(todoInflector).Plan(EntitySpec{
		Component: "todo",
		Name:      "todos",
		Sections:  []Section{SectionAdmin, SectionSite},
		Table:     TableNone,
	})

	assert.Equal(t, []Kind{KindController, KindController, KindView, KindView}, kinds(reqs))
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, "Todo", Namespace("todo"))
	assert.Equal(t, "TodoList", Namespace("todo_list"))
	assert.Equal(t, `TodoList\Admin\`, NamespacePrefix("todo_list", SectionAdmin))
	assert.Equal(t, `Todo\Site\`, NamespacePrefix("todo", SectionSite))
}

func TestSections(t *testing.T) {
	s, err := Sections(false, false)
	require.NoError(t, err)
	assert.Equal(t, []Section{SectionAdmin, SectionSite}, s)

	s, err = Sections(true, false)
	require.NoError(t, err)
	assert.Equal(t, []Section{SectionSite}, s)

	s, err = Sections(false, true)
	require.NoError(t, err)
	assert.Equal(t, []Section{SectionAdmin}, s)

	_, err = Sections(true, true)
	assert.True(t, errors.Is(err, report.ErrInvalidInput))
}

func TestParseTableStrategy(t *testing.T) {
	ts, err := ParseTableStrategy("builder")
	require.NoError(t, err)
	assert.Equal(t, TableBuilder, ts)

	_, err = ParseTableStrategy("sql")
	assert.True(t, errors.Is(err, report.ErrInvalidInput))
}

func TestExecute_AllSucceed(t *testing.T) {
	gw := &fakeGateway{}
	reqs := NewPlanner(todoInflector).Plan(EntitySpec{Component: "todo", Name: "todos", Sections: []Section{SectionAdmin, SectionSite}, Table: TableDefault})

	var done []Request
	err := Execute(context.Background(), gw, reqs, func(r Request) { done = append(done, r) })
	require.NoError(t, err)
	assert.Len(t, gw.calls, 10)
	assert.Equal(t, reqs, done)
	assert.Equal(t, "layout:admin:form.default:Todos", gw.calls[2])
}

func TestExecute_FailFast(t *testing.T) {
	gw := &fakeGateway{failOn: `Todo\Admin\Model\Todos`}
	reqs := NewPlanner(todoInflector).Plan(EntitySpec{Component: "todo", Name: "todos", Sections: []Section{SectionAdmin, SectionSite}, Table: TableDefault})

	err := Execute(context.Background(), gw, reqs, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, report.ErrGenerationFailed))

	var gf *GenerationFailed
	require.True(t, errors.As(err, &gf))
	assert.Equal(t, KindModel, gf.Kind)
	assert.Equal(t, `Todo\Admin\Model\Todos`, gf.Class)

	// controllers (2) + layouts (4) + the failing model; nothing after it
	assert.Len(t, gw.calls, 7)
}

func TestExecute_CanceledContext(t *testing.T) {
	gw := &fakeGateway{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Execute(ctx, gw, []Request{{Kind: KindController, Class: "X"}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, gw.calls)
}

func TestEnsureTable(t *testing.T) {
	table := manifest.DefaultTable("todo", "todo")

	gw := &fakeGateway{tables: map[string]bool{}}
	created, err := EnsureTable(context.Background(), gw, table)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, gw.created, 1)

	gw = &fakeGateway{tables: map[string]bool{"#__todo_todo": true}}
	created, err = EnsureTable(context.Background(), gw, table)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, gw.created)
}
