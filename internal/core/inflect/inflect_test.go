package inflect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnglish(t *testing.T) {
	var in Inflector = English{}

	assert.Equal(t, "todo", in.Singularize("todos"))
	assert.Equal(t, "todos", in.Pluralize("todo"))
	assert.Equal(t, "category", in.Singularize("categories"))
	assert.Equal(t, "Items", in.Pluralize("Item"))
	assert.Equal(t, "Todo", in.Singularize("Todos"))
	assert.Equal(t, "", in.Pluralize(""))
}

func TestUcfirst(t *testing.T) {
	assert.Equal(t, "Todos", Ucfirst("todos"))
	assert.Equal(t, "Todos", Ucfirst("Todos"))
	assert.Equal(t, "", Ucfirst(""))
}

func TestStatic(t *testing.T) {
	in := Static{
		Singular: map[string]string{"todo": "todo"},
		Plural:   map[string]string{"todo": "todos"},
	}

	assert.Equal(t, "todo", in.Singularize("todo"))
	assert.Equal(t, "todos", in.Pluralize("todo"))
	assert.Equal(t, "other", in.Pluralize("other"))
}
