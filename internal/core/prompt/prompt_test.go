package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightconcept/jbuilder-go/internal/core/report"
)

func newPrompter(input string, interactive bool) (*Prompter, *bytes.Buffer) {
	out := new(bytes.Buffer)
	return New(strings.NewReader(input), out, interactive), out
}

func TestAsk_DefaultOnEmptyAnswer(t *testing.T) {
	p, out := newPrompter("\nvalue\n", true)

	first, err := p.Ask("Package name", "myproject")
	require.NoError(t, err)
	assert.Equal(t, "myproject", first)

	second, err := p.Ask("Package name", "myproject")
	require.NoError(t, err)
	assert.Equal(t, "value", second)
	assert.Contains(t, out.String(), "Package name (default: myproject): ")
}

func TestAsk_EndOfInputUsesDefault(t *testing.T) {
	p, _ := newPrompter("", true)

	answer, err := p.Ask("Define the author?", "me")
	require.NoError(t, err)
	assert.Equal(t, "me", answer)
}

func TestAsk_NonInteractiveNeverWrites(t *testing.T) {
	p, out := newPrompter("ignored\n", false)

	answer, err := p.Ask("Define the author?", "me")
	require.NoError(t, err)
	assert.Equal(t, "me", answer)
	assert.Empty(t, out.String())
}

func TestConfirm(t *testing.T) {
	p, out := newPrompter("maybe\nn\n\n", true)

	ok, err := p.Confirm("Use the default structure?", true)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Please answer yes or no")

	ok, err = p.Confirm("Add the demo in .gitignore?", true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChoice(t *testing.T) {
	p, out := newPrompter("other\n1\n", true)

	answer, err := p.Choice("Joomla already exists, do you want to use it?", []string{"use", "delete"}, "use")
	require.NoError(t, err)
	assert.Equal(t, "delete", answer)
	assert.Contains(t, out.String(), `Value "other" is invalid`)
}

func TestChoice_NonInteractiveReturnsDefault(t *testing.T) {
	p, _ := newPrompter("", false)

	answer, err := p.Choice("What table generator do you want to use for this entity?", []string{"default", "builder", "none"}, "default")
	require.NoError(t, err)
	assert.Equal(t, "default", answer)
}

func TestResolve_SuppliedValueIsValidatedWithoutPrompt(t *testing.T) {
	p, out := newPrompter("", true)
	supplied := "demo"

	v, err := p.Resolve(Field{Name: "name", Question: "What is the package name?", Default: "myproject", Required: true}, &supplied)
	require.NoError(t, err)
	assert.Equal(t, "demo", v)
	assert.Empty(t, out.String())

	empty := ""
	_, err = p.Resolve(Field{Name: "name", Required: true}, &empty)
	assert.True(t, errors.Is(err, report.ErrInvalidInput))
}

func TestResolve_RepromptsOnInvalidAnswer(t *testing.T) {
	p, out := newPrompter("bad value\ngood\n", true)
	f := Field{
		Name:     "directory",
		Question: "Define the sources directory",
		Default:  "src",
		Validate: func(s string) error {
			if strings.Contains(s, " ") {
				return fmt.Errorf("%q must not contain spaces", s)
			}
			return nil
		},
	}

	v, err := p.Resolve(f, nil)
	require.NoError(t, err)
	assert.Equal(t, "good", v)
	assert.Equal(t, 2, strings.Count(out.String(), "Define the sources directory"))
}

func TestResolve_NonInteractive(t *testing.T) {
	p, _ := newPrompter("", false)

	v, err := p.Resolve(Field{Name: "author", Default: "me"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "me", v)

	_, err = p.Resolve(Field{Name: "name", Required: true}, nil)
	assert.True(t, errors.Is(err, report.ErrMissingRequiredInput))
}

func TestResolve_InteractiveInputExhausted(t *testing.T) {
	p, _ := newPrompter("", true)

	_, err := p.Resolve(Field{Name: "name", Question: "What is the package name?", Required: true}, nil)
	assert.True(t, errors.Is(err, report.ErrMissingRequiredInput))
}
