package generator

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var ErrTemplateNotFound = errors.New("template not found")

// commentFuncs keep free text from closing the comment it is rendered in.
var commentFuncs = template.FuncMap{
	"phpdoc":     phpDocText,
	"xmlcomment": xmlCommentText,
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// phpDocText breaks every "*/" so the text stays inside a /** */ block.
func phpDocText(s string) string {
	return strings.ReplaceAll(singleLine(s), "*/", "* /")
}

// xmlCommentText breaks the "--" sequences XML forbids in comments.
func xmlCommentText(s string) string {
	s = singleLine(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "- -")
	}
	return s
}

// Renderer executes text/template files with missingkey=error.
type Renderer struct {
	fsys fs.FS
}

// NewRenderer creates a Renderer over fsys. A nil fsys selects the embedded
// templates.
func NewRenderer(fsys fs.FS) *Renderer {
	if fsys == nil {
		sub, _ := fs.Sub(templatesFS, "templates")
		fsys = sub
	}
	return &Renderer{fsys: fsys}
}

// Render parses the named template and executes it with data.
func (r *Renderer) Render(name string, data any) ([]byte, error) {
	content, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	tmpl, err := template.New(name).Funcs(commentFuncs).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("template parse %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("template execute %q: %w", name, err)
	}
	return buf.Bytes(), nil
}
