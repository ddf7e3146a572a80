// Package console is the display layer of the jbuilder commands. Failures
// carrying a report severity are printed as notes, warnings or errors.
package console

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/nightconcept/jbuilder-go/internal/core/report"
)

var (
	titleColor   = color.New(color.FgMagenta, color.Bold)
	sectionColor = color.New(color.FgCyan, color.Bold)
	noteColor    = color.New(color.FgYellow)
	commentColor = color.New(color.FgHiBlack)
	warningColor = color.New(color.FgBlack, color.BgYellow)
	errorColor   = color.New(color.FgWhite, color.BgRed)
	successColor = color.New(color.FgBlack, color.BgGreen)
	headerColor  = color.New(color.FgGreen)
)

// Console writes styled messages. Errors and warnings go to Err.
type Console struct {
	Out     io.Writer
	Err     io.Writer
	Verbose bool
}

// New creates a console.
func New(out, errOut io.Writer, verbose bool) *Console {
	return &Console{Out: out, Err: errOut, Verbose: verbose}
}

func (c *Console) Title(title string) {
	_, _ = titleColor.Fprintln(c.Out, title)
	_, _ = titleColor.Fprintln(c.Out, strings.Repeat("=", len(title)))
	_, _ = fmt.Fprintln(c.Out)
}

func (c *Console) Section(title string) {
	_, _ = sectionColor.Fprintln(c.Out, title)
	_, _ = sectionColor.Fprintln(c.Out, strings.Repeat("-", len(title)))
	_, _ = fmt.Fprintln(c.Out)
}

func (c *Console) Note(msg string) {
	block(c.Out, noteColor, "NOTE", msg)
}

// Comment prints dimmed text without a label.
func (c *Console) Comment(msg string) {
	_, _ = commentColor.Fprintf(c.Out, " // %s\n", msg)
}

func (c *Console) Warning(msg string) {
	block(c.Err, warningColor, "WARNING", msg)
}

func (c *Console) Error(msg string) {
	block(c.Err, errorColor, "ERROR", msg)
}

func (c *Console) Success(msg string) {
	block(c.Out, successColor, "OK", msg)
}

// Debugf prints only in verbose mode.
func (c *Console) Debugf(format string, args ...any) {
	if !c.Verbose {
		return
	}
	_, _ = commentColor.Fprintf(c.Out, format+"\n", args...)
}

// Table prints rows in aligned columns below a coloured header.
func (c *Console) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, headerColor.Sprint(strings.Join(headers, "\t")))
	for _, row := range rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

// Report displays err according to its severity. Errors without a severity
// are shown as errors. Nothing is printed for a nil error.
func (c *Console) Report(err error) {
	if err == nil {
		return
	}
	var rep *report.Error
	if !errors.As(err, &rep) {
		c.Error(err.Error())
		return
	}

	msg := strings.Join(rep.Lines(), "\n")
	switch rep.Severity {
	case report.SeverityNote:
		c.Note(msg)
	case report.SeverityWarning:
		c.Warning(msg)
	default:
		c.Error(msg)
	}
}

// block prints a labelled message; continuation lines are indented under
// the first one.
func block(w io.Writer, style *color.Color, label, msg string) {
	prefix := fmt.Sprintf(" [%s] ", label)
	indent := strings.Repeat(" ", len(prefix))
	for i, line := range strings.Split(msg, "\n") {
		if i == 0 {
			_, _ = style.Fprintln(w, prefix+line)
			continue
		}
		_, _ = style.Fprintln(w, indent+line)
	}
}
