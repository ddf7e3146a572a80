// Package prompt collects and validates operator input. Values supplied up
// front (flags) are validated without prompting; missing values are asked for
// with a default when the session is interactive.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/nightconcept/jbuilder-go/internal/core/report"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Prompter reads answers line by line from in and writes questions to out.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	eof         bool
}

// New creates a Prompter. When interactive is false no question is ever
// written and every answer comes from the supplied value or the default.
func New(in io.Reader, out io.Writer, interactive bool) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, interactive: interactive}
}

// Interactive reports whether the prompter asks questions.
func (p *Prompter) Interactive() bool { return p.interactive }

// readLine reads one trimmed answer. At end of input the remaining text is
// returned and every later call reports io.EOF.
func (p *Prompter) readLine() (string, error) {
	if p.eof {
		return "", io.EOF
	}
	line, err := p.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		p.eof = true
		if line == "" {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Ask asks question and returns the answer, or defaultValue when the answer
// is empty, input is exhausted or the session is not interactive.
func (p *Prompter) Ask(question, defaultValue string) (string, error) {
	if !p.interactive {
		return defaultValue, nil
	}
	if defaultValue != "" {
		_, _ = fmt.Fprintf(p.out, " %s (default: %s): ", question, defaultValue)
	} else {
		_, _ = fmt.Fprintf(p.out, " %s: ", question)
	}

	answer, err := p.readLine()
	if errors.Is(err, io.EOF) {
		_, _ = fmt.Fprintln(p.out)
		return defaultValue, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input for '%s': %w", question, err)
	}
	if answer == "" {
		return defaultValue, nil
	}
	return answer, nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(question string, defaultValue bool) (bool, error) {
	def := "no"
	if defaultValue {
		def = "yes"
	}
	for {
		answer, err := p.Ask(question+" (yes/no)", def)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if p.eof {
			return defaultValue, nil
		}
		p.invalid(fmt.Sprintf("Please answer yes or no, got %q", answer))
	}
}

// Choice asks the operator to pick one of choices, by value or by index.
// Invalid answers are asked again.
func (p *Prompter) Choice(question string, choices []string, defaultValue string) (string, error) {
	if !p.interactive {
		return defaultValue, nil
	}
	for {
		_, _ = fmt.Fprintf(p.out, " %s\n", question)
		for i, c := range choices {
			_, _ = fmt.Fprintf(p.out, "  [%d] %s\n", i, c)
		}
		answer, err := p.Ask(">", defaultValue)
		if err != nil {
			return "", err
		}
		for _, c := range choices {
			if answer == c {
				return c, nil
			}
		}
		if i, convErr := strconv.Atoi(answer); convErr == nil && i >= 0 && i < len(choices) {
			return choices[i], nil
		}
		if p.eof {
			return "", report.New(report.KindMissingRequiredInput, "No valid answer given", question)
		}
		p.invalid(fmt.Sprintf("Value %q is invalid", answer))
	}
}

func (p *Prompter) invalid(msg string) {
	_, _ = fmt.Fprintf(p.out, " [ERROR] %s\n", msg)
}

// Field describes one value to resolve.
type Field struct {
	Name     string
	Question string
	Default  string
	// Required fields with an empty Default cannot be resolved without input.
	Required bool
	Validate func(string) error
}

func (f Field) check(v string) error {
	if f.Required && v == "" {
		return fmt.Errorf("%s cannot be empty", f.Name)
	}
	if f.Validate != nil {
		return f.Validate(v)
	}
	return nil
}

// Resolve produces a validated value for f. A supplied value is validated
// without prompting. Otherwise the operator is asked, and asked again after
// an invalid answer. Without interaction the default is used; a required
// field without default is a MissingRequiredInput report.
func (p *Prompter) Resolve(f Field, supplied *string) (string, error) {
	if supplied != nil {
		if err := f.check(*supplied); err != nil {
			return "", report.Wrap(report.KindInvalidInput, err, fmt.Sprintf("Invalid value for %s", f.Name))
		}
		return *supplied, nil
	}

	if !p.interactive {
		if f.Required && f.Default == "" {
			return "", report.New(report.KindMissingRequiredInput,
				fmt.Sprintf("Missing required value for %s", f.Name))
		}
		if err := f.check(f.Default); err != nil {
			return "", report.Wrap(report.KindInvalidInput, err, fmt.Sprintf("Invalid default for %s", f.Name))
		}
		return f.Default, nil
	}

	for {
		answer, err := p.Ask(f.Question, f.Default)
		if err != nil {
			return "", err
		}
		checkErr := f.check(answer)
		if checkErr == nil {
			return answer, nil
		}
		if p.eof {
			return "", report.Wrap(report.KindMissingRequiredInput, checkErr,
				fmt.Sprintf("No valid value given for %s", f.Name))
		}
		p.invalid(checkErr.Error())
	}
}
