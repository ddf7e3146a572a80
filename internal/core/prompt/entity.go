package prompt

import (
	"strings"

	"github.com/nightconcept/jbuilder-go/internal/core/report"
)

// ValidateEntityName accepts only non-empty names made of A-Z, a-z and _.
func ValidateEntityName(name string) error {
	stripped := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' {
			return r
		}
		return -1
	}, name)

	if name == "" || stripped != name {
		return report.Warning(report.KindInvalidEntityName,
			"Action canceled, the name is not correct, you can use only A-Z and _ (e.g. todos)")
	}
	return nil
}

// EntityName resolves the entity name. A missing name is asked for once in an
// interactive session; an invalid name aborts instead of asking again.
func (p *Prompter) EntityName(supplied string) (string, error) {
	name := supplied
	if name == "" && p.interactive {
		answer, err := p.Ask("No entity name given, please enter the entity name (e.g. todos)", "")
		if err != nil {
			return "", err
		}
		name = answer
	}
	if name == "" && !p.interactive {
		return "", report.New(report.KindMissingRequiredInput, "Missing required value for the entity name (--name)")
	}
	if err := ValidateEntityName(name); err != nil {
		return "", err
	}
	return name, nil
}
