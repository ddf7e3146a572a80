// Package report defines the classified errors returned by the jbuilder core
// packages. Each error carries a kind, a severity used by the display layer,
// and the list of messages shown to the operator.
package report

import (
	"errors"
	"strings"
)

// Severity tells the display layer how to present an error.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "error"
	}
}

// Kind classifies a failure.
type Kind string

const (
	KindInvalidPath          Kind = "invalid_path"
	KindAlreadyInitialized   Kind = "already_initialized"
	KindConfigCorrupt        Kind = "config_corrupt"
	KindNotInitialized       Kind = "not_initialized"
	KindInvalidEntityName    Kind = "invalid_entity_name"
	KindMissingRequiredInput Kind = "missing_required_input"
	KindInvalidInput         Kind = "invalid_input"
	KindGenerationFailed     Kind = "generation_failed"
	KindWriteError           Kind = "write_error"
	KindInstallFailed        Kind = "install_failed"
)

// Sentinels for errors.Is checks against a kind.
var (
	ErrInvalidPath          = &Error{Kind: KindInvalidPath}
	ErrAlreadyInitialized   = &Error{Kind: KindAlreadyInitialized}
	ErrConfigCorrupt        = &Error{Kind: KindConfigCorrupt}
	ErrNotInitialized       = &Error{Kind: KindNotInitialized}
	ErrInvalidEntityName    = &Error{Kind: KindInvalidEntityName}
	ErrMissingRequiredInput = &Error{Kind: KindMissingRequiredInput}
	ErrInvalidInput         = &Error{Kind: KindInvalidInput}
	ErrGenerationFailed     = &Error{Kind: KindGenerationFailed}
	ErrWriteError           = &Error{Kind: KindWriteError}
	ErrInstallFailed        = &Error{Kind: KindInstallFailed}
)

// Error is a classified failure. Messages are displayed one per line; Err is
// the underlying cause, if any.
type Error struct {
	Kind     Kind
	Severity Severity
	Messages []string
	Err      error
}

// New builds an error-severity report.
func New(kind Kind, messages ...string) *Error {
	return &Error{Kind: kind, Severity: SeverityError, Messages: messages}
}

// Warning builds a warning-severity report.
func Warning(kind Kind, messages ...string) *Error {
	return &Error{Kind: kind, Severity: SeverityWarning, Messages: messages}
}

// Wrap builds an error-severity report around cause.
func Wrap(kind Kind, cause error, messages ...string) *Error {
	return &Error{Kind: kind, Severity: SeverityError, Messages: messages, Err: cause}
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Messages)+1)
	parts = append(parts, e.Messages...)
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return string(e.Kind)
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any report with the same kind, so the sentinels above work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Lines returns the messages to display, falling back to the cause.
func (e *Error) Lines() []string {
	lines := append([]string(nil), e.Messages...)
	if e.Err != nil {
		lines = append(lines, e.Err.Error())
	}
	if len(lines) == 0 {
		lines = append(lines, string(e.Kind))
	}
	return lines
}

// As extracts a *Error from err.
func As(err error) (*Error, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
