// Package install runs the per-target install state machine used by
// project:install: download, unpack, place, link and register, with
// operator decisions for existing installations.
package install

import (
	"context"
	"fmt"
)

// State is the position of a target in the install state machine.
type State int

const (
	NotStarted State = iota
	Downloading
	Unpacking
	Placing
	Linking
	Registering
	Completed
	Skipped
	Failed
)

var stateNames = map[State]string{
	NotStarted:  "not started",
	Downloading: "downloading",
	Unpacking:   "unpacking",
	Placing:     "placing",
	Linking:     "linking",
	Registering: "registering",
	Completed:   "completed",
	Skipped:     "skipped",
	Failed:      "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == Completed || s == Skipped || s == Failed
}

// StepKind names the unit of work performed in a state.
type StepKind string

const (
	StepDownload StepKind = "download"
	StepUnpack   StepKind = "unpack"
	StepPlace    StepKind = "place"
	StepLink     StepKind = "link"
	StepRegister StepKind = "register"
	StepCleanup  StepKind = "cleanup"
)

// Choice answers the "existing installation" questions.
type Choice string

const (
	ChoiceUse    Choice = "use"
	ChoiceDelete Choice = "delete"
)

// Choices lists the answers in prompt order.
var Choices = []string{string(ChoiceUse), string(ChoiceDelete)}

// Decider makes the operator decisions of the state machine.
type Decider interface {
	// Choose picks between reusing and deleting an existing resource.
	Choose(question string, def Choice) (Choice, error)
	// Confirm answers a yes/no question.
	Confirm(question string, def bool) (bool, error)
}

// Reporter receives the messages emitted while a target is processed.
type Reporter interface {
	Section(title string)
	Note(msg string)
	Warning(msg string)
	Success(msg string)
}

// Artifact is a downloaded release archive.
type Artifact struct {
	Version string
	Source  string
	Archive string
	Hash    string
}

// Backend is the target specific part of an install: where the release
// comes from and how the installed result is registered with the site.
type Backend interface {
	// Download stores the release archive under cacheDir. A nil artifact
	// means the target has nothing to download.
	Download(ctx context.Context, cacheDir string) (*Artifact, error)
	// Register hands the placed resource to the site installer.
	Register(ctx context.Context) error
}

// Link is a symbolic link created from a placed resource into the site.
type Link struct {
	Source string
	Target string
}

// Target describes one install target. Paths are absolute.
type Target struct {
	Name  string
	Label string
	// Required targets stop the sequence when they fail.
	Required bool

	// Probe is a marker of a prior installation. When it exists the operator
	// chooses between using it (Skipped) and deleting the contents of Clear.
	Probe         string
	ProbeQuestion string
	Clear         string

	// Dest receives the unpacked archive. An existing, non-empty Dest is
	// either used as is or deleted and replaced.
	Dest          string
	PlaceQuestion string
	PlaceDefault  Choice

	Links   []Link
	Backend Backend
}

// Result is the outcome of one target.
type Result struct {
	Target   string
	State    State
	Artifact *Artifact
	Warnings []string
	Err      error
}
