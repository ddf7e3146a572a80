package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nightconcept/jbuilder-go/internal/core/fsutil"
	"github.com/nightconcept/jbuilder-go/internal/core/hasher"
	"github.com/nightconcept/jbuilder-go/internal/core/lockfile"
	"github.com/nightconcept/jbuilder-go/internal/core/report"
)

// StepError reports the step a target failed in.
type StepError struct {
	Target string
	Step   StepKind
	Path   string
	Err    error
}

func (e *StepError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s step failed for %s: %v", e.Target, e.Step, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s step failed: %v", e.Target, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Orchestrator runs install targets one after the other.
type Orchestrator struct {
	// Root is the project root; lockfile paths are recorded relative to it.
	Root string
	// CacheDir keeps downloaded archives between runs.
	CacheDir string
	// Lock records completed targets and is consulted for download reuse.
	Lock *lockfile.Lockfile
	// Force ignores previously downloaded archives.
	Force    bool
	Decider  Decider
	Reporter Reporter
	// OnTransition, when set, observes every state change.
	OnTransition func(target string, from, to State)
	// CopyDir places an unpacked archive; nil selects fsutil.CopyDir.
	CopyDir func(src, dst string) error
}

// Run processes targets in order. A failed required target stops the
// sequence and is returned as an InstallFailed report; other failures are
// only warned about.
func (o *Orchestrator) Run(ctx context.Context, targets []Target) ([]Result, error) {
	results := make([]Result, 0, len(targets))
	for _, t := range targets {
		res := o.runTarget(ctx, t)
		results = append(results, res)

		if res.State == Failed && t.Required {
			return results, report.Wrap(report.KindInstallFailed, res.Err,
				fmt.Sprintf("%s installation failed", t.Label))
		}
	}
	return results, nil
}

type machine struct {
	o      *Orchestrator
	t      Target
	res    Result
	tmpDir string

	// cleared is set once the previous instance of the target was deleted.
	cleared bool
}

func (m *machine) to(s State) {
	from := m.res.State
	m.res.State = s
	if m.o.OnTransition != nil {
		m.o.OnTransition(m.t.Name, from, s)
	}
}

func (m *machine) fail(step StepKind, path string, err error) Result {
	m.res.Err = &StepError{Target: m.t.Name, Step: step, Path: path, Err: err}
	m.o.Reporter.Warning(fmt.Sprintf("Action cancelled, the %s step of %s failed: %v", step, m.t.Label, m.res.Err))
	if m.cleared && m.o.Lock != nil {
		m.o.Lock.RemoveTarget(m.t.Name)
	}
	m.to(Failed)
	return m.res
}

func (o *Orchestrator) runTarget(ctx context.Context, t Target) Result {
	m := &machine{o: o, t: t, res: Result{Target: t.Name, State: NotStarted}}
	o.Reporter.Section(t.Label)
	defer m.cleanup()

	if t.Probe != "" && fsutil.Exists(t.Probe) {
		choice, err := o.Decider.Choose(t.ProbeQuestion, ChoiceUse)
		if err != nil {
			return m.fail(StepCleanup, t.Clear, err)
		}
		if choice == ChoiceUse {
			o.Reporter.Note(fmt.Sprintf("Skipped %s installation", t.Label))
			m.to(Skipped)
			return m.res
		}
		o.Reporter.Note(fmt.Sprintf("Deleting current %s instance", t.Label))
		m.cleared = true
		if err := fsutil.RemoveContents(t.Clear); err != nil {
			return m.fail(StepCleanup, t.Clear, err)
		}
		o.Reporter.Success("Deleting completed")
	}

	m.to(Downloading)
	if err := ctx.Err(); err != nil {
		return m.fail(StepDownload, "", err)
	}
	art, err := o.download(ctx, t)
	if err != nil {
		return m.fail(StepDownload, "", err)
	}
	m.res.Artifact = art

	if art != nil {
		m.to(Unpacking)
		if err := ctx.Err(); err != nil {
			return m.fail(StepUnpack, art.Archive, err)
		}
		dir, err := os.MkdirTemp("", "jbuilder-"+t.Name+"-*")
		if err != nil {
			return m.fail(StepUnpack, art.Archive, err)
		}
		m.tmpDir = dir
		if err := Unzip(art.Archive, dir); err != nil {
			return m.fail(StepUnpack, art.Archive, err)
		}
	}

	m.to(Placing)
	if m.tmpDir != "" && t.Dest != "" {
		if err := ctx.Err(); err != nil {
			return m.fail(StepPlace, t.Dest, err)
		}
		cleared, err := o.place(t, m.tmpDir)
		m.cleared = m.cleared || cleared
		if err != nil {
			return m.fail(StepPlace, t.Dest, err)
		}
	}

	m.to(Linking)
	for _, l := range t.Links {
		if err := createLink(l); err != nil {
			msg := fmt.Sprintf("Could not link %s to %s: %v", l.Target, l.Source, err)
			m.res.Warnings = append(m.res.Warnings, msg)
			o.Reporter.Warning(msg)
		}
	}

	m.to(Registering)
	if err := ctx.Err(); err != nil {
		return m.fail(StepRegister, "", err)
	}
	if err := t.Backend.Register(ctx); err != nil {
		return m.fail(StepRegister, "", err)
	}

	m.to(Completed)
	o.record(t, art)
	o.Reporter.Success(fmt.Sprintf("%s installation completed", t.Label))
	return m.res
}

func (m *machine) cleanup() {
	if m.tmpDir == "" {
		return
	}
	if err := fsutil.RemoveAll(m.tmpDir); err != nil {
		m.o.Reporter.Note(fmt.Sprintf("The temporary directory %s could not be cleaned", m.tmpDir))
	}
}

func (o *Orchestrator) download(ctx context.Context, t Target) (*Artifact, error) {
	if o.Lock != nil && !o.Force {
		entry, ok := o.Lock.Target(t.Name)
		if ok && entry.Archive != "" && hasher.Matches(entry.Archive, entry.Hash) {
			reuse, err := o.Decider.Confirm(
				fmt.Sprintf("%s %s was already downloaded to %s, reuse it?", t.Label, entry.Version, entry.Archive), true)
			if err != nil {
				return nil, err
			}
			if reuse {
				o.Reporter.Note(fmt.Sprintf("Reusing %s", entry.Archive))
				return &Artifact{Version: entry.Version, Source: entry.Source, Archive: entry.Archive, Hash: entry.Hash}, nil
			}
		}
	}

	art, err := t.Backend.Download(ctx, o.CacheDir)
	if err != nil || art == nil {
		return art, err
	}
	hash, err := hasher.HashFile(art.Archive)
	if err != nil {
		return nil, err
	}
	art.Hash = hash
	if art.Version != "" {
		o.Reporter.Note(fmt.Sprintf("Version: %s", art.Version))
	}
	return art, nil
}

// place copies the unpacked archive into t.Dest. cleared reports whether a
// previous content of t.Dest was removed.
func (o *Orchestrator) place(t Target, unpacked string) (cleared bool, err error) {
	if !fsutil.IsEmptyDir(t.Dest) {
		question := t.PlaceQuestion
		if question == "" {
			question = fmt.Sprintf("%s already exists, use it?", t.Dest)
		}
		def := t.PlaceDefault
		if def == "" {
			def = ChoiceDelete
		}
		choice, err := o.Decider.Choose(question, def)
		if err != nil {
			return false, err
		}
		if choice == ChoiceUse {
			o.Reporter.Note(fmt.Sprintf("Using the existing %s", t.Dest))
			return false, nil
		}
		cleared = true
		if err := fsutil.RemoveAll(t.Dest); err != nil {
			return cleared, err
		}
	}

	if err := os.MkdirAll(t.Dest, 0o755); err != nil {
		return cleared, err
	}
	copyDir := o.CopyDir
	if copyDir == nil {
		copyDir = fsutil.CopyDir
	}
	return cleared, copyDir(unpacked, t.Dest)
}

// createLink points l.Target at l.Source, replacing a previous link.
func createLink(l Link) error {
	if err := os.MkdirAll(filepath.Dir(l.Target), 0o755); err != nil {
		return err
	}
	if info, err := os.Lstat(l.Target); err == nil {
		if info.Mode()&os.ModeSymlink == 0 {
			return errors.New("destination exists and is not a link")
		}
		if err := os.Remove(l.Target); err != nil {
			return err
		}
	}
	return os.Symlink(l.Source, l.Target)
}

func (o *Orchestrator) record(t Target, art *Artifact) {
	if o.Lock == nil {
		return
	}
	path := t.Dest
	if path == "" && len(t.Links) > 0 {
		path = t.Links[0].Source
	}
	if rel, err := filepath.Rel(o.Root, path); err == nil && path != "" {
		path = filepath.ToSlash(rel)
	}

	entry := lockfile.TargetEntry{Path: path}
	if art != nil {
		entry.Version = art.Version
		entry.Source = art.Source
		entry.Hash = art.Hash
		entry.Archive = art.Archive
	}
	o.Lock.AddOrUpdateTarget(t.Name, entry)
}

// Preset answers every Choose with Choice and defers the rest to Next. An
// empty Choice defers everything.
type Preset struct {
	Choice Choice
	Next   Decider
}

func (p Preset) Choose(question string, def Choice) (Choice, error) {
	if p.Choice != "" {
		return p.Choice, nil
	}
	return p.Next.Choose(question, def)
}

func (p Preset) Confirm(question string, def bool) (bool, error) {
	return p.Next.Confirm(question, def)
}
