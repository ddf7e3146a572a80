package install

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightconcept/jbuilder-go/internal/core/hasher"
	"github.com/nightconcept/jbuilder-go/internal/core/lockfile"
	"github.com/nightconcept/jbuilder-go/internal/core/report"
)

type recordingReporter struct {
	notes, warnings, successes []string
}

func (r *recordingReporter) Section(string) {}

func (r *recordingReporter) Note(m string) { r.notes = append(r.notes, m) }

func (r *recordingReporter) Warning(m string) { r.warnings = append(r.warnings, m) }

func (r *recordingReporter) Success(m string) { r.successes = append(r.successes, m) }

type scriptedDecider struct {
	choices  []Choice
	confirms []bool
	asked    []string
}

func (d *scriptedDecider) Choose(q string, def Choice) (Choice, error) {
	d.asked = append(d.asked, q)
	if len(d.choices) == 0 {
		return def, nil
	}
	c := d.choices[0]
	d.choices = d.choices[1:]
	return c, nil
}

func (d *scriptedDecider) Confirm(q string, def bool) (bool, error) {
	d.asked = append(d.asked, q)
	if len(d.confirms) == 0 {
		return def, nil
	}
	c := d.confirms[0]
	d.confirms = d.confirms[1:]
	return c, nil
}

type fakeBackend struct {
	files       map[string]string
	version     string
	downloadErr error
	registerErr error
	downloads   int
	registers   int
}

func (b *fakeBackend) Download(_ context.Context, cacheDir string) (*Artifact, error) {
	b.downloads++
	if b.downloadErr != nil {
		return nil, b.downloadErr
	}
	if b.files == nil {
		return nil, nil
	}
	archive := filepath.Join(cacheDir, fmt.Sprintf("release-%d.zip", b.downloads))
	writeZip(archive, b.files)
	return &Artifact{Version: b.version, Source: "github:owner/repo@*", Archive: archive}, nil
}

func (b *fakeBackend) Register(context.Context) error {
	b.registers++
	return b.registerErr
}

func writeZip(path string, files map[string]string) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

type fixture struct {
	root     string
	demo     string
	reporter *recordingReporter
	decider  *scriptedDecider
	orch     *Orchestrator
	states   []State
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		root:     root,
		demo:     filepath.Join(root, "demo"),
		reporter: &recordingReporter{},
		decider:  &scriptedDecider{},
	}
	require.NoError(t, os.MkdirAll(f.demo, 0o755))
	f.orch = &Orchestrator{
		Root:     root,
		CacheDir: t.TempDir(),
		Lock:     lockfile.New(),
		Decider:  f.decider,
		Reporter: f.reporter,
		OnTransition: func(_ string, _, to State) {
			f.states = append(f.states, to)
		},
	}
	return f
}

func (f *fixture) joomla(b Backend) Target {
	return Target{
		Name:          "joomla",
		Label:         "Joomla",
		Required:      true,
		Probe:         filepath.Join(f.demo, "includes", "defines.php"),
		ProbeQuestion: "Joomla already exists, do you want to use it?",
		Clear:         f.demo,
		Dest:          f.demo,
		Backend:       b,
	}
}

func TestRun_CompletesAllStepsInOrder(t *testing.T) {
	f := newFixture(t)
	b := &fakeBackend{version: "3.10.12", files: map[string]string{"includes/defines.php": "<?php", "index.php": "<?php"}}

	results, err := f.orch.Run(context.Background(), []Target{f.joomla(b)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, Completed, results[0].State)
	assert.Equal(t, []State{Downloading, Unpacking, Placing, Linking, Registering, Completed}, f.states)
	assert.FileExists(t, filepath.Join(f.demo, "includes", "defines.php"))
	assert.Equal(t, 1, b.registers)

	entry, ok := f.orch.Lock.Target("joomla")
	require.True(t, ok)
	assert.Equal(t, "3.10.12", entry.Version)
	assert.Equal(t, "demo", entry.Path)
	assert.True(t, hasher.Matches(entry.Archive, entry.Hash))
}

func TestRun_ProbeUseSkipsTarget(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.demo, "includes", "defines.php"), "<?php")
	f.decider.choices = []Choice{ChoiceUse}
	b := &fakeBackend{files: map[string]string{"index.php": "<?php"}}

	results, err := f.orch.Run(context.Background(), []Target{f.joomla(b)})
	require.NoError(t, err)
	assert.Equal(t, Skipped, results[0].State)
	assert.Equal(t, []State{Skipped}, f.states)
	assert.Zero(t, b.downloads)
	assert.Zero(t, b.registers)
	assert.Contains(t, f.reporter.notes, "Skipped Joomla installation")
}

func TestRun_ProbeDeleteClearsBeforeDownload(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.demo, "includes", "defines.php"), "old")
	writeFile(t, filepath.Join(f.demo, "stale", "deep", "file.txt"), "old")
	require.NoError(t, os.Symlink(f.root, filepath.Join(f.demo, "root-link")))
	f.decider.choices = []Choice{ChoiceDelete}
	b := &fakeBackend{version: "3.10.12", files: map[string]string{"includes/defines.php": "new"}}

	results, err := f.orch.Run(context.Background(), []Target{f.joomla(b)})
	require.NoError(t, err)
	assert.Equal(t, Completed, results[0].State)
	assert.NoDirExists(t, filepath.Join(f.demo, "stale"))
	assert.NoFileExists(t, filepath.Join(f.demo, "root-link"))
	assert.DirExists(t, f.root, "link target must not be followed")

	data, err := os.ReadFile(filepath.Join(f.demo, "includes", "defines.php"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestRun_DeleteAndReplaceCopyFailure(t *testing.T) {
	f := newFixture(t)
	dest := filepath.Join(f.root, "src", "libraries", "fof30")
	writeFile(t, filepath.Join(dest, "fof", "old.php"), "old")
	f.decider.choices = []Choice{ChoiceDelete}

	var destSeenEmpty bool
	f.orch.CopyDir = func(_, dst string) error {
		entries, err := os.ReadDir(dst)
		destSeenEmpty = err == nil && len(entries) == 0
		return errors.New("disk full")
	}

	b := &fakeBackend{version: "3.7.4", files: map[string]string{"fof/include.php": "<?php"}}
	target := Target{Name: "fof", Label: "FOF", Dest: dest, PlaceDefault: ChoiceDelete, Backend: b}

	results, err := f.orch.Run(context.Background(), []Target{target})
	require.NoError(t, err, "a best-effort target does not stop the run")
	assert.Equal(t, Failed, results[0].State)
	assert.True(t, destSeenEmpty, "previous directory must be removed before the copy")
	assert.NoFileExists(t, filepath.Join(dest, "fof", "old.php"))
	assert.Zero(t, b.registers)

	var stepErr *StepError
	require.ErrorAs(t, results[0].Err, &stepErr)
	assert.Equal(t, StepPlace, stepErr.Step)
	require.Len(t, f.reporter.warnings, 1)
	assert.Contains(t, f.reporter.warnings[0], dest)
	assert.Equal(t, Failed, f.states[len(f.states)-1])
}

func TestRun_FailureAfterDeleteForgetsRecordedTarget(t *testing.T) {
	f := newFixture(t)
	dest := filepath.Join(f.root, "src", "libraries", "fof30")
	writeFile(t, filepath.Join(dest, "fof", "old.php"), "old")
	f.orch.Lock.AddOrUpdateTarget("fof", lockfile.TargetEntry{Version: "3.7.3", Path: "src/libraries/fof30"})
	f.decider.choices = []Choice{ChoiceDelete}
	f.orch.CopyDir = func(_, _ string) error { return errors.New("disk full") }

	b := &fakeBackend{version: "3.7.4", files: map[string]string{"fof/include.php": "<?php"}}
	target := Target{Name: "fof", Label: "FOF", Dest: dest, PlaceDefault: ChoiceDelete, Backend: b}

	results, err := f.orch.Run(context.Background(), []Target{target})
	require.NoError(t, err)
	assert.Equal(t, Failed, results[0].State)
	_, ok := f.orch.Lock.Target("fof")
	assert.False(t, ok, "the deleted instance is no longer recorded")
}

func TestRun_FailureBeforeDeleteKeepsRecordedTarget(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.demo, "includes", "defines.php"), "old")
	f.orch.Lock.AddOrUpdateTarget("joomla", lockfile.TargetEntry{Version: "3.10.11", Path: "demo"})
	f.decider.choices = []Choice{ChoiceUse}
	b := &fakeBackend{downloadErr: errors.New("404")}

	target := f.joomla(b)
	target.Probe = ""
	target.PlaceDefault = ChoiceUse

	results, err := f.orch.Run(context.Background(), []Target{target})
	require.Error(t, err)
	assert.Equal(t, Failed, results[0].State)
	entry, ok := f.orch.Lock.Target("joomla")
	require.True(t, ok)
	assert.Equal(t, "3.10.11", entry.Version)
}

func TestRun_PlaceUseKeepsExistingDirectory(t *testing.T) {
	f := newFixture(t)
	dest := filepath.Join(f.root, "src", "libraries", "fof30")
	writeFile(t, filepath.Join(dest, "fof", "custom.php"), "mine")
	f.decider.choices = []Choice{ChoiceUse}

	b := &fakeBackend{version: "3.7.4", files: map[string]string{"fof/include.php": "<?php"}}
	target := Target{Name: "fof", Label: "FOF", Dest: dest, PlaceDefault: ChoiceDelete, Backend: b}

	results, err := f.orch.Run(context.Background(), []Target{target})
	require.NoError(t, err)
	assert.Equal(t, Completed, results[0].State)
	assert.FileExists(t, filepath.Join(dest, "fof", "custom.php"))
	assert.NoFileExists(t, filepath.Join(dest, "fof", "include.php"))
}

func TestRun_LinkFailureIsOnlyAWarning(t *testing.T) {
	f := newFixture(t)
	dest := filepath.Join(f.root, "src", "libraries", "fof30")
	occupied := filepath.Join(f.demo, "libraries", "fof30")
	writeFile(t, occupied, "not a link")
	okLink := filepath.Join(f.demo, "administrator", "manifests", "libraries", "lib_fof30.xml")

	b := &fakeBackend{version: "3.7.4", files: map[string]string{"fof/lib_fof30.xml": "<extension/>"}}
	target := Target{
		Name: "fof", Label: "FOF", Dest: dest, Backend: b,
		Links: []Link{
			{Source: filepath.Join(dest, "fof"), Target: occupied},
			{Source: filepath.Join(dest, "fof", "lib_fof30.xml"), Target: okLink},
		},
	}

	results, err := f.orch.Run(context.Background(), []Target{target})
	require.NoError(t, err)
	assert.Equal(t, Completed, results[0].State)
	assert.Equal(t, 1, b.registers)
	require.Len(t, results[0].Warnings, 1)
	assert.Contains(t, results[0].Warnings[0], occupied)

	link, err := os.Readlink(okLink)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "fof", "lib_fof30.xml"), link)
}

func TestRun_RequiredFailureStopsSequence(t *testing.T) {
	f := newFixture(t)
	joomla := &fakeBackend{version: "3.10.12", files: map[string]string{"index.php": "<?php"}, registerErr: errors.New("console exited with 1")}
	pkg := &fakeBackend{}

	results, err := f.orch.Run(context.Background(), []Target{
		f.joomla(joomla),
		{Name: "package", Label: "Package", Backend: pkg},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, report.ErrInstallFailed)
	require.Len(t, results, 1)
	assert.Equal(t, Failed, results[0].State)
	assert.Zero(t, pkg.registers)
	_, ok := f.orch.Lock.Target("joomla")
	assert.False(t, ok, "failed targets are not recorded")
}

func TestRun_BestEffortFailureContinues(t *testing.T) {
	f := newFixture(t)
	fof := &fakeBackend{downloadErr: errors.New("404")}
	pkg := &fakeBackend{}
	manifest := filepath.Join(f.root, "src", "pkg_demo.xml")
	writeFile(t, manifest, "<extension/>")

	results, err := f.orch.Run(context.Background(), []Target{
		{Name: "fof", Label: "FOF", Dest: filepath.Join(f.root, "src", "libraries", "fof30"), Backend: fof},
		{Name: "package", Label: "Package", Backend: pkg, Links: []Link{
			{Source: manifest, Target: filepath.Join(f.demo, "administrator", "manifests", "packages", "pkg_demo.xml")},
		}},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, Failed, results[0].State)
	assert.Equal(t, Completed, results[1].State)
	assert.Equal(t, 1, pkg.registers)

	entry, ok := f.orch.Lock.Target("package")
	require.True(t, ok)
	assert.Equal(t, "src/pkg_demo.xml", entry.Path)
}

func TestRun_ReusesRecordedArchive(t *testing.T) {
	f := newFixture(t)
	archive := filepath.Join(f.orch.CacheDir, "joomla-3.10.12.zip")
	writeZip(archive, map[string]string{"index.php": "<?php"})
	hash, err := hasher.HashFile(archive)
	require.NoError(t, err)
	f.orch.Lock.AddOrUpdateTarget("joomla", lockfile.TargetEntry{Version: "3.10.12", Hash: hash, Archive: archive})
	f.decider.confirms = []bool{true}

	b := &fakeBackend{version: "3.10.13", files: map[string]string{"index.php": "<?php"}}
	results, err := f.orch.Run(context.Background(), []Target{f.joomla(b)})
	require.NoError(t, err)
	assert.Equal(t, Completed, results[0].State)
	assert.Zero(t, b.downloads)
	assert.Equal(t, "3.10.12", results[0].Artifact.Version)
	assert.FileExists(t, filepath.Join(f.demo, "index.php"))
}

func TestRun_ForceIgnoresRecordedArchive(t *testing.T) {
	f := newFixture(t)
	archive := filepath.Join(f.orch.CacheDir, "joomla-3.10.12.zip")
	writeZip(archive, map[string]string{"index.php": "<?php"})
	hash, err := hasher.HashFile(archive)
	require.NoError(t, err)
	f.orch.Lock.AddOrUpdateTarget("joomla", lockfile.TargetEntry{Version: "3.10.12", Hash: hash, Archive: archive})
	f.orch.Force = true

	b := &fakeBackend{version: "3.10.13", files: map[string]string{"index.php": "<?php"}}
	_, err = f.orch.Run(context.Background(), []Target{f.joomla(b)})
	require.NoError(t, err)
	assert.Equal(t, 1, b.downloads)
	assert.Empty(t, f.decider.asked)
}

func TestRun_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := &fakeBackend{files: map[string]string{"index.php": "<?php"}}

	results, err := f.orch.Run(ctx, []Target{f.joomla(b)})
	require.Error(t, err)
	assert.Equal(t, Failed, results[0].State)
	assert.Zero(t, b.downloads)
}

func TestPreset(t *testing.T) {
	next := &scriptedDecider{choices: []Choice{ChoiceUse}, confirms: []bool{false}}

	c, err := Preset{Choice: ChoiceDelete, Next: next}.Choose("q", ChoiceUse)
	require.NoError(t, err)
	assert.Equal(t, ChoiceDelete, c)

	c, err = Preset{Next: next}.Choose("q", ChoiceDelete)
	require.NoError(t, err)
	assert.Equal(t, ChoiceUse, c)

	ok, err := Preset{Choice: ChoiceUse, Next: next}.Confirm("q", true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "registering", Registering.String())
	assert.True(t, Skipped.Terminal())
	assert.False(t, Linking.Terminal())
	assert.Equal(t, "state(42)", State(42).String())
}

func TestUnzip_RejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.zip")
	writeZip(archive, map[string]string{"../escape.txt": "x"})

	require.Error(t, Unzip(archive, filepath.Join(dir, "out")))
	assert.NoFileExists(t, filepath.Join(dir, "escape.txt"))
}

func TestUnzip_SkipsResourceForks(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "fof.zip")
	writeZip(archive, map[string]string{
		"fof/include.php":   "<?php",
		"fof/._include.php": "fork",
		"__MACOSX/fof/x":    "fork",
	})

	out := filepath.Join(dir, "out")
	require.NoError(t, Unzip(archive, out))
	assert.FileExists(t, filepath.Join(out, "fof", "include.php"))
	assert.NoFileExists(t, filepath.Join(out, "fof", "._include.php"))
	assert.NoDirExists(t, filepath.Join(out, "__MACOSX"))
}
