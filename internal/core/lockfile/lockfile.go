// Package lockfile reads and writes .jbuilder-lock.toml, the record of the
// install targets that completed successfully.
package lockfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/nightconcept/jbuilder-go/internal/core/fsutil"
)

const LockfileName = ".jbuilder-lock.toml"
const APIVersion = "1"

// TargetEntry represents a single install target in the lockfile.
// Example:
// [targets.joomla]
//
//	version = "3.10.12"
//	source = "github:joomla/joomla-cms@~3.10"
//	path = "demo/"
//	hash = "sha256:<hash of the archive>"
//	archive = "/tmp/jbuilder/joomla-3.10.12.zip"
type TargetEntry struct {
	Version string `toml:"version"`
	Source  string `toml:"source"`
	Path    string `toml:"path"`
	Hash    string `toml:"hash"`
	Archive string `toml:"archive,omitempty"`
}

// Lockfile represents the structure of the .jbuilder-lock.toml file.
type Lockfile struct {
	ApiVersion string                 `toml:"api_version"`
	Targets    map[string]TargetEntry `toml:"targets"`
}

// New creates a new Lockfile instance with default values.
func New() *Lockfile {
	return &Lockfile{
		ApiVersion: APIVersion,
		Targets:    make(map[string]TargetEntry),
	}
}

// Path returns the lockfile location inside a project root.
func Path(projectRoot string) string {
	return filepath.Join(projectRoot, LockfileName)
}

// Load loads the lockfile from the given project root path.
// If the lockfile doesn't exist, it returns a new Lockfile instance.
func Load(projectRoot string) (*Lockfile, error) {
	lockfilePath := Path(projectRoot)
	lf := New()

	if _, err := os.Stat(lockfilePath); os.IsNotExist(err) {
		return lf, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat lockfile %s: %w", lockfilePath, err)
	}

	if _, err := toml.DecodeFile(lockfilePath, lf); err != nil {
		return nil, fmt.Errorf("failed to decode lockfile %s: %w", lockfilePath, err)
	}
	if lf.ApiVersion == "" {
		lf.ApiVersion = APIVersion
	}
	if lf.Targets == nil {
		lf.Targets = make(map[string]TargetEntry)
	}
	return lf, nil
}

// Save writes the lockfile to the given project root path atomically.
func Save(projectRoot string, lf *Lockfile) error {
	lockfilePath := Path(projectRoot)

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(lf); err != nil {
		return fmt.Errorf("failed to encode lockfile %s: %w", lockfilePath, err)
	}
	if err := fsutil.WriteAtomic(lockfilePath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write lockfile %s: %w", lockfilePath, err)
	}
	return nil
}

// AddOrUpdateTarget adds or updates a target entry in the lockfile.
func (lf *Lockfile) AddOrUpdateTarget(name string, entry TargetEntry) {
	if lf.Targets == nil {
		lf.Targets = make(map[string]TargetEntry)
	}
	lf.Targets[name] = entry
}

// Target returns the entry recorded for name.
func (lf *Lockfile) Target(name string) (TargetEntry, bool) {
	entry, ok := lf.Targets[name]
	return entry, ok
}

// RemoveTarget deletes the entry of name, if any.
func (lf *Lockfile) RemoveTarget(name string) {
	delete(lf.Targets, name)
}

// Names returns the recorded target names in sorted order.
func (lf *Lockfile) Names() []string {
	names := make([]string, 0, len(lf.Targets))
	for name := range lf.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
