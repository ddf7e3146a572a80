package initcmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nightconcept/jbuilder-go/internal/cli/console"
	"github.com/nightconcept/jbuilder-go/internal/core/config"
	"github.com/nightconcept/jbuilder-go/internal/core/fsutil"
	"github.com/nightconcept/jbuilder-go/internal/core/manifest"
	"github.com/nightconcept/jbuilder-go/internal/core/project"
	"github.com/nightconcept/jbuilder-go/internal/core/prompt"
	"github.com/nightconcept/jbuilder-go/internal/core/report"
)

// Workflow initializes a project: it asks for the missing configuration,
// creates the directory structure and persists the descriptor and the
// package manifest.
type Workflow struct {
	Root          string
	Overrides     project.Overrides
	GitignoreDemo *bool
	Console       *console.Console
	Prompter      *prompt.Prompter
	Now           func() time.Time
}

// Run executes the workflow and returns the persisted project.
func (w *Workflow) Run() (*project.Project, error) {
	w.Console.Title("Init project")

	proj, err := config.Init(w.Root, project.Overrides{})
	if err != nil {
		return nil, err
	}

	w.Console.Section("Project configuration")
	if err := w.configure(proj); err != nil {
		return nil, err
	}

	ignoreDemo := true
	if w.GitignoreDemo != nil {
		ignoreDemo = *w.GitignoreDemo
	} else if ignoreDemo, err = w.Prompter.Confirm("Add the demo in .gitignore?", true); err != nil {
		return nil, err
	}

	w.Console.Section("Project creation")
	if proj.Name == "" {
		return nil, report.Warning(report.KindMissingRequiredInput, "Action canceled, enter a name for this project")
	}
	if err := w.createStructure(proj, ignoreDemo); err != nil {
		return nil, err
	}
	if err := config.Persist(proj, w.Root); err != nil {
		return nil, err
	}
	if err := w.writePackageManifest(proj); err != nil {
		return nil, err
	}

	w.Console.Success("Project created")
	return proj, nil
}

func (w *Workflow) configure(proj *project.Project) error {
	o := w.Overrides

	nameDefault := ""
	if w.Prompter.Interactive() {
		nameDefault = project.DefaultName
	}
	name, err := w.Prompter.Resolve(prompt.Field{
		Name:     "name",
		Question: "What is the package name?",
		Default:  nameDefault,
		Required: true,
	}, o.Name)
	if err != nil {
		return err
	}
	proj.Name = name

	paths := []struct {
		field    string
		question string
		supplied *string
		dst      *string
	}{
		{"src", "Define the sources directory", o.Src, &proj.Paths.Src},
		{"components", "Define the components directory", o.Components, &proj.Paths.Components},
		{"libraries", "Define the libraries directory", o.Libraries, &proj.Paths.Libraries},
		{"demo", "Define the Joomla website directory", o.Demo, &proj.Paths.Demo},
	}
	askPaths := false
	if o.Src == nil && o.Components == nil && o.Libraries == nil && o.Demo == nil {
		useDefault, err := w.Prompter.Confirm("Use the default structure?", true)
		if err != nil {
			return err
		}
		askPaths = !useDefault
	}
	for _, p := range paths {
		if p.supplied == nil && !askPaths {
			continue
		}
		v, err := w.Prompter.Resolve(prompt.Field{
			Name:     p.field,
			Question: p.question,
			Default:  *p.dst,
			Required: true,
			Validate: project.ValidateDir,
		}, p.supplied)
		if err != nil {
			return err
		}
		*p.dst = project.DirPath(v)
	}
	if askPaths {
		w.Console.Comment(fmt.Sprintf("Sources    %s", proj.Paths.Src))
		w.Console.Comment(fmt.Sprintf("Components %s", proj.Paths.Components))
		w.Console.Comment(fmt.Sprintf("Libraries  %s", proj.Paths.Libraries))
		w.Console.Comment(fmt.Sprintf("Demo       %s", proj.Paths.Demo))
	}

	infos := []struct {
		field    string
		question string
		supplied *string
		dst      *string
	}{
		{"author", "Define the author?", o.Author, &proj.Infos.Author},
		{"email", "Define the email?", o.Email, &proj.Infos.Email},
		{"url", "Define the website URL", o.URL, &proj.Infos.URL},
		{"copyright", "Define the copyright", o.Copyright, &proj.Infos.Copyright},
		{"license", "Define the license", o.License, &proj.Infos.License},
		{"description", "Define the description", o.Description, &proj.Infos.Description},
	}
	askInfos := false
	if o.Author == nil && o.Email == nil && o.URL == nil && o.Copyright == nil && o.License == nil && o.Description == nil {
		useDefault, err := w.Prompter.Confirm("Use the default informations (author, copyright, etc)?", true)
		if err != nil {
			return err
		}
		askInfos = !useDefault
	}
	for _, info := range infos {
		if info.supplied == nil && !askInfos {
			continue
		}
		v, err := w.Prompter.Resolve(prompt.Field{
			Name:     info.field,
			Question: info.question,
			Default:  *info.dst,
		}, info.supplied)
		if err != nil {
			return err
		}
		*info.dst = v
	}
	return nil
}


func (w *Workflow) createStructure(proj *project.Project, ignoreDemo bool) error {
	for _, rel := range []string{proj.Paths.Src, proj.Paths.Components, proj.Paths.Libraries, proj.Paths.Demo} {
		dir := project.Abs(w.Root, rel)
		if fsutil.IsDir(dir) {
			w.Console.Note("Skip directory creation, this directory already exists\n" + dir)
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return report.Wrap(report.KindWriteError, err,
				"Something wrong happened during the creation of the directory", dir)
		}
	}

	readme := filepath.Join(w.Root, "README.md")
	if err := touch(readme); err != nil {
		w.Console.Warning("The README.md could not be created\n" + readme)
	}

	if ignoreDemo {
		gitignore := filepath.Join(w.Root, ".gitignore")
		if err := appendLine(gitignore, proj.Paths.Demo); err != nil {
			w.Console.Warning("The .gitignore could not be created\n" + gitignore)
		}
	}
	return nil
}

func (w *Workflow) writePackageManifest(proj *project.Project) error {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	data, err := manifest.RenderPackage(proj, now())
	if err != nil {
		return report.Wrap(report.KindWriteError, err, "The package manifest cannot be rendered")
	}
	path := project.Abs(w.Root, proj.PackageManifestPath())
	if err := fsutil.WriteAtomic(path, data, 0o644); err != nil {
		return report.Wrap(report.KindWriteError, err, "The package manifest cannot be created", path)
	}
	return nil
}

func touch(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// appendLine adds line to the file at path unless it is already listed.
func appendLine(path, line string) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	for _, existing := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(existing) == line {
			return nil
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	prefix := ""
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		prefix = "\n"
	}
	if _, err := f.WriteString(prefix + line + "\n"); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
