package project

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProject_Defaults(t *testing.T) {
	p := NewProject()

	assert.Equal(t, "", p.Name)
	assert.Equal(t, Paths{Src: "src/", Components: "src/components/", Libraries: "src/libraries/", Demo: "demo/"}, p.Paths)
	assert.Equal(t, "me@domain.tld", p.Infos.Email)
	assert.Equal(t, "GNU General Public License version 2 or later", p.Infos.License)
}

func TestOverrides_Apply(t *testing.T) {
	name := "demo"
	src := "source"
	demo := "site//"
	author := "Jane"

	p := NewProject()
	Overrides{Name: &name, Src: &src, Demo: &demo, Author: &author}.Apply(p)

	assert.Equal(t, "demo", p.Name)
	assert.Equal(t, "source/", p.Paths.Src)
	assert.Equal(t, "site/", p.Paths.Demo)
	assert.Equal(t, "src/components/", p.Paths.Components, "untouched paths keep their default")
	assert.Equal(t, "Jane", p.Infos.Author)
	assert.Equal(t, "http://www.domain.tld", p.Infos.URL)
}

func TestDirPath(t *testing.T) {
	assert.Equal(t, "src/", DirPath("src"))
	assert.Equal(t, "src/", DirPath(" src/ "))
	assert.Equal(t, "a/b/", DirPath("a/b///"))
}

func TestProjectPaths(t *testing.T) {
	p := NewProject()
	p.Name = "demo"

	assert.Equal(t, "src/components/com_todo/", p.ComponentDir("todo"))
	assert.Equal(t, "src/libraries/fof30/", p.LibraryDir("fof30"))
	assert.Equal(t, "src/pkg_demo.xml", p.PackageManifestPath())
	assert.Equal(t, filepath.Join("/root", "demo", "includes"), Abs("/root", "demo/includes/"))
}

func TestValidateDir(t *testing.T) {
	for _, rel := range []string{"src/", "demo", "a/b/", "./www/"} {
		assert.NoError(t, ValidateDir(rel), rel)
	}
	for _, rel := range []string{"", " ", ".", "./", "..", "../demo", "a/../../b", "/var/www"} {
		assert.Error(t, ValidateDir(rel), rel)
	}
}

func TestProject_Validate(t *testing.T) {
	p := NewProject()
	assert.Error(t, p.Validate(), "a project needs a name")

	p.Name = "demo"
	assert.NoError(t, p.Validate())

	p.Paths.Demo = ""
	assert.ErrorContains(t, p.Validate(), "paths.demo")

	p.Paths.Demo = "demo"
	assert.ErrorContains(t, p.Validate(), "must end with /")
}
