package joomla

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightconcept/jbuilder-go/internal/core/install"
	"github.com/nightconcept/jbuilder-go/internal/core/project"
	"github.com/nightconcept/jbuilder-go/internal/core/source"
)

// fakeConsole writes a shell script that appends its arguments to a log file.
func fakeConsole(t *testing.T, exitCode int) (*Console, string) {
	t.Helper()
	dir := t.TempDir()
	logFile := filepath.Join(dir, "calls.log")
	script := "#!/bin/sh\necho \"$@\" >> " + logFile + "\nexit " + strconv.Itoa(exitCode) + "\n"
	binary := filepath.Join(dir, "joomla")
	require.NoError(t, os.WriteFile(binary, []byte(script), 0o755))
	return &Console{Binary: binary, WWW: t.TempDir()}, logFile
}

func readLog(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestConsole_SiteAndExtensionInstall(t *testing.T) {
	c, logFile := fakeConsole(t, 0)
	ctx := context.Background()

	require.NoError(t, c.SiteInstall(ctx, "demo"))
	require.NoError(t, c.ExtensionInstall(ctx, "demo", "lib_fof30"))

	assert.Equal(t, []string{
		"site:install demo --www " + c.WWW + " --sample-data default",
		"extension:install demo lib_fof30 --www " + c.WWW,
	}, readLog(t, logFile))
}

func TestConsole_FailureNamesCommand(t *testing.T) {
	c, _ := fakeConsole(t, 1)

	err := c.ExtensionInstall(context.Background(), "demo", "pkg_demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extension:install demo pkg_demo")
}

func TestConsole_MissingBinary(t *testing.T) {
	c := &Console{Binary: filepath.Join(t.TempDir(), "no-such-console")}
	assert.Error(t, c.Run(context.Background(), "site:list"))
}

func TestTargets_Layout(t *testing.T) {
	root := "/work/proj"
	proj := project.NewProject()
	proj.Name = "demo"
	c := &Console{WWW: root}

	targets := Targets(NewLayout(root, proj), Options{Console: c})
	require.Len(t, targets, 3)

	joomla, fof, pkg := targets[0], targets[1], targets[2]
	assert.Equal(t, TargetJoomla, joomla.Name)
	assert.True(t, joomla.Required)
	assert.Equal(t, filepath.FromSlash("/work/proj/demo/includes/defines.php"), joomla.Probe)
	assert.Equal(t, filepath.FromSlash("/work/proj/demo"), joomla.Dest)

	assert.Equal(t, TargetFOF, fof.Name)
	assert.False(t, fof.Required)
	assert.Equal(t, install.ChoiceDelete, fof.PlaceDefault)
	assert.Equal(t, filepath.FromSlash("/work/proj/src/libraries/fof30"), fof.Dest)
	require.Len(t, fof.Links, 2)
	assert.Equal(t, filepath.FromSlash("/work/proj/demo/libraries/fof30"), fof.Links[0].Target)
	assert.Equal(t, filepath.FromSlash("/work/proj/demo/administrator/manifests/libraries/lib_fof30.xml"), fof.Links[1].Target)
	assert.Equal(t, filepath.FromSlash("/work/proj/src/libraries/fof30/fof/lib_fof30.xml"), fof.Links[1].Source)

	assert.Equal(t, TargetPackage, pkg.Name)
	require.Len(t, pkg.Links, 1)
	assert.Equal(t, filepath.FromSlash("/work/proj/src/pkg_demo.xml"), pkg.Links[0].Source)
	assert.Equal(t, filepath.FromSlash("/work/proj/demo/administrator/manifests/packages/pkg_demo.xml"), pkg.Links[0].Target)
}

func TestRegistration_HasNothingToDownload(t *testing.T) {
	called := false
	r := Registration(func(context.Context) error {
		called = true
		return nil
	})

	art, err := r.Download(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, art)
	require.NoError(t, r.Register(context.Background()))
	assert.True(t, called)
}

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestRelease_DownloadsLatestMatchingArchive(t *testing.T) {
	archive := zipBytes(t, map[string]string{"fof/lib_fof30.xml": "<extension/>"})
	var requested []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		switch r.URL.Path {
		case "/repos/akeeba/fof/git/matching-refs/tags":
			_ = json.NewEncoder(w).Encode([]source.GitHubRef{
				{Ref: "refs/tags/2.4.3"}, {Ref: "refs/tags/3.7.3"}, {Ref: "refs/tags/3.7.4"},
			})
		case "/download/fof3/3-7-4/lib_fof30-3-7-4-zip.zip":
			_, _ = w.Write(archive)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	gh := source.NewGitHub(server.URL)
	gh.Token = ""
	gh.RetryInterval = time.Millisecond
	src, err := source.ParseSource(DefaultFOFSource)
	require.NoError(t, err)

	r := &Release{
		Name:        TargetFOF,
		GitHub:      gh,
		Source:      src,
		URLTemplate: server.URL + "/download/fof3/{VERSION_DASHED}/lib_fof30-{VERSION_DASHED}-zip.zip",
	}

	cacheDir := t.TempDir()
	art, err := r.Download(context.Background(), cacheDir)
	require.NoError(t, err)
	assert.Equal(t, "3.7.4", art.Version)
	assert.Equal(t, "github:akeeba/fof@^3", art.Source)
	assert.Equal(t, filepath.Join(cacheDir, "fof-3.7.4.zip"), art.Archive)

	data, err := os.ReadFile(art.Archive)
	require.NoError(t, err)
	assert.Equal(t, archive, data)
	assert.Contains(t, requested, "/download/fof3/3-7-4/lib_fof30-3-7-4-zip.zip")
}

func TestRelease_DownloadFailsWithoutMatchingTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]source.GitHubRef{{Ref: "refs/tags/4.0.0"}})
	}))
	defer server.Close()

	gh := source.NewGitHub(server.URL)
	gh.RetryInterval = time.Millisecond
	src, err := source.ParseSource(DefaultJoomlaSource)
	require.NoError(t, err)

	r := &Release{Name: TargetJoomla, GitHub: gh, Source: src, URLTemplate: DefaultJoomlaURL}
	_, err = r.Download(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, source.ErrNoMatchingRelease)
}
