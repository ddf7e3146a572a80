// Package manifest renders the XML documents jbuilder writes: the Joomla
// package manifest and the table-structure document describing an entity
// table. Both are pure functions of their inputs.
package manifest

import (
	"bytes"
	"encoding/xml"
	"path"
	"strings"
	"time"

	"github.com/nightconcept/jbuilder-go/internal/core/project"
)

const (
	PackageSchemaVersion = "3.3.6"
	PackageVersion       = "0.0.1"
	FOFLibraryID         = "fof30"
)

// Package is the root of pkg_<name>.xml.
type Package struct {
	XMLName      xml.Name     `xml:"extension"`
	Type         string       `xml:"type,attr"`
	Version      string       `xml:"version,attr"`
	Method       string       `xml:"method,attr"`
	Name         string       `xml:"name"`
	Author       string       `xml:"author"`
	CreationDate string       `xml:"creationDate"`
	PackageName  string       `xml:"packagename"`
	PkgVersion   string       `xml:"version"`
	URL          string       `xml:"url"`
	Description  string       `xml:"description"`
	Files        PackageFiles `xml:"files"`
}

type PackageFiles struct {
	Folders []PackageFolder `xml:"folder"`
}

type PackageFolder struct {
	Type string `xml:"type,attr"`
	ID   string `xml:"id,attr"`
	Path string `xml:",chardata"`
}

// NewPackage builds the package manifest for p. The FOF folder is expressed
// relative to the sources directory, where the manifest lives.
func NewPackage(p *project.Project, created time.Time) Package {
	return Package{
		Type:         "package",
		Version:      PackageSchemaVersion,
		Method:       "upgrade",
		Name:         p.Name,
		Author:       p.Infos.Author,
		CreationDate: created.Format("2006-01-02"),
		PackageName:  p.Name,
		PkgVersion:   PackageVersion,
		URL:          p.Infos.URL,
		Description:  p.Infos.Description,
		Files: PackageFiles{Folders: []PackageFolder{{
			Type: "library",
			ID:   FOFLibraryID,
			Path: relativeTo(p.Paths.Src, p.Paths.Libraries) + "fof",
		}}},
	}
}

// RenderPackage serializes the package manifest for p.
func RenderPackage(p *project.Project, created time.Time) ([]byte, error) {
	return render(NewPackage(p, created))
}

// relativeTo returns dir relative to base when dir lives below base, with a
// trailing slash. Otherwise dir is returned unchanged.
func relativeTo(base, dir string) string {
	base = path.Clean(base) + "/"
	clean := path.Clean(dir) + "/"
	if strings.HasPrefix(clean, base) {
		return strings.TrimPrefix(clean, base)
	}
	return clean
}

func render(v any) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
