package source

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ParsedSource identifies the repository whose tags version an install target
// and the constraint a release must satisfy.
type ParsedSource struct {
	Provider   string // e.g., "github"
	Owner      string
	Repo       string
	Constraint string // semver constraint, e.g. "~3.10"
}

// ParseSource analyzes a source string. Two forms are accepted:
//
//	github:owner/repo@constraint
//	https://github.com/owner/repo@constraint
//
// The @constraint part is optional and defaults to "*".
func ParseSource(raw string) (*ParsedSource, error) {
	content := raw
	switch {
	case strings.HasPrefix(raw, "github:"):
		content = strings.TrimPrefix(raw, "github:")
	case strings.HasPrefix(raw, "https://") || strings.HasPrefix(raw, "http://"):
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse source URL '%s': %w", raw, err)
		}
		if strings.ToLower(u.Hostname()) != "github.com" {
			return nil, fmt.Errorf("unsupported source URL host: %s. Only GitHub URLs are currently supported", u.Hostname())
		}
		content = strings.Trim(u.Path, "/")
	default:
		return nil, fmt.Errorf("invalid source '%s': expected github:owner/repo[@constraint]", raw)
	}

	constraint := "*"
	if at := strings.LastIndex(content, "@"); at != -1 {
		constraint = content[at+1:]
		content = content[:at]
		if constraint == "" {
			return nil, fmt.Errorf("invalid source '%s': constraint part is empty after @", raw)
		}
	}
	if _, err := semver.NewConstraint(constraint); err != nil {
		return nil, fmt.Errorf("invalid source '%s': bad version constraint %q: %w", raw, constraint, err)
	}

	parts := strings.Split(strings.TrimSuffix(content, ".git"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid source '%s': expected owner/repo, got '%s'", raw, content)
	}

	return &ParsedSource{
		Provider:   "github",
		Owner:      parts[0],
		Repo:       parts[1],
		Constraint: constraint,
	}, nil
}

// String returns the canonical github:owner/repo@constraint form.
func (s *ParsedSource) String() string {
	return fmt.Sprintf("%s:%s/%s@%s", s.Provider, s.Owner, s.Repo, s.Constraint)
}

// Placeholders understood by ArchiveURL.
const (
	VersionPlaceholder       = "{VERSION}"
	DashedVersionPlaceholder = "{VERSION_DASHED}"
)

// ArchiveURL expands a download URL template for version. {VERSION} is the
// dotted version and {VERSION_DASHED} the same with dots replaced by dashes.
func ArchiveURL(template string, version *semver.Version) string {
	dotted := version.Original()
	dotted = strings.TrimPrefix(dotted, "v")
	return strings.NewReplacer(
		DashedVersionPlaceholder, strings.ReplaceAll(dotted, ".", "-"),
		VersionPlaceholder, dotted,
	).Replace(template)
}
