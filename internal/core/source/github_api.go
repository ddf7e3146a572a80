package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	fastshot "github.com/opus-domini/fast-shot"
)

// DefaultGithubAPIBaseURL is the public GitHub REST endpoint.
const DefaultGithubAPIBaseURL = "https://api.github.com"

// ErrNoMatchingRelease is returned when no tag satisfies the constraint.
var ErrNoMatchingRelease = errors.New("no release matches the constraint")

// GitHubRef is one entry of the git matching-refs listing.
type GitHubRef struct {
	Ref string `json:"ref"`
}

// GitHub resolves release tags through the GitHub REST API.
type GitHub struct {
	BaseURL string
	// Token is sent as a bearer token when set. NewGitHub reads GITHUB_TOKEN.
	Token         string
	Timeout       time.Duration
	RetryInterval time.Duration
}

// NewGitHub creates a client for baseURL. An empty baseURL selects the
// public API.
func NewGitHub(baseURL string) *GitHub {
	if baseURL == "" {
		baseURL = DefaultGithubAPIBaseURL
	}
	return &GitHub{
		BaseURL:       strings.TrimSuffix(baseURL, "/"),
		Token:         os.Getenv("GITHUB_TOKEN"),
		Timeout:       30 * time.Second,
		RetryInterval: time.Second,
	}
}

func (g *GitHub) client() fastshot.ClientHttpMethods {
	c := fastshot.NewClient(g.BaseURL)
	if g.Token != "" {
		c.Auth().BearerToken(g.Token)
	}
	return c.Config().SetTimeout(g.Timeout).
		Header().Add("Accept", "application/vnd.github+json").
		Header().Add("User-Agent", "jbuilder-go").
		Build()
}

// ListTags returns the tag names of owner/repo.
// See: https://docs.github.com/en/rest/git/refs#list-matching-references
func (g *GitHub) ListTags(ctx context.Context, owner, repo string) ([]string, error) {
	path := fmt.Sprintf("/repos/%s/%s/git/matching-refs/tags", owner, repo)

	resp, err := g.client().
		GET(path).
		Context().Set(ctx).
		Retry().SetExponentialBackoff(g.RetryInterval, 3, 2.0).
		Send()
	if err != nil {
		return nil, fmt.Errorf("failed to call GitHub API (%s%s): %w", g.BaseURL, path, err)
	}
	defer resp.Body().Close()

	if resp.Status().IsError() {
		msg, _ := resp.Body().AsString()
		return nil, fmt.Errorf("GitHub API request failed (%s%s): %s", g.BaseURL, path, msg)
	}

	var refs []GitHubRef
	if err := resp.Body().AsJSON(&refs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal GitHub API response (%s%s): %w", g.BaseURL, path, err)
	}

	tags := make([]string, 0, len(refs))
	for _, r := range refs {
		tags = append(tags, strings.TrimPrefix(r.Ref, "refs/tags/"))
	}
	return tags, nil
}

// LatestVersion returns the highest tag of src that satisfies its constraint.
func (g *GitHub) LatestVersion(ctx context.Context, src *ParsedSource) (*semver.Version, error) {
	tags, err := g.ListTags(ctx, src.Owner, src.Repo)
	if err != nil {
		return nil, err
	}
	return SelectLatest(tags, src.Constraint)
}

// SelectLatest picks the highest version among tags that satisfies
// constraint. Tags that are not semantic versions are ignored. Pre-releases
// only match constraints that name a pre-release.
func SelectLatest(tags []string, constraint string) (*semver.Version, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("bad version constraint %q: %w", constraint, err)
	}

	var best *semver.Version
	for _, tag := range tags {
		v, err := semver.NewVersion(tag)
		if err != nil {
			continue
		}
		if !c.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w %q", ErrNoMatchingRelease, constraint)
	}
	return best, nil
}
