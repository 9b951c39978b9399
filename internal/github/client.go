// Package github consumes the GitHub REST API for repository metadata and
// release data. Calls degrade gracefully: a missing resource or a failed
// request yields empty data rather than an error wherever the caller can
// keep going without it.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"

	maxResponseBytes = 4 << 20
)

// Client talks to the GitHub REST API. The zero value is not usable; use
// NewClient.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient builds a client against baseURL (DefaultBaseURL when empty).
// The token, taken from GITHUB_TOKEN when present, raises rate limits but
// is never required.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   os.Getenv("GITHUB_TOKEN"),
	}
}

// Repo is the subset of the repository resource the catalog consumes.
type Repo struct {
	FullName      string    `json:"full_name"`
	Description   string    `json:"description"`
	Homepage      string    `json:"homepage"`
	Language      string    `json:"language"`
	DefaultBranch string    `json:"default_branch"`
	Stars         int       `json:"stargazers_count"`
	Forks         int       `json:"forks_count"`
	Watchers      int       `json:"subscribers_count"`
	OpenIssues    int       `json:"open_issues_count"`
	Size          int       `json:"size"`
	Topics        []string  `json:"topics"`
	Archived      bool      `json:"archived"`
	Disabled      bool      `json:"disabled"`
	Private       bool      `json:"private"`
	Fork          bool      `json:"fork"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	PushedAt      time.Time `json:"pushed_at"`
	License       *License  `json:"license"`
	Owner         Owner     `json:"owner"`
}

// License is the repository license stub.
type License struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	SPDXID string `json:"spdx_id"`
}

// Owner is the repository owner stub.
type Owner struct {
	Login string `json:"login"`
}

// Release is one tagged release with its downloadable assets.
type Release struct {
	TagName     string         `json:"tag_name"`
	Name        string         `json:"name"`
	Draft       bool           `json:"draft"`
	Prerelease  bool           `json:"prerelease"`
	PublishedAt time.Time      `json:"published_at"`
	Assets      []ReleaseAsset `json:"assets"`
}

// ReleaseAsset is one downloadable file attached to a release.
type ReleaseAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

var repoURLPattern = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)

// ParseRepoURL extracts owner and repository name from a github.com URL.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	m := repoURLPattern.FindStringSubmatch(strings.TrimSpace(repoURL))
	if m == nil {
		return "", "", fmt.Errorf("not a github repository url: %q", repoURL)
	}
	return m[1], m[2], nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request %s: %w", path, err)
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github %s: unexpected status %s", path, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read github response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode github response: %w", err)
	}
	return nil
}

var errNotFound = errors.New("github: not found")

// Repo fetches repository metadata. A missing repository is an error
// because nothing downstream can proceed without it.
func (c *Client) Repo(ctx context.Context, owner, repo string) (*Repo, error) {
	var out Repo
	path := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LatestRelease fetches the latest published release. A repository without
// releases returns (nil, nil).
func (c *Client) LatestRelease(ctx context.Context, owner, repo string) (*Release, error) {
	var out Release
	path := fmt.Sprintf("/repos/%s/%s/releases/latest", url.PathEscape(owner), url.PathEscape(repo))
	err := c.getJSON(ctx, path, &out)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Releases lists up to perPage recent releases, most recent first.
func (c *Client) Releases(ctx context.Context, owner, repo string, perPage int) ([]Release, error) {
	if perPage <= 0 {
		perPage = 10
	}
	var out []Release
	path := fmt.Sprintf("/repos/%s/%s/releases?per_page=%d", url.PathEscape(owner), url.PathEscape(repo), perPage)
	err := c.getJSON(ctx, path, &out)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// HasReadme reports whether the repository exposes a README. Any failure
// counts as absent.
func (c *Client) HasReadme(ctx context.Context, owner, repo string) bool {
	return c.exists(ctx, fmt.Sprintf("/repos/%s/%s/readme", url.PathEscape(owner), url.PathEscape(repo)))
}

// HasWorkflows reports whether the repository has a CI workflow directory.
// Any failure counts as absent.
func (c *Client) HasWorkflows(ctx context.Context, owner, repo string) bool {
	return c.exists(ctx, fmt.Sprintf("/repos/%s/%s/contents/.github/workflows", url.PathEscape(owner), url.PathEscape(repo)))
}

func (c *Client) exists(ctx context.Context, path string) bool {
	resp, err := c.get(ctx, path)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	return resp.StatusCode == http.StatusOK
}

var lastPagePattern = regexp.MustCompile(`page=(\d+)>; rel="last"`)

// ContributorCount estimates the contributor total from the pagination
// Link header of a one-per-page contributors listing. Unknown is 0.
func (c *Client) ContributorCount(ctx context.Context, owner, repo string) int {
	path := fmt.Sprintf("/repos/%s/%s/contributors?per_page=1&anon=true", url.PathEscape(owner), url.PathEscape(repo))
	resp, err := c.get(ctx, path)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode != http.StatusOK {
		return 0
	}
	if m := lastPagePattern.FindStringSubmatch(resp.Header.Get("Link")); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n
		}
	}
	var page []json.RawMessage
	if err := json.Unmarshal(body, &page); err == nil {
		return len(page)
	}
	return 0
}

// RecentCommits sums the last four weeks of the commit-activity series.
// The stats endpoint answers 202 while GitHub computes the series; that
// and every other failure count as 0.
func (c *Client) RecentCommits(ctx context.Context, owner, repo string) int {
	var weeks []struct {
		Total int `json:"total"`
	}
	path := fmt.Sprintf("/repos/%s/%s/stats/commit_activity", url.PathEscape(owner), url.PathEscape(repo))
	if err := c.getJSON(ctx, path, &weeks); err != nil {
		return 0
	}
	total := 0
	start := len(weeks) - 4
	if start < 0 {
		start = 0
	}
	for _, week := range weeks[start:] {
		total += week.Total
	}
	return total
}
