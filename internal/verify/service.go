// Package verify checks catalog tools against their live repositories:
// repository health, documentation reachability, synthesized install
// patterns and overall verification status.
package verify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"toolshelf/internal/github"
	"toolshelf/internal/manifest"
	"toolshelf/internal/score"
)

// Logger is the minimal logging surface the service needs.
type Logger interface {
	Printf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Metrics are the live repository facts one verification run collects.
type Metrics struct {
	Stars         int
	Forks         int
	Watchers      int
	OpenIssues    int
	SizeKB        int
	Language      string
	License       string
	Archived      bool
	Disabled      bool
	Private       bool
	Fork          bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PushedAt      time.Time
	Topics        []string
	HasReadme     bool
	HasCI         bool
	Contributors  int
	RecentCommits int
}

// RepoHealth is the outcome of probing one repository.
type RepoHealth struct {
	Accessible    bool
	Metrics       Metrics
	Issues        []string
	Score         int
	LatestRelease *github.Release
}

// DocCheck is the outcome of probing one documentation URL.
type DocCheck struct {
	URL          string
	Present      bool
	Accessible   bool
	StatusCode   int
	ContentType  string
	ResponseTime time.Duration
}

// Report is the full verification outcome for one manifest.
type Report struct {
	Path     string
	Name     string
	Slug     string
	Repo     RepoHealth
	Doc      DocCheck
	Findings []Finding
	Overall  int
	Status   string
	Err      error
	Duration time.Duration
}

// Service runs verifications. Now is injectable for tests.
type Service struct {
	client *github.Client
	http   *http.Client
	logger Logger
	now    func() time.Time
}

// NewService builds a verification service. A nil logger is replaced
// with a no-op one; timeout bounds the documentation requests.
func NewService(client *github.Client, timeout time.Duration, logger Logger) *Service {
	if logger == nil {
		logger = noopLogger{}
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{
		client: client,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
		now:    time.Now,
	}
}

// RepositoryHealth collects metrics and issues for one repository URL.
// Remote failures degrade individual metrics rather than aborting; only
// an unreachable repository itself marks the result inaccessible.
func (s *Service) RepositoryHealth(ctx context.Context, repoURL string) RepoHealth {
	owner, name, err := github.ParseRepoURL(repoURL)
	if err != nil {
		return RepoHealth{Issues: []string{err.Error()}}
	}

	repo, err := s.client.Repo(ctx, owner, name)
	if err != nil {
		return RepoHealth{Issues: []string{fmt.Sprintf("repository inaccessible: %v", err)}}
	}

	health := RepoHealth{Accessible: true}
	m := &health.Metrics
	m.Stars = repo.Stars
	m.Forks = repo.Forks
	m.Watchers = repo.Watchers
	m.OpenIssues = repo.OpenIssues
	m.SizeKB = repo.Size
	m.Language = repo.Language
	if repo.License != nil {
		m.License = repo.License.SPDXID
	}
	m.Archived = repo.Archived
	m.Disabled = repo.Disabled
	m.Private = repo.Private
	m.Fork = repo.Fork
	m.CreatedAt = repo.CreatedAt
	m.UpdatedAt = repo.UpdatedAt
	m.PushedAt = repo.PushedAt
	m.Topics = repo.Topics

	if repo.Archived {
		health.Issues = append(health.Issues, "repository is archived")
	}
	if repo.Disabled {
		health.Issues = append(health.Issues, "repository is disabled")
	}
	if repo.Private {
		health.Issues = append(health.Issues, "repository is private")
	}
	if repo.PushedAt.IsZero() {
		health.Issues = append(health.Issues, "no push activity recorded")
	}

	m.HasReadme = s.client.HasReadme(ctx, owner, name)
	if !m.HasReadme {
		health.Issues = append(health.Issues, "no README found")
	}
	m.HasCI = s.client.HasWorkflows(ctx, owner, name)
	m.Contributors = s.client.ContributorCount(ctx, owner, name)
	m.RecentCommits = s.client.RecentCommits(ctx, owner, name)

	release, err := s.client.LatestRelease(ctx, owner, name)
	if err != nil {
		health.Issues = append(health.Issues, fmt.Sprintf("release lookup failed: %v", err))
	} else {
		health.LatestRelease = release
	}

	health.Score = score.Health(score.HealthInput{
		Archived:      m.Archived,
		Disabled:      m.Disabled,
		Private:       m.Private,
		PushedAt:      m.PushedAt,
		HasReadme:     m.HasReadme,
		HasCI:         m.HasCI,
		Stars:         m.Stars,
		Contributors:  m.Contributors,
		RecentCommits: m.RecentCommits,
	}, s.now())
	return health
}

// Documentation issues a HEAD request for a documentation URL. An empty URL yields a check
// with Present false, which the scorer treats as neutral.
func (s *Service) Documentation(ctx context.Context, url string) DocCheck {
	check := DocCheck{URL: url}
	if strings.TrimSpace(url) == "" {
		return check
	}
	check.Present = true

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return check
	}
	started := s.now()
	resp, err := s.http.Do(req)
	check.ResponseTime = s.now().Sub(started)
	if err != nil {
		return check
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	check.StatusCode = resp.StatusCode
	check.ContentType = resp.Header.Get("Content-Type")
	check.Accessible = resp.StatusCode >= 200 && resp.StatusCode < 400
	return check
}

// VerifyManifest runs the full verification pipeline for one manifest
// file. Input errors land on Report.Err; everything else degrades.
func (s *Service) VerifyManifest(ctx context.Context, path string) Report {
	started := s.now()
	report := Report{Path: path}
	defer func() { report.Duration = s.now().Sub(started) }()

	doc, err := manifest.Load(path)
	if err != nil {
		report.Err = err
		report.Status = "failed"
		return report
	}
	report.Name = doc.String("name")
	report.Slug = doc.String("slug")

	report.Repo = s.RepositoryHealth(ctx, doc.String("repository"))
	report.Doc = s.Documentation(ctx, doc.String("documentation"))

	if install, ok := doc["installation"].(map[string]any); ok && report.Repo.LatestRelease != nil {
		report.Findings = CheckPattern(install, report.Repo.LatestRelease.Assets)
	}

	report.Overall = score.Overall(report.Repo.Score, score.DocumentationBonus(report.Doc.Present, report.Doc.Accessible))
	report.Status = score.Status(report.Overall, report.Repo.Accessible)
	s.logger.Printf("verify %s: status=%s score=%d issues=%d", path, report.Status, report.Overall, len(report.Repo.Issues))
	return report
}

// UpdateManifest writes a report's outcome back into its manifest,
// touching only the verification and metrics sections.
func (s *Service) UpdateManifest(report Report) error {
	doc, err := manifest.Load(report.Path)
	if err != nil {
		return err
	}
	doc["verification"] = map[string]any{
		"status": report.Status,
		"score":  report.Overall,
		"date":   s.now().UTC().Format("2006-01-02"),
		"method": "automated",
	}
	metrics := map[string]any{
		"stars": report.Repo.Metrics.Stars,
		"forks": report.Repo.Metrics.Forks,
	}
	if !report.Repo.Metrics.PushedAt.IsZero() {
		metrics["last_commit"] = report.Repo.Metrics.PushedAt.UTC().Format(time.RFC3339)
	}
	doc["metrics"] = metrics
	return doc.Save(report.Path)
}

// ProgressReporter receives notifications as manifests move through a
// batch verification.
type ProgressReporter interface {
	Start(path string)
	Complete(report Report)
}

// BatchOptions controls batch verification.
type BatchOptions struct {
	Workers  int
	Update   bool
	Reporter ProgressReporter
}

// VerifyBatch fans the manifests across a bounded worker pool. Results
// come back in input order; a failed unit never cancels its siblings,
// but a cancelled context stops dispatching new units.
func (s *Service) VerifyBatch(ctx context.Context, manifestPaths []string, opts BatchOptions) []Report {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]Report, len(manifestPaths))

	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, workers)
	)

	for i, path := range manifestPaths {
		if ctx.Err() != nil {
			results[i] = Report{Path: path, Status: "failed", Err: ctx.Err()}
			continue
		}
		i, path := i, path
		if opts.Reporter != nil {
			opts.Reporter.Start(path)
		}
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			report := s.VerifyManifest(ctx, path)
			if opts.Update && report.Err == nil && report.Repo.Accessible {
				if err := s.UpdateManifest(report); err != nil {
					report.Err = fmt.Errorf("update manifest: %w", err)
				}
			}
			results[i] = report
			if opts.Reporter != nil {
				opts.Reporter.Complete(report)
			}
		}()
	}

	wg.Wait()
	return results
}
