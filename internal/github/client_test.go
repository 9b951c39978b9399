package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		in      string
		owner   string
		repo    string
		wantErr bool
	}{
		{"https://github.com/obsproject/obs-studio", "obsproject", "obs-studio", false},
		{"https://github.com/obsproject/obs-studio/", "obsproject", "obs-studio", false},
		{"https://github.com/obsproject/obs-studio.git", "obsproject", "obs-studio", false},
		{"http://github.com/a/b", "a", "b", false},
		{"https://gitlab.com/a/b", "", "", true},
		{"https://github.com/onlyowner", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		owner, repo, err := ParseRepoURL(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRepoURL(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if owner != tt.owner || repo != tt.repo {
			t.Errorf("ParseRepoURL(%q) = %q/%q, want %q/%q", tt.in, owner, repo, tt.owner, tt.repo)
		}
	}
}

func TestRepo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/o/r" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("accept header = %q", got)
		}
		w.Write([]byte(`{
			"full_name": "o/r",
			"description": "a tool",
			"stargazers_count": 42,
			"forks_count": 7,
			"language": "Go",
			"archived": true,
			"pushed_at": "2026-07-01T12:00:00Z",
			"license": {"spdx_id": "MIT", "name": "MIT License"},
			"owner": {"login": "o"},
			"topics": ["streaming", "video"]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	repo, err := client.Repo(context.Background(), "o", "r")
	if err != nil {
		t.Fatal(err)
	}
	if repo.Stars != 42 || repo.Forks != 7 || !repo.Archived {
		t.Errorf("repo = %+v", repo)
	}
	if repo.License == nil || repo.License.SPDXID != "MIT" {
		t.Errorf("license = %+v", repo.License)
	}
	if repo.PushedAt.IsZero() {
		t.Error("pushed_at not decoded")
	}
	if len(repo.Topics) != 2 {
		t.Errorf("topics = %v", repo.Topics)
	}
}

func TestLatestReleaseMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	rel, err := client.LatestRelease(context.Background(), "o", "r")
	if err != nil {
		t.Fatalf("missing release should not error: %v", err)
	}
	if rel != nil {
		t.Fatalf("rel = %+v, want nil", rel)
	}
}

func TestLatestRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"tag_name": "v1.2.0",
			"assets": [
				{"name": "tool-windows.exe", "browser_download_url": "https://example.com/tool-windows.exe", "size": 1024}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	rel, err := client.LatestRelease(context.Background(), "o", "r")
	if err != nil {
		t.Fatal(err)
	}
	if rel.TagName != "v1.2.0" || len(rel.Assets) != 1 || rel.Assets[0].Size != 1024 {
		t.Errorf("release = %+v", rel)
	}
}

func TestExistenceChecksDegrade(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/o/r/readme":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	ctx := context.Background()
	if !client.HasReadme(ctx, "o", "r") {
		t.Error("HasReadme = false, want true")
	}
	if client.HasWorkflows(ctx, "o", "r") {
		t.Error("HasWorkflows = true, want false")
	}

	// Unreachable server degrades to absent rather than erroring.
	dead := NewClient("http://127.0.0.1:1", 100*time.Millisecond)
	if dead.HasReadme(ctx, "o", "r") {
		t.Error("HasReadme should be false when the API is unreachable")
	}
}

func TestContributorCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", `<https://api.github.com/repos/o/r/contributors?per_page=1&page=37>; rel="last"`)
		w.Write([]byte(`[{"login": "a"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	if got := client.ContributorCount(context.Background(), "o", "r"); got != 37 {
		t.Fatalf("ContributorCount = %d, want 37", got)
	}
}

func TestContributorCountNoLinkHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"login": "a"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	if got := client.ContributorCount(context.Background(), "o", "r"); got != 1 {
		t.Fatalf("ContributorCount = %d, want 1", got)
	}
}

func TestRecentCommits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"total": 9}, {"total": 1}, {"total": 2}, {"total": 3}, {"total": 4}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	if got := client.RecentCommits(context.Background(), "o", "r"); got != 10 {
		t.Fatalf("RecentCommits = %d, want 10", got)
	}
}
