package verify

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"toolshelf/internal/github"
	"toolshelf/internal/score"
)

func newValidator(t *testing.T) *Validator {
	srv := healthyRepoServer(t)
	client := github.NewClient(srv.URL, time.Second)
	return NewValidator(client, score.DefaultWeights(), 30, []string{"keygen"}, nil)
}

func writeRawManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateFileAccepts(t *testing.T) {
	v := newValidator(t)
	path := writeRawManifest(t, `{
		"name": "Tool Studio",
		"slug": "tool-studio",
		"description": "Free and open source software for video recording and live streaming.",
		"repository": "https://github.com/o/tool",
		"documentation": "https://docs.example.com",
		"license": "GPL-2.0",
		"tags": ["streaming"]
	}`)

	result := v.ValidateFile(context.Background(), path)
	if !result.Valid {
		t.Fatalf("errors = %v", result.Errors)
	}
	if result.Score < 30 {
		t.Errorf("score = %d, want above review threshold", result.Score)
	}
	for _, w := range result.Warnings {
		if strings.Contains(w, "review threshold") {
			t.Errorf("unexpected threshold warning: %q", w)
		}
	}
}

func TestValidateFileSchemaViolations(t *testing.T) {
	v := newValidator(t)
	path := writeRawManifest(t, `{
		"description": "missing name",
		"repository": "https://github.com/o/tool",
		"tags": ["Bad_Tag"]
	}`)

	result := v.ValidateFile(context.Background(), path)
	if result.Valid {
		t.Fatal("schema-violating manifest accepted")
	}
	if len(result.Errors) < 2 {
		t.Errorf("errors = %v, want missing-name and tag violations", result.Errors)
	}
}

func TestValidateFileMalformedJSON(t *testing.T) {
	v := newValidator(t)
	path := writeRawManifest(t, `{broken`)

	result := v.ValidateFile(context.Background(), path)
	if result.Valid || len(result.Errors) == 0 {
		t.Fatalf("result = %+v", result)
	}
}

func TestValidateFileContentWarning(t *testing.T) {
	v := newValidator(t)
	path := writeRawManifest(t, `{
		"name": "Handy Keygen",
		"description": "definitely fine",
		"repository": "https://github.com/o/tool"
	}`)

	result := v.ValidateFile(context.Background(), path)
	if !result.Valid {
		t.Fatalf("content findings must stay warnings, errors = %v", result.Errors)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "keygen") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a forbidden-word warning", result.Warnings)
	}
}

func TestValidateFileUnreachableRepo(t *testing.T) {
	client := github.NewClient("http://127.0.0.1:1", 100*time.Millisecond)
	v := NewValidator(client, score.DefaultWeights(), 30, nil, nil)
	path := writeRawManifest(t, `{
		"name": "Tool",
		"description": "desc",
		"repository": "https://github.com/o/tool"
	}`)

	result := v.ValidateFile(context.Background(), path)
	if !result.Valid {
		t.Fatalf("remote failure must not invalidate, errors = %v", result.Errors)
	}
	warned := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "not accessible") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("warnings = %v, want an accessibility warning", result.Warnings)
	}
	if result.Score > 30 {
		t.Errorf("score = %d, degraded inputs should score low", result.Score)
	}
}
