package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"toolshelf/internal/manifest"
)

func TestVerifyCommandJSONOutput(t *testing.T) {
	prevRoot, prevTools, prevJSON := catalogRoot, toolsDirFlag, outputJSON
	prevUpdate, prevNoProgress := verifyUpdate, verifyNoProgress
	defer func() {
		catalogRoot, toolsDirFlag, outputJSON = prevRoot, prevTools, prevJSON
		verifyUpdate, verifyNoProgress = prevUpdate, prevNoProgress
	}()

	srv := fakeGitHubAPI(t)
	catalogRoot = t.TempDir()
	toolsDirFlag = ""
	outputJSON = true

	writeCatalogConfig(t, catalogRoot, srv.URL)
	writeToolManifest(t, catalogRoot, "obs-studio.json", obsManifest)

	// Assign after construction: flag registration resets the globals.
	cmd := newVerifyCmd()
	verifyUpdate = false
	verifyNoProgress = true
	stdout := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("verify command returned error: %v", err)
	}

	var payload struct {
		Tools   []verifyRowResult `json:"tools"`
		Total   int               `json:"total"`
		Summary map[string]int    `json:"summary"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		t.Fatalf("decode json output: %v", err)
	}
	if payload.Total != 1 {
		t.Fatalf("expected 1 tool, got %d", payload.Total)
	}
	row := payload.Tools[0]
	if row.Status == "" || row.Status == "failed" {
		t.Errorf("expected a non-failed status, got %q", row.Status)
	}
	if row.Stars != 60000 {
		t.Errorf("expected stars from repository, got %d", row.Stars)
	}
	if row.Error != "" {
		t.Errorf("expected no error, got %q", row.Error)
	}
}

func TestVerifyCommandUpdateWritesManifest(t *testing.T) {
	prevRoot, prevTools, prevJSON := catalogRoot, toolsDirFlag, outputJSON
	prevUpdate, prevNoProgress := verifyUpdate, verifyNoProgress
	defer func() {
		catalogRoot, toolsDirFlag, outputJSON = prevRoot, prevTools, prevJSON
		verifyUpdate, verifyNoProgress = prevUpdate, prevNoProgress
	}()

	srv := fakeGitHubAPI(t)
	catalogRoot = t.TempDir()
	toolsDirFlag = ""
	outputJSON = true

	writeCatalogConfig(t, catalogRoot, srv.URL)
	writeToolManifest(t, catalogRoot, "obs-studio.json", obsManifest)

	// Assign after construction: flag registration resets the globals.
	cmd := newVerifyCmd()
	verifyUpdate = true
	verifyNoProgress = true
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("verify command returned error: %v", err)
	}

	manifests, err := listManifests(nil, filepath.Join(catalogRoot, "tools"))
	if err != nil {
		t.Fatalf("list manifests: %v", err)
	}
	doc, err := manifest.Load(manifests[0])
	if err != nil {
		t.Fatalf("reload manifest: %v", err)
	}

	verification, ok := doc["verification"].(map[string]any)
	if !ok {
		t.Fatal("expected verification section after update")
	}
	if verification["method"] != "automated" {
		t.Errorf("expected automated method, got %v", verification["method"])
	}
	metrics, ok := doc["metrics"].(map[string]any)
	if !ok {
		t.Fatal("expected metrics section after update")
	}
	if metrics["stars"] != 60000.0 {
		t.Errorf("expected stars metric 60000, got %v", metrics["stars"])
	}
}
