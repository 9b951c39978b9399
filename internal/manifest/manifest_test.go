package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tool.json")
	if err := os.WriteFile(path, []byte(`{"name": "Tool", "description": "does things", "repository": "https://github.com/o/r"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.String("name") != "Tool" {
		t.Errorf("name = %q", doc.String("name"))
	}

	doc["slug"] = "tool"
	if err := doc.Save(path); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.String("slug") != "tool" {
		t.Errorf("slug = %q after reload", reloaded.String("slug"))
	}
}

func TestSaveIsDeterministic(t *testing.T) {
	doc := Document{"b": 1.0, "a": "x", "nested": map[string]any{"z": true, "y": []any{"1"}}}
	first, err := doc.Encode()
	if err != nil {
		t.Fatal(err)
	}
	second, err := doc.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("encoding the same document twice produced different bytes")
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadRejectsNull(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "null.json")
	if err := os.WriteFile(path, []byte(`null`), 0o644); err != nil {
		t.Fatal(err)
	}
	// json "null" is valid JSON but decodes to a nil map, which callers
	// would otherwise write into.
	if doc, err := Load(path); err == nil {
		t.Fatalf("expected error, got document %v", doc)
	}
}

func TestWriteBackupOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tool.json")
	original := []byte(`{"name": "Tool"}`)
	if err := os.WriteFile(path, original, 0o644); err != nil {
		t.Fatal(err)
	}

	created, err := WriteBackupOnce(path)
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("first call should create the backup")
	}

	// Mutate the original, then retry: the backup must keep its
	// pre-completion contents.
	if err := os.WriteFile(path, []byte(`{"name": "Changed"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	created, err = WriteBackupOnce(path)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Fatal("second call must not rewrite the backup")
	}

	backup, err := os.ReadFile(path + BackupSuffix)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(backup, original) {
		t.Errorf("backup contents = %s, want original", backup)
	}
}

func TestIsLegacy(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want bool
	}{
		{"bare manifest", Document{"name": "x"}, true},
		{"has slug", Document{"name": "x", "slug": "x"}, false},
		{"has installation", Document{"name": "x", "installation": map[string]any{}}, false},
		{"has compatibility", Document{"name": "x", "compatibility": map[string]any{}}, false},
		{"has uninstallation", Document{"name": "x", "uninstallation": map[string]any{}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.doc.IsLegacy(); got != tt.want {
				t.Fatalf("IsLegacy = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetDefault(t *testing.T) {
	doc := Document{"name": "Tool"}
	if doc.SetDefault("name", "Other") {
		t.Error("SetDefault must not replace an existing value")
	}
	if doc.String("name") != "Tool" {
		t.Errorf("name = %q", doc.String("name"))
	}
	if !doc.SetDefault("slug", "tool") {
		t.Error("SetDefault should add a missing key")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"OBS Studio", "obs-studio"},
		{"Tool  With   Spaces", "tool-with-spaces"},
		{"C++ Helper!", "c-helper"},
		{"already-slugged", "already-slugged"},
		{"Under_score", "under_score"},
		{"  padded  ", "padded"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
