package manifest

import (
	"strings"
	"testing"
)

func validDoc() Document {
	return Document{
		"name":        "OBS Studio",
		"slug":        "obs-studio",
		"description": "Free and open source software for video recording and live streaming.",
		"repository":  "https://github.com/obsproject/obs-studio",
		"tags":        []any{"streaming", "recording"},
		"installation": map[string]any{
			"platforms": map[string]any{
				"windows": map[string]any{
					"type":       "zip",
					"url":        "https://github.com/obsproject/obs-studio/releases/latest",
					"executable": "OBS.zip",
					"args":       []any{},
					"silent":     true,
				},
			},
		},
		"compatibility": map[string]any{
			"sunshine":  true,
			"apollo":    false,
			"platforms": []any{"windows"},
		},
		"verification": map[string]any{
			"status": "verified",
			"score":  92.0,
		},
	}
}

func TestValidateSchemaAccepts(t *testing.T) {
	violations, err := validDoc().ValidateSchema()
	if err != nil {
		t.Fatal(err)
	}
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %v", violations)
	}
}

func TestValidateSchemaFlatInstallation(t *testing.T) {
	doc := validDoc()
	doc["installation"] = map[string]any{
		"type": "executable",
		"url":  "",
		"args": []any{},
	}
	violations, err := doc.ValidateSchema()
	if err != nil {
		t.Fatal(err)
	}
	if len(violations) != 0 {
		t.Fatalf("flat installation rejected: %v", violations)
	}
}

func TestValidateSchemaRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(Document)
		wantLoc string
	}{
		{
			"missing required name",
			func(d Document) { delete(d, "name") },
			"/",
		},
		{
			"uppercase tag",
			func(d Document) { d["tags"] = []any{"Streaming"} },
			"/tags",
		},
		{
			"too many tags",
			func(d Document) {
				d["tags"] = []any{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
			},
			"/tags",
		},
		{
			"unknown verification status",
			func(d Document) {
				d["verification"] = map[string]any{"status": "maybe"}
			},
			"/verification/status",
		},
		{
			"unknown install platform key",
			func(d Document) {
				d["installation"] = map[string]any{
					"platforms": map[string]any{
						"solaris": map[string]any{"type": "zip"},
					},
				}
			},
			"/installation",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDoc()
			tt.mutate(doc)
			violations, err := doc.ValidateSchema()
			if err != nil {
				t.Fatal(err)
			}
			if len(violations) == 0 {
				t.Fatal("expected violations, got none")
			}
			found := false
			for _, v := range violations {
				if strings.HasPrefix(v, tt.wantLoc) {
					found = true
				}
			}
			if !found {
				t.Errorf("no violation at %q, got %v", tt.wantLoc, violations)
			}
		})
	}
}

func TestContentIssues(t *testing.T) {
	doc := Document{
		"name":        "Sketchy Keygen",
		"description": "A totally legitimate tool.",
		"tags":        []any{"utility"},
	}
	issues := doc.ContentIssues([]string{"keygen", "crack"})
	if len(issues) != 1 {
		t.Fatalf("issues = %v, want exactly one", issues)
	}
	if !strings.Contains(issues[0], "keygen") || !strings.Contains(issues[0], "name") {
		t.Errorf("issue = %q", issues[0])
	}
	if got := doc.ContentIssues(nil); len(got) != 0 {
		t.Errorf("no forbidden words should mean no issues, got %v", got)
	}
}
