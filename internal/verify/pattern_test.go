package verify

import (
	"testing"

	"toolshelf/internal/github"
)

var releaseAssets = []github.ReleaseAsset{
	{Name: "Tool-32.0.1-Windows-x64.zip"},
	{Name: "tool_32.0.1_amd64.deb"},
	{Name: "tool-32.0.1-macos.dmg"},
}

func TestCheckPatternPlatforms(t *testing.T) {
	install := map[string]any{
		"platforms": map[string]any{
			"windows": map[string]any{"executable": "Tool.zip"},
			"linux":   map[string]any{"executable": "tool.deb"},
			"macos":   map[string]any{"executable": "other.dmg"},
		},
	}
	findings := CheckPattern(install, releaseAssets)
	if len(findings) != 3 {
		t.Fatalf("findings = %v", findings)
	}
	byPlatform := map[string]Finding{}
	for _, f := range findings {
		byPlatform[f.Platform] = f
	}
	if byPlatform["windows"].Level != "ok" {
		t.Errorf("windows finding = %+v", byPlatform["windows"])
	}
	if byPlatform["linux"].Level != "ok" {
		t.Errorf("linux finding = %+v", byPlatform["linux"])
	}
	if byPlatform["macos"].Level != "warning" {
		t.Errorf("macos finding = %+v", byPlatform["macos"])
	}
}

func TestFilterByPlatformDarwinAssets(t *testing.T) {
	assets := []github.ReleaseAsset{
		{Name: "tool-2.0-darwin-x64.zip"},
		{Name: "tool-2.0-windows-x64.zip"},
		{Name: "unwind-2.0.tar.gz"},
	}

	windows := filterByPlatform(assets, "windows")
	if len(windows) != 1 || windows[0].Name != "tool-2.0-windows-x64.zip" {
		t.Errorf("windows assets = %v", windows)
	}

	macos := filterByPlatform(assets, "macos")
	if len(macos) != 1 || macos[0].Name != "tool-2.0-darwin-x64.zip" {
		t.Errorf("macos assets = %v", macos)
	}
}

func TestCheckPatternFlat(t *testing.T) {
	findings := CheckPattern(map[string]any{"executable": "tool.deb"}, releaseAssets)
	if len(findings) != 1 || findings[0].Level != "ok" {
		t.Fatalf("findings = %v", findings)
	}

	findings = CheckPattern(map[string]any{"type": "executable"}, releaseAssets)
	if len(findings) != 1 || findings[0].Level != "info" {
		t.Fatalf("empty pattern findings = %v", findings)
	}
}

func TestLooselyMatches(t *testing.T) {
	tests := []struct {
		pattern string
		asset   string
		want    bool
	}{
		{"Tool.zip", "Tool-32.0.1-Windows-x64.zip", true},
		{"tool.zip", "tool_31.exe", false},
		{"tool.tar.gz", "tool-1.2-linux.tar.gz", true},
		{"tool.tar.gz", "tool-1.2.gz", false},
		{"other.dmg", "tool-1.2.dmg", false},
	}
	for _, tt := range tests {
		if got := looselyMatches(tt.pattern, tt.asset); got != tt.want {
			t.Errorf("looselyMatches(%q, %q) = %v, want %v", tt.pattern, tt.asset, got, tt.want)
		}
	}
}
