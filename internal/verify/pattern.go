package verify

import (
	"fmt"
	"regexp"
	"strings"

	"toolshelf/internal/github"
)

// Finding is one advisory message from the pattern check. Levels are ok,
// warning and info; none of them blocks verification.
type Finding struct {
	Platform string
	Level    string
	Message  string
}

// Name tokens are anchored so "darwin" is never taken for a windows
// asset nor "emacs" for a mac one.
var platformNameTokens = map[string]*regexp.Regexp{
	"windows": regexp.MustCompile(`(^|[^a-z])win(dows)?`),
	"linux":   regexp.MustCompile(`linux`),
	"macos":   regexp.MustCompile(`(^|[^a-z])(mac(os)?|osx|darwin)`),
}

var platformExtensions = map[string][]string{
	"windows": {".exe", ".msi"},
	"linux":   {".deb", ".rpm", ".appimage"},
	"macos":   {".dmg", ".pkg"},
}

// CheckPattern re-checks a manifest's synthesized executable patterns
// against the latest release's real assets, using a looser comparison
// than the resolver: same extension plus overlapping base name.
func CheckPattern(install map[string]any, assets []github.ReleaseAsset) []Finding {
	if platforms, ok := install["platforms"].(map[string]any); ok {
		var findings []Finding
		for _, platform := range []string{"windows", "linux", "macos"} {
			spec, ok := platforms[platform].(map[string]any)
			if !ok {
				continue
			}
			findings = append(findings, checkSpec(platform, spec, assets))
		}
		return findings
	}
	return []Finding{checkSpec("", install, assets)}
}

func checkSpec(platform string, spec map[string]any, assets []github.ReleaseAsset) Finding {
	pattern, _ := spec["executable"].(string)
	if strings.TrimSpace(pattern) == "" {
		return Finding{Platform: platform, Level: "info", Message: "no executable pattern to check"}
	}

	candidates := assets
	if platform != "" {
		if filtered := filterByPlatform(assets, platform); len(filtered) > 0 {
			candidates = filtered
		}
	}
	for _, asset := range candidates {
		if looselyMatches(pattern, asset.Name) {
			return Finding{
				Platform: platform,
				Level:    "ok",
				Message:  fmt.Sprintf("pattern %q matches asset %q", pattern, asset.Name),
			}
		}
	}
	return Finding{
		Platform: platform,
		Level:    "warning",
		Message:  fmt.Sprintf("pattern %q matches none of %d latest-release assets", pattern, len(assets)),
	}
}

func filterByPlatform(assets []github.ReleaseAsset, platform string) []github.ReleaseAsset {
	var out []github.ReleaseAsset
	for _, asset := range assets {
		name := strings.ToLower(asset.Name)
		if token := platformNameTokens[platform]; token != nil && token.MatchString(name) {
			out = append(out, asset)
			continue
		}
		for _, ext := range platformExtensions[platform] {
			if strings.HasSuffix(name, ext) {
				out = append(out, asset)
				break
			}
		}
	}
	return out
}

// looselyMatches accepts when the asset shares the pattern's extension
// and either name contains the other's base.
func looselyMatches(pattern, assetName string) bool {
	pBase, pExt := splitExt(strings.ToLower(pattern))
	aBase, aExt := splitExt(strings.ToLower(assetName))
	if pExt != "" && pExt != aExt {
		return false
	}
	if pBase == "" || aBase == "" {
		return false
	}
	return strings.Contains(aBase, pBase) || strings.Contains(pBase, aBase)
}

var compoundExts = []string{".tar.gz", ".tar.xz", ".tar.bz2"}

func splitExt(name string) (base, ext string) {
	for _, c := range compoundExts {
		if strings.HasSuffix(name, c) {
			return name[:len(name)-len(c)], c
		}
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i], name[i:]
	}
	return name, ""
}
