// Package complete brings legacy tool manifests up to the modern schema.
// Every derivation is additive: a field the manifest author already wrote
// is never overwritten.
package complete

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"toolshelf/internal/github"
	"toolshelf/internal/manifest"
	"toolshelf/internal/resolve"
)

// Logger is the minimal logging surface the completer needs.
type Logger interface {
	Printf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Completer fills the missing fields of legacy manifests from repository
// and release data.
type Completer struct {
	client *github.Client
	logger Logger
}

// New builds a Completer. A nil logger is replaced with a no-op one.
func New(client *github.Client, logger Logger) *Completer {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Completer{client: client, logger: logger}
}

// Options controls a completion run.
type Options struct {
	// DryRun computes the completed document without writing the
	// manifest or its backup.
	DryRun bool
}

// Result describes what one completion run did to one manifest.
type Result struct {
	Path          string
	Skipped       bool // manifest was already modern
	Added         []string
	Warnings      []string
	BackupCreated bool
	Document      manifest.Document
}

// CompleteFile loads, completes and persists one manifest. Remote and
// write failures surface as warnings on the result; only input errors
// (unreadable or malformed manifest) are returned as errors.
func (c *Completer) CompleteFile(ctx context.Context, path string, opts Options) (*Result, error) {
	doc, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}

	result := &Result{Path: path, Document: doc}
	if !doc.IsLegacy() {
		result.Skipped = true
		return result, nil
	}

	result.Added, result.Warnings = c.Complete(ctx, doc)
	c.logger.Printf("complete %s: added %d fields", path, len(result.Added))
	if opts.DryRun {
		return result, nil
	}

	created, err := manifest.WriteBackupOnce(path)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("backup not written, manifest left untouched: %v", err))
		return result, nil
	}
	result.BackupCreated = created

	if err := doc.Save(path); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("completed manifest not written: %v", err))
	}
	return result, nil
}

// Complete fills every missing field of doc in place and reports which
// keys were added, plus warnings for degraded derivations.
func (c *Completer) Complete(ctx context.Context, doc manifest.Document) (added []string, warnings []string) {
	record := func(key string, value any) {
		if doc.SetDefault(key, value) {
			added = append(added, key)
		}
	}

	if name := doc.String("name"); name != "" {
		record("slug", manifest.Slugify(name))
	}
	if desc := doc.String("description"); desc != "" {
		record("short-description", truncate(desc, 100))
	}

	repo, release, fetchWarnings := c.fetchRemote(ctx, doc.String("repository"))
	warnings = append(warnings, fetchWarnings...)

	var assets []resolve.Asset
	if release != nil {
		for _, a := range release.Assets {
			assets = append(assets, resolve.Asset{
				Name:        a.Name,
				DownloadURL: a.BrowserDownloadURL,
				SizeBytes:   a.Size,
			})
		}
	}

	language := ""
	if repo != nil {
		language = repo.Language
	}
	platforms := derivePlatforms(assets, language)
	record("platforms", toAnySlice(platforms))

	if repo != nil {
		record("language", mapLanguage(repo.Language))
		if repo.License != nil {
			record("license", licenseName(repo.License))
		}
		if repo.Owner.Login != "" {
			record("author", repo.Owner.Login)
		}
		if repo.Homepage != "" {
			record("website", repo.Homepage)
			record("configuration", map[string]any{"type": "url", "url": repo.Homepage})
		}
		if tags := sanitizeTags(repo.Topics); len(tags) > 0 {
			record("tags", toAnySlice(tags))
		}
	}

	record("compatibility", map[string]any{
		"sunshine":  true,
		"apollo":    false,
		"platforms": toAnySlice(compatibilityPlatforms(platforms)),
	})

	install, installWarnings := buildInstallation(assets)
	warnings = append(warnings, installWarnings...)
	record("installation", install)
	record("uninstallation", map[string]any{
		"type": "manual",
		"path": "",
		"args": []any{},
	})
	record("screenshots", []any{})
	record("icon", "")

	sort.Strings(added)
	return added, warnings
}

func (c *Completer) fetchRemote(ctx context.Context, repoURL string) (*github.Repo, *github.Release, []string) {
	if repoURL == "" {
		return nil, nil, []string{"no repository url, completing from defaults only"}
	}
	owner, name, err := github.ParseRepoURL(repoURL)
	if err != nil {
		return nil, nil, []string{err.Error()}
	}

	var warnings []string
	repo, err := c.client.Repo(ctx, owner, name)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("repository metadata unavailable: %v", err))
	}
	release, err := c.client.LatestRelease(ctx, owner, name)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("latest release unavailable: %v", err))
	}
	return repo, release, warnings
}

func buildInstallation(assets []resolve.Asset) (any, []string) {
	if len(assets) == 0 {
		return installValue(resolve.StubInstall()), []string{"no release assets, installation stubbed for manual completion"}
	}
	matches := resolve.ResolveAssets(assets)
	if len(matches) == 0 {
		return installValue(resolve.BuildSingleInstall(assets[0])),
			[]string{fmt.Sprintf("no platform rule matched any of %d assets, using %s", len(assets), assets[0].Name)}
	}
	return installValue(resolve.BuildInstallConfig(matches)), nil
}

// installValue converts the typed installation config into the generic
// JSON shape manifests are made of.
func installValue(cfg resolve.InstallConfig) any {
	buf, err := json.Marshal(cfg)
	if err != nil {
		return map[string]any{}
	}
	var out any
	if err := json.Unmarshal(buf, &out); err != nil {
		return map[string]any{}
	}
	return out
}

// crossPlatformLanguages are primary languages whose tools usually run
// anywhere without a platform-specific build.
var crossPlatformLanguages = map[string]bool{
	"Python":     true,
	"JavaScript": true,
	"TypeScript": true,
	"Java":       true,
	"Go":         true,
	"Rust":       true,
	"Ruby":       true,
}

// windowsToken and macToken are anchored so "darwin" never reads as a
// windows marker and "emacs" never reads as a mac one.
var (
	windowsToken = regexp.MustCompile(`(^|[^a-z])win(dows)?`)
	macToken     = regexp.MustCompile(`(^|[^a-z])(mac(os)?|osx|darwin)`)
)

func derivePlatforms(assets []resolve.Asset, language string) []string {
	seen := map[string]bool{}
	for _, asset := range assets {
		name := strings.ToLower(asset.Name)
		if windowsToken.MatchString(name) || strings.HasSuffix(name, ".exe") ||
			strings.HasSuffix(name, ".msi") {
			seen["Windows"] = true
		}
		if strings.Contains(name, "linux") || strings.HasSuffix(name, ".deb") ||
			strings.HasSuffix(name, ".rpm") || strings.HasSuffix(name, ".appimage") {
			seen["Linux"] = true
		}
		if macToken.MatchString(name) || strings.HasSuffix(name, ".dmg") ||
			strings.HasSuffix(name, ".pkg") {
			seen["macOS"] = true
		}
	}

	var out []string
	for _, p := range []string{"Windows", "Linux", "macOS"} {
		if seen[p] {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		return out
	}
	if crossPlatformLanguages[language] {
		return []string{"Cross-platform"}
	}
	return []string{"Windows", "Linux", "macOS"}
}

func compatibilityPlatforms(platforms []string) []string {
	var out []string
	for _, p := range platforms {
		switch p {
		case "Windows":
			out = append(out, "windows")
		case "Linux":
			out = append(out, "linux")
		case "macOS":
			out = append(out, "macos")
		case "Cross-platform":
			return []string{"windows", "linux", "macos"}
		}
	}
	if len(out) == 0 {
		return []string{"windows", "linux", "macos"}
	}
	return out
}

// languageVocabulary restricts the manifest language field to a known
// set; anything else maps to Other.
var languageVocabulary = map[string]bool{
	"Python": true, "JavaScript": true, "TypeScript": true,
	"C": true, "C++": true, "C#": true, "Rust": true, "Go": true,
	"Java": true, "Kotlin": true, "Swift": true, "Ruby": true,
	"PHP": true, "Shell": true, "PowerShell": true,
}

func mapLanguage(language string) string {
	if languageVocabulary[language] {
		return language
	}
	return "Other"
}

func licenseName(l *github.License) string {
	if l.SPDXID != "" && l.SPDXID != "NOASSERTION" {
		return l.SPDXID
	}
	if l.Name != "" {
		return l.Name
	}
	return l.Key
}

var tagPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// sanitizeTags lowercases repository topics and keeps at most eight that
// fit the manifest tag shape.
func sanitizeTags(topics []string) []string {
	var out []string
	for _, topic := range topics {
		tag := strings.ToLower(strings.TrimSpace(topic))
		tag = strings.ReplaceAll(tag, "_", "-")
		if tag == "" || len(tag) > 20 || !tagPattern.MatchString(tag) {
			continue
		}
		out = append(out, tag)
		if len(out) == 8 {
			break
		}
	}
	return out
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
