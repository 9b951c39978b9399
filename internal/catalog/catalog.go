// Package catalog aggregates tool manifests into the static JSON
// documents a catalog site serves: the main catalog, a category index, a
// search index and summary statistics. Output is deterministic for a
// fixed tool set and clock.
package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"toolshelf/internal/manifest"
)

// Logger is the minimal logging surface the generator needs.
type Logger interface {
	Printf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Tool is one loaded manifest plus its identity within the catalog.
type Tool struct {
	Slug string
	Path string
	Doc  manifest.Document
}

// LoadTools reads every manifest under toolsDir, recursively. Unreadable
// or malformed files become warnings, not errors, so one broken manifest
// cannot take the whole catalog down.
func LoadTools(toolsDir string) ([]Tool, []string, error) {
	var (
		tools    []Tool
		warnings []string
	)
	err := filepath.WalkDir(toolsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") || strings.HasSuffix(path, manifest.BackupSuffix) {
			return nil
		}
		doc, err := manifest.Load(path)
		if err != nil {
			warnings = append(warnings, err.Error())
			return nil
		}
		slug := doc.String("slug")
		if slug == "" {
			slug = manifest.Slugify(doc.String("name"))
		}
		if slug == "" {
			warnings = append(warnings, fmt.Sprintf("%s: no name or slug, skipped", path))
			return nil
		}
		tools = append(tools, Tool{Slug: slug, Path: path, Doc: doc})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk tools dir: %w", err)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Slug < tools[j].Slug })
	return tools, warnings, nil
}

// Generator renders the catalog documents.
type Generator struct {
	logger Logger
	now    func() time.Time
}

// NewGenerator builds a Generator. A nil logger is replaced with a no-op
// one.
func NewGenerator(logger Logger) *Generator {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Generator{logger: logger, now: time.Now}
}

// GeneratedFile names one rendered document.
type GeneratedFile struct {
	Name  string `json:"name"`
	Bytes int    `json:"bytes"`
}

// Generate writes every catalog document under outDir and finishes with
// a manifest listing what it produced.
func (g *Generator) Generate(tools []Tool, outDir string) ([]GeneratedFile, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure output dir: %w", err)
	}

	stamp := g.now().UTC().Format(time.RFC3339)
	documents := []struct {
		name  string
		value any
	}{
		{"catalog.json", g.catalogDocument(tools, stamp)},
		{"categories.json", g.categoriesDocument(tools, stamp)},
		{"search.json", g.searchDocument(tools, stamp)},
		{"stats.json", g.statsDocument(tools, stamp)},
	}

	var files []GeneratedFile
	for _, doc := range documents {
		n, err := writeJSON(filepath.Join(outDir, doc.name), doc.value)
		if err != nil {
			return files, err
		}
		files = append(files, GeneratedFile{Name: doc.name, Bytes: n})
		g.logger.Printf("catalog: wrote %s (%d bytes)", doc.name, n)
	}

	generated := map[string]any{
		"generated": stamp,
		"files":     files,
	}
	n, err := writeJSON(filepath.Join(outDir, "manifest.json"), generated)
	if err != nil {
		return files, err
	}
	files = append(files, GeneratedFile{Name: "manifest.json", Bytes: n})
	return files, nil
}

func writeJSON(path string, value any) (int, error) {
	buf, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	buf = append(buf, '\n')
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return len(buf), nil
}

func (g *Generator) catalogDocument(tools []Tool, stamp string) map[string]any {
	entries := make([]map[string]any, 0, len(tools))
	for _, tool := range tools {
		entries = append(entries, catalogEntry(tool))
	}
	// Highest verification score first, stars as the tie-break, slug as
	// the stable fallback.
	sort.SliceStable(entries, func(i, j int) bool {
		si, sj := entryScore(entries[i]), entryScore(entries[j])
		if si != sj {
			return si > sj
		}
		ti, tj := entryStars(entries[i]), entryStars(entries[j])
		if ti != tj {
			return ti > tj
		}
		return entries[i]["slug"].(string) < entries[j]["slug"].(string)
	})
	return map[string]any{
		"generated": stamp,
		"version":   1,
		"count":     len(entries),
		"tools":     entries,
	}
}

func catalogEntry(tool Tool) map[string]any {
	doc := tool.Doc
	entry := map[string]any{
		"slug":        tool.Slug,
		"name":        doc.String("name"),
		"description": firstNonEmpty(doc.String("short-description"), doc.String("description")),
		"repository":  doc.String("repository"),
	}
	for _, key := range []string{"category", "language", "license", "platforms", "tags", "verification", "metrics"} {
		if doc.Has(key) {
			entry[key] = doc[key]
		}
	}
	return entry
}

func entryScore(entry map[string]any) float64 {
	verification, _ := entry["verification"].(map[string]any)
	s, _ := verification["score"].(float64)
	return s
}

func entryStars(entry map[string]any) float64 {
	metrics, _ := entry["metrics"].(map[string]any)
	s, _ := metrics["stars"].(float64)
	return s
}

func (g *Generator) categoriesDocument(tools []Tool, stamp string) map[string]any {
	categories := map[string]*categoryInfo{}
	for _, tool := range tools {
		name := tool.Doc.String("category")
		if name == "" {
			name = "uncategorized"
		}
		info := categories[name]
		if info == nil {
			info = &categoryInfo{}
			categories[name] = info
		}
		info.Count++
		info.Tools = append(info.Tools, tool.Slug)
	}
	for _, info := range categories {
		sort.Strings(info.Tools)
	}
	return map[string]any{
		"generated":  stamp,
		"count":      len(categories),
		"categories": categories,
	}
}

type categoryInfo struct {
	Count int      `json:"count"`
	Tools []string `json:"tools"`
}

func (g *Generator) searchDocument(tools []Tool, stamp string) map[string]any {
	words := map[string][]string{}
	filters := map[string]map[string]bool{
		"categories": {},
		"languages":  {},
		"licenses":   {},
		"platforms":  {},
		"tags":       {},
	}

	for _, tool := range tools {
		doc := tool.Doc
		for _, word := range indexWords(doc.String("name") + " " + doc.String("description")) {
			words[word] = appendUnique(words[word], tool.Slug)
		}
		for _, tag := range doc.Strings("tags") {
			words[tag] = appendUnique(words[tag], tool.Slug)
			filters["tags"][tag] = true
		}
		if v := doc.String("category"); v != "" {
			filters["categories"][v] = true
		}
		if v := doc.String("language"); v != "" {
			filters["languages"][v] = true
		}
		if v := doc.String("license"); v != "" {
			filters["licenses"][v] = true
		}
		for _, v := range doc.Strings("platforms") {
			filters["platforms"][v] = true
		}
	}

	filterLists := map[string][]string{}
	for name, set := range filters {
		filterLists[name] = sortedKeys(set)
	}
	return map[string]any{
		"generated": stamp,
		"index":     words,
		"filters":   filterLists,
	}
}

func (g *Generator) statsDocument(tools []Tool, stamp string) map[string]any {
	statuses := map[string]int{}
	languages := map[string]int{}
	distribution := map[string]int{"0-24": 0, "25-49": 0, "50-74": 0, "75-100": 0}
	type starred struct {
		Slug  string `json:"slug"`
		Stars int    `json:"stars"`
	}
	var topStarred []starred

	for _, tool := range tools {
		doc := tool.Doc
		status := "pending"
		verificationScore := 0.0
		if verification, ok := doc["verification"].(map[string]any); ok {
			if s, ok := verification["status"].(string); ok && s != "" {
				status = s
			}
			verificationScore, _ = verification["score"].(float64)
		}
		statuses[status]++
		switch {
		case verificationScore >= 75:
			distribution["75-100"]++
		case verificationScore >= 50:
			distribution["50-74"]++
		case verificationScore >= 25:
			distribution["25-49"]++
		default:
			distribution["0-24"]++
		}

		if language := doc.String("language"); language != "" {
			languages[language]++
		}
		if metrics, ok := doc["metrics"].(map[string]any); ok {
			if stars, ok := metrics["stars"].(float64); ok {
				topStarred = append(topStarred, starred{Slug: tool.Slug, Stars: int(stars)})
			}
		}
	}

	sort.Slice(topStarred, func(i, j int) bool {
		if topStarred[i].Stars != topStarred[j].Stars {
			return topStarred[i].Stars > topStarred[j].Stars
		}
		return topStarred[i].Slug < topStarred[j].Slug
	})
	if len(topStarred) > 10 {
		topStarred = topStarred[:10]
	}

	return map[string]any{
		"generated":            stamp,
		"total_tools":          len(tools),
		"verification_status":  statuses,
		"quality_distribution": distribution,
		"languages":            languages,
		"top_starred":          topStarred,
	}
}

func indexWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	seen := map[string]bool{}
	var out []string
	for _, f := range fields {
		if len(f) < 3 || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, item := range list {
		if item == v {
			return list
		}
	}
	return append(list, v)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
