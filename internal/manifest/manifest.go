// Package manifest handles the persisted JSON documents describing
// catalog tools: loading, atomic saving, the one-time pre-completion
// backup, slug derivation and schema validation.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// BackupSuffix is appended to a manifest path for its pre-completion copy.
const BackupSuffix = ".backup"

// Document is one tool manifest as a generic JSON object. Keeping the
// raw shape lets the auto-completer add fields without disturbing
// anything the manifest author wrote.
type Document map[string]any

// Load reads and parses one manifest file.
func Load(path string) (Document, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", filepath.Base(path), err)
	}
	// json "null" leaves the map nil without an unmarshal error.
	if doc == nil {
		return nil, fmt.Errorf("parse manifest %s: not a JSON object", filepath.Base(path))
	}
	return doc, nil
}

// Save writes the document atomically via a sibling temp file. Output is
// stable for a given document: two-space indent with sorted object keys.
func (d Document) Save(path string) error {
	buf, err := d.Encode()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".manifest-*.json")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("write manifest temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close manifest temp: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// Encode renders the document in its canonical on-disk form.
func (d Document) Encode() ([]byte, error) {
	buf, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append(buf, '\n'), nil
}

// WriteBackupOnce copies path to path plus BackupSuffix unless that copy
// already exists. It reports whether a new backup was written.
func WriteBackupOnce(path string) (bool, error) {
	backupPath := path + BackupSuffix
	if _, err := os.Stat(backupPath); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat backup: %w", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read original for backup: %w", err)
	}
	if err := os.WriteFile(backupPath, contents, 0o644); err != nil {
		return false, fmt.Errorf("write backup: %w", err)
	}
	return true, nil
}

// Has reports whether the document carries key at the top level.
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// SetDefault stores value under key only when the key is absent. It
// reports whether the value was stored.
func (d Document) SetDefault(key string, value any) bool {
	if d.Has(key) {
		return false
	}
	d[key] = value
	return true
}

// String returns the value under key when it is a string, else "".
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Strings returns the value under key as a string slice, tolerating the
// []any shape JSON decoding produces.
func (d Document) Strings(key string) []string {
	switch v := d[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// modernKeys are the fields whose collective absence marks a manifest as
// legacy and eligible for auto-completion.
var modernKeys = []string{"installation", "uninstallation", "compatibility", "slug"}

// IsLegacy reports whether the document predates the modern schema.
func (d Document) IsLegacy() bool {
	for _, key := range modernKeys {
		if d.Has(key) {
			return false
		}
	}
	return true
}

var (
	slugStripPattern    = regexp.MustCompile(`[^a-zA-Z0-9\s_-]`)
	slugCollapsePattern = regexp.MustCompile(`[-\s]+`)
)

// Slugify derives the URL-safe identifier from a tool name: strip
// anything but alphanumerics, whitespace, hyphens and underscores, then
// collapse whitespace runs to single hyphens and lower-case the result.
func Slugify(name string) string {
	s := slugStripPattern.ReplaceAllString(name, "")
	s = slugCollapsePattern.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.ToLower(s)
}
