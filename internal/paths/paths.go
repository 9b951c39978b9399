package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"toolshelf/internal/config"
)

// CatalogPaths captures canonical locations inside a catalog checkout.
type CatalogPaths struct {
	Root       string
	ConfigFile string
	ToolsDir   string
	APIDir     string
	MetaDir    string
	LogsDir    string
}

// Resolve determines the catalog root using the optional --root flag or the
// current working directory when the flag is empty.
func Resolve(rootFlag string) (CatalogPaths, error) {
	var (
		root string
		err  error
	)

	if rootFlag != "" {
		root, err = filepath.Abs(rootFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return CatalogPaths{}, fmt.Errorf("resolve catalog root: %w", err)
	}

	return newCatalogPaths(root), nil
}

func newCatalogPaths(root string) CatalogPaths {
	metaDir := filepath.Join(root, ".toolshelf")
	return CatalogPaths{
		Root:       root,
		ConfigFile: filepath.Join(root, "toolshelf.yaml"),
		ToolsDir:   filepath.Join(root, "tools"),
		APIDir:     filepath.Join(root, "api"),
		MetaDir:    metaDir,
		LogsDir:    filepath.Join(metaDir, "logs"),
	}
}

// ApplyConfig overrides derived locations with configured ones.
func ApplyConfig(cp CatalogPaths, cfg config.Config) CatalogPaths {
	if out := cfg.Catalog.OutputDir; out != "" {
		if filepath.IsAbs(out) {
			cp.APIDir = filepath.Clean(out)
		} else {
			cp.APIDir = filepath.Join(cp.Root, out)
		}
	}
	return cp
}

// EnsureMetaDirs creates the hidden working directories a run needs.
func (p CatalogPaths) EnsureMetaDirs() error {
	for _, dir := range []string{p.MetaDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure %s: %w", dir, err)
		}
	}
	return nil
}
