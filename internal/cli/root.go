package cli

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"toolshelf/internal/config"
	"toolshelf/internal/logx"
	"toolshelf/internal/paths"
)

var (
	catalogRoot  string
	toolsDirFlag string
	outputJSON   bool
)

// Execute runs the root cobra command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toolshelf",
		Short: "Tool catalog validation, verification and generation",
	}

	cmd.PersistentFlags().StringVar(&catalogRoot, "root", "", "Path to catalog root directory")
	cmd.PersistentFlags().StringVar(&toolsDirFlag, "tools-dir", "", "Override the tool manifests directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newCompleteCmd())
	cmd.AddCommand(newCatalogCmd())

	return cmd
}

// environment bundles the state every subcommand needs.
type environment struct {
	Paths  paths.CatalogPaths
	Config config.Config
	Log    *log.Logger
	logf   func(format string, v ...any)
	closer func()
}

// loadEnvironment resolves paths, loads config and opens the run log.
// Log setup failures are not fatal; commands run without a file log.
func loadEnvironment(command string) (*environment, error) {
	pp, err := paths.Resolve(catalogRoot)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pp = paths.ApplyConfig(pp, cfg)
	if toolsDirFlag != "" {
		abs, err := filepath.Abs(toolsDirFlag)
		if err != nil {
			return nil, fmt.Errorf("resolve tools dir: %w", err)
		}
		pp.ToolsDir = abs
	}

	env := &environment{Paths: pp, Config: cfg, closer: func() {}}

	logger, closer, err := logx.New(pp)
	if err == nil {
		env.Log = logger
		env.closer = func() { closer.Close() }
	}
	env.logf = func(format string, v ...any) {
		if env.Log != nil {
			env.Log.Printf(format, v...)
		}
	}
	env.logf("%s started (root=%s)", command, pp.Root)

	return env, nil
}

func (e *environment) Close() {
	e.closer()
}

// listManifests returns the tool manifest paths for a run: the explicit
// args when given, otherwise every .json file under the tools directory.
// Backups are never picked up.
func listManifests(args []string, toolsDir string) ([]string, error) {
	if len(args) > 0 {
		out := make([]string, 0, len(args))
		for _, arg := range args {
			abs, err := filepath.Abs(arg)
			if err != nil {
				return nil, fmt.Errorf("resolve %s: %w", arg, err)
			}
			out = append(out, abs)
		}
		return out, nil
	}

	var found []string
	err := filepath.WalkDir(toolsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".backup") {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("tools directory does not exist: %s", toolsDir)
		}
		return nil, fmt.Errorf("scan tools dir: %w", err)
	}
	sort.Strings(found)
	return found, nil
}

// displayPath shortens a manifest path relative to the catalog root when
// possible.
func displayPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
