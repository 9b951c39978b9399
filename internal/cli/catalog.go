package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"toolshelf/internal/catalog"
)

var catalogAPIDir string

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Generate the catalog API documents",
		RunE:  runCatalog,
	}

	cmd.Flags().StringVar(&catalogAPIDir, "api-dir", "", "Output directory for generated documents (default from config)")

	return cmd
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	env, err := loadEnvironment("catalog")
	if err != nil {
		return err
	}
	defer env.Close()

	outDir := env.Paths.APIDir
	if catalogAPIDir != "" {
		outDir, err = filepath.Abs(catalogAPIDir)
		if err != nil {
			return fmt.Errorf("resolve api dir: %w", err)
		}
	}

	tools, warnings, err := catalog.LoadTools(env.Paths.ToolsDir)
	if err != nil {
		return err
	}
	if len(tools) == 0 {
		return fmt.Errorf("no tool manifests found under %s", env.Paths.ToolsDir)
	}
	env.logf("generating catalog for %d tools into %s", len(tools), outDir)

	gen := catalog.NewGenerator(env.Log)
	files, err := gen.Generate(tools, outDir)
	if err != nil {
		return err
	}

	if outputJSON {
		payload := struct {
			OutputDir string                  `json:"output_dir"`
			Tools     int                     `json:"tools"`
			Files     []catalog.GeneratedFile `json:"files"`
			Warnings  []string                `json:"warnings,omitempty"`
		}{
			OutputDir: outDir,
			Tools:     len(tools),
			Files:     files,
			Warnings:  warnings,
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode catalog json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Output: %s\n", outDir)

	w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tBYTES")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%d\n", f.Name, f.Bytes)
	}
	w.Flush()

	for _, warn := range warnings {
		fmt.Fprintf(out, "  warning: %s\n", warn)
	}
	fmt.Fprintf(out, "Generated %d documents from %d tools\n", len(files), len(tools))
	return nil
}
