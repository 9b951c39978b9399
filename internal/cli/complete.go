package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"toolshelf/internal/complete"
	"toolshelf/internal/github"
)

var (
	completeDryRun  bool
	completeVerbose bool
)

func newCompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete [manifest...]",
		Short: "Fill the missing fields of legacy tool manifests",
		RunE:  runComplete,
	}

	cmd.Flags().BoolVar(&completeDryRun, "dry-run", false, "Compute completions without writing anything")
	cmd.Flags().BoolVar(&completeVerbose, "verbose", false, "List every added field and warning")

	return cmd
}

type completeRowResult struct {
	Path          string   `json:"path"`
	Skipped       bool     `json:"skipped"`
	Added         []string `json:"added,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	BackupCreated bool     `json:"backup_created"`
	Error         string   `json:"error,omitempty"`
}

func runComplete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := loadEnvironment("complete")
	if err != nil {
		return err
	}
	defer env.Close()

	manifests, err := listManifests(args, env.Paths.ToolsDir)
	if err != nil {
		return err
	}
	if len(manifests) == 0 {
		return fmt.Errorf("no tool manifests found under %s", env.Paths.ToolsDir)
	}
	env.logf("completing %d manifests (dry-run=%v)", len(manifests), completeDryRun)

	client := github.NewClient(env.Config.GitHub.APIBase, time.Duration(env.Config.GitHub.TimeoutSeconds)*time.Second)
	completer := complete.New(client, env.Log)

	opts := complete.Options{DryRun: completeDryRun}

	rows := make([]completeRowResult, 0, len(manifests))
	failed := 0
	for _, path := range manifests {
		res, err := completer.CompleteFile(ctx, path, opts)
		row := completeRowResult{Path: displayPath(env.Paths.Root, path)}
		if err != nil {
			failed++
			row.Error = err.Error()
		} else {
			row.Skipped = res.Skipped
			row.Added = res.Added
			row.Warnings = res.Warnings
			row.BackupCreated = res.BackupCreated
		}
		rows = append(rows, row)
	}

	if outputJSON {
		if err := writeCompleteJSON(cmd, rows); err != nil {
			return err
		}
	} else {
		writeCompleteTable(cmd, rows)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d manifests could not be completed", failed, len(rows))
	}
	return nil
}

func writeCompleteJSON(cmd *cobra.Command, rows []completeRowResult) error {
	completed := 0
	for _, row := range rows {
		if !row.Skipped && row.Error == "" {
			completed++
		}
	}

	payload := struct {
		Manifests []completeRowResult `json:"manifests"`
		Total     int                 `json:"total"`
		Completed int                 `json:"completed"`
		DryRun    bool                `json:"dry_run"`
	}{
		Manifests: rows,
		Total:     len(rows),
		Completed: completed,
		DryRun:    completeDryRun,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode complete json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func writeCompleteTable(cmd *cobra.Command, rows []completeRowResult) {
	out := cmd.OutOrStdout()

	w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "MANIFEST\tSTATUS\tADDED\tWARNINGS")
	completed, skipped := 0, 0
	for _, row := range rows {
		status := "completed"
		switch {
		case row.Error != "":
			status = "error"
		case row.Skipped:
			status = "skipped"
			skipped++
		default:
			completed++
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", row.Path, status, len(row.Added), len(row.Warnings))
	}
	w.Flush()

	for _, row := range rows {
		if row.Error != "" {
			fmt.Fprintf(out, "  %s: error: %s\n", row.Path, row.Error)
		}
		if completeVerbose {
			if len(row.Added) > 0 {
				fmt.Fprintf(out, "  %s: added %s\n", row.Path, strings.Join(row.Added, ", "))
			}
			for _, warn := range row.Warnings {
				fmt.Fprintf(out, "  %s: warning: %s\n", row.Path, warn)
			}
		}
	}

	suffix := ""
	if completeDryRun {
		suffix = " (dry run, nothing written)"
	}
	fmt.Fprintf(out, "Completed: %d, Skipped: %d%s\n", completed, skipped, suffix)
}
