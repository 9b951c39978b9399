package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"toolshelf/internal/github"
	"toolshelf/internal/tui"
	"toolshelf/internal/verify"
)

var (
	verifyUpdate     bool
	verifyWorkers    int
	verifyTimeout    time.Duration
	verifyNoProgress bool
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [manifest...]",
		Short: "Verify tools against their live repositories",
		RunE:  runVerify,
	}

	cmd.Flags().BoolVar(&verifyUpdate, "update", false, "Write verification results back into the manifests")
	cmd.Flags().IntVar(&verifyWorkers, "workers", 0, "Concurrent verifications (default from config)")
	cmd.Flags().DurationVar(&verifyTimeout, "timeout", 0, "Per-request timeout (default from config)")
	cmd.Flags().BoolVar(&verifyNoProgress, "no-progress", false, "Disable interactive progress output")

	return cmd
}

var verifyColumns = []tui.Column{
	{Header: "MANIFEST", Width: 32},
	{Header: "NAME", Width: 24},
	{Header: "STATUS", Width: 12},
	{Header: "SCORE", Width: 5},
	{Header: "STARS", Width: 7},
	{Header: "ISSUES", Width: 6},
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	status := tui.NewStatusWriter(cmd.ErrOrStderr())
	defer status.Stop()

	status.Update("Resolving catalog...")
	env, err := loadEnvironment("verify")
	if err != nil {
		return err
	}
	defer env.Close()

	status.Update("Scanning manifests...")
	manifests, err := listManifests(args, env.Paths.ToolsDir)
	if err != nil {
		return err
	}
	status.Stop()
	if len(manifests) == 0 {
		return fmt.Errorf("no tool manifests found under %s", env.Paths.ToolsDir)
	}

	workers := verifyWorkers
	if workers <= 0 {
		workers = env.Config.Verify.Workers
	}
	timeout := verifyTimeout
	if timeout <= 0 {
		timeout = time.Duration(env.Config.Verify.TimeoutSeconds) * time.Second
	}
	env.logf("verifying %d manifests (workers=%d timeout=%s update=%v)", len(manifests), workers, timeout, verifyUpdate)

	client := github.NewClient(env.Config.GitHub.APIBase, timeout)
	svc := verify.NewService(client, timeout, env.Log)

	opts := verify.BatchOptions{Workers: workers, Update: verifyUpdate}

	outWriter := cmd.OutOrStdout()
	mode := tui.DetectMode(outWriter, verifyNoProgress, outputJSON)

	var reports []verify.Report

	if mode == tui.ModeTUI {
		fmt.Fprintf(outWriter, "Catalog: %s\n", env.Paths.Root)
		model := tui.NewProgressModel("verify", verifyColumns)
		for _, path := range manifests {
			model.AddRow(path, []string{displayPath(env.Paths.Root, path), filepath.Base(path), "pending", "", "", ""})
		}

		err := tui.RunWithWork(outWriter, model, func(send func(tea.Msg)) {
			opts.Reporter = tui.NewVerifyReporter(
				send,
				func(string) map[string]string {
					return map[string]string{"STATUS": "checking"}
				},
				func(rep verify.Report) map[string]string {
					return verifyRowFields(rep)
				},
			)
			reports = svc.VerifyBatch(ctx, manifests, opts)
		})
		if err != nil {
			return err
		}

		printVerifySummary(outWriter, reports)
	} else {
		reports = svc.VerifyBatch(ctx, manifests, opts)

		if mode == tui.ModeJSON {
			if err := writeVerifyJSON(cmd, env.Paths.Root, reports); err != nil {
				return err
			}
		} else {
			writeVerifyTable(cmd, env.Paths.Root, reports)
		}
	}

	failed := 0
	for _, rep := range reports {
		if rep.Err != nil || rep.Status == "failed" {
			failed++
		}
	}
	env.logf("verify finished (failed=%d)", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d tools failed verification", failed, len(reports))
	}
	return nil
}

// verifyRowFields maps a finished report onto the progress table columns.
func verifyRowFields(rep verify.Report) map[string]string {
	fields := map[string]string{
		"STATUS": rep.Status,
		"SCORE":  strconv.Itoa(rep.Overall),
	}
	if rep.Err != nil {
		fields["STATUS"] = "error"
	}
	if rep.Name != "" {
		fields["NAME"] = rep.Name
	}
	if rep.Repo.Accessible {
		fields["STARS"] = strconv.Itoa(rep.Repo.Metrics.Stars)
	} else {
		fields["STARS"] = "-"
	}
	fields["ISSUES"] = strconv.Itoa(len(rep.Repo.Issues))
	return fields
}

type verifyRowResult struct {
	Path     string   `json:"path"`
	Name     string   `json:"name,omitempty"`
	Slug     string   `json:"slug,omitempty"`
	Status   string   `json:"status"`
	Score    int      `json:"score"`
	Stars    int      `json:"stars"`
	Issues   []string `json:"issues,omitempty"`
	Findings []string `json:"findings,omitempty"`
	Duration string   `json:"duration"`
	Error    string   `json:"error,omitempty"`
}

func verifyResults(root string, reports []verify.Report) []verifyRowResult {
	rows := make([]verifyRowResult, 0, len(reports))
	for _, rep := range reports {
		row := verifyRowResult{
			Path:     displayPath(root, rep.Path),
			Name:     rep.Name,
			Slug:     rep.Slug,
			Status:   rep.Status,
			Score:    rep.Overall,
			Stars:    rep.Repo.Metrics.Stars,
			Issues:   rep.Repo.Issues,
			Duration: rep.Duration.Round(time.Millisecond).String(),
		}
		for _, f := range rep.Findings {
			row.Findings = append(row.Findings, fmt.Sprintf("%s/%s: %s", f.Platform, f.Level, f.Message))
		}
		if rep.Err != nil {
			row.Error = rep.Err.Error()
		}
		rows = append(rows, row)
	}
	return rows
}

func writeVerifyJSON(cmd *cobra.Command, root string, reports []verify.Report) error {
	rows := verifyResults(root, reports)

	counts := map[string]int{}
	for _, row := range rows {
		counts[row.Status]++
	}

	payload := struct {
		Tools   []verifyRowResult `json:"tools"`
		Total   int               `json:"total"`
		Summary map[string]int    `json:"summary"`
	}{
		Tools:   rows,
		Total:   len(rows),
		Summary: counts,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode verify json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func writeVerifyTable(cmd *cobra.Command, root string, reports []verify.Report) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Catalog: %s\n", root)

	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "MANIFEST\tNAME\tSTATUS\tSCORE\tSTARS\tISSUES")
	for _, rep := range reports {
		stars := "-"
		if rep.Repo.Accessible {
			stars = strconv.Itoa(rep.Repo.Metrics.Stars)
		}
		status := rep.Status
		if rep.Err != nil {
			status = "error"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%d\n",
			displayPath(root, rep.Path),
			tui.NonEmptyOrDash(rep.Name),
			status,
			rep.Overall,
			stars,
			len(rep.Repo.Issues),
		)
	}
	tw.Flush()

	for _, rep := range reports {
		for _, issue := range rep.Repo.Issues {
			fmt.Fprintf(w, "  %s: %s\n", displayPath(root, rep.Path), issue)
		}
		if rep.Err != nil {
			fmt.Fprintf(w, "  %s: error: %v\n", displayPath(root, rep.Path), rep.Err)
		}
	}

	printVerifySummary(w, reports)
}

func printVerifySummary(w io.Writer, reports []verify.Report) {
	var verified, conditional, review, failed int
	for _, rep := range reports {
		switch {
		case rep.Err != nil:
			failed++
		case rep.Status == "verified":
			verified++
		case rep.Status == "conditional":
			conditional++
		case rep.Status == "failed":
			failed++
		default:
			review++
		}
	}
	fmt.Fprintf(w, "Verified: %d, Conditional: %d, Needs review: %d, Failed: %d\n",
		verified, conditional, review, failed)
}
