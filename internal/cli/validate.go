package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"toolshelf/internal/github"
	"toolshelf/internal/verify"
)

var validateVerbose bool

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [manifest...]",
		Short: "Validate tool manifests against the schema and content rules",
		RunE:  runValidate,
	}

	cmd.Flags().BoolVar(&validateVerbose, "verbose", false, "Print every warning, not just counts")

	return cmd
}

type validateRowResult struct {
	Path     string   `json:"path"`
	Name     string   `json:"name,omitempty"`
	Valid    bool     `json:"valid"`
	Score    int      `json:"score"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := loadEnvironment("validate")
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
	env.logf("validating %d manifests", len(manifests))

	client := github.NewClient(env.Config.GitHub.APIBase, time.Duration(env.Config.GitHub.TimeoutSeconds)*time.Second)
	validator := verify.NewValidator(client, env.Config.Scoring.Weights, env.Config.Scoring.ReviewThreshold, env.Config.Content.ForbiddenWords, env.Log)

	rows := make([]validateRowResult, 0, len(manifests))
	invalid := 0
	for _, path := range manifests {
		res := validator.ValidateFile(ctx, path)
		if !res.Valid {
			invalid++
		}
		rows = append(rows, validateRowResult{
			Path:     displayPath(env.Paths.Root, path),
			Name:     res.Name,
			Valid:    res.Valid,
			Score:    res.Score,
			Errors:   res.Errors,
			Warnings: res.Warnings,
		})
	}

	if outputJSON {
		if err := writeValidateJSON(cmd, rows, invalid); err != nil {
			return err
		}
	} else {
		writeValidateTable(cmd, rows)
		fmt.Fprintf(cmd.OutOrStdout(), "Validated: %d, Invalid: %d\n", len(rows), invalid)
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d manifests invalid", invalid, len(rows))
	}
	return nil
}

func writeValidateJSON(cmd *cobra.Command, rows []validateRowResult, invalid int) error {
	payload := struct {
		Manifests []validateRowResult `json:"manifests"`
		Total     int                 `json:"total"`
		Invalid   int                 `json:"invalid"`
	}{
		Manifests: rows,
		Total:     len(rows),
		Invalid:   invalid,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode validate json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func writeValidateTable(cmd *cobra.Command, rows []validateRowResult) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "MANIFEST\tNAME\tVALID\tSCORE\tERRORS\tWARNINGS")
	for _, row := range rows {
		valid := "yes"
		if !row.Valid {
			valid = "NO"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			row.Path, row.Name, valid, row.Score, len(row.Errors), len(row.Warnings))
	}
	w.Flush()

	for _, row := range rows {
		for _, e := range row.Errors {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: error: %s\n", row.Path, e)
		}
		if validateVerbose {
			for _, warn := range row.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: warning: %s\n", row.Path, warn)
			}
		}
	}
}
