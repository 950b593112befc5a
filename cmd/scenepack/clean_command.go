package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scenepack/internal/config"
	"scenepack/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean [stage...]",
		Short: "Remove interrupted output folders",
		Long: `Remove output folders that lack a completion marker, and temp files
left behind by interrupted writes.

Stages default to all of packetize, shots and aggregate. Interrupted folders
are rebuilt by the next run anyway; clean reclaims the space ahead of time.
With workflow.legacy_skip enabled, unmarked folders count as finished and
must not be cleaned.`,
		ValidArgs: config.Stages(),
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Workflow.LegacySkip && !dryRun {
				return fmt.Errorf("workflow.legacy_skip is enabled; unmarked folders are treated as finished (use --dry-run to inspect)")
			}
			stages := args
			if len(stages) == 0 {
				stages = config.Stages()
			}

			logger, _, err := ctx.newLogger(cmd, cfg)
			if err != nil {
				return err
			}

			type rootResult struct {
				Stage   string   `json:"stage"`
				Root    string   `json:"root"`
				Removed []string `json:"removed"`
				Errors  []string `json:"errors"`
			}
			var results []rootResult
			for _, stage := range stages {
				_, root := cfg.StageRoots(stage)
				res := staging.CleanIncomplete(cmd.Context(), root, dryRun, logger)
				entry := rootResult{Stage: stage, Root: root, Removed: res.Removed, Errors: []string{}}
				if entry.Removed == nil {
					entry.Removed = []string{}
				}
				for _, e := range res.Errors {
					entry.Errors = append(entry.Errors, fmt.Sprintf("%s: %v", e.Path, e.Error))
				}
				results = append(results, entry)
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"dry_run": dryRun, "roots": results})
			}

			out := cmd.OutOrStdout()
			verb := "Removed"
			if dryRun {
				verb = "Would remove"
			}
			for _, r := range results {
				fmt.Fprintf(out, "%s: %s %d incomplete entries in %s\n", r.Stage, verb, len(r.Removed), r.Root)
				for _, path := range r.Removed {
					fmt.Fprintf(out, "  %s\n", path)
				}
				for _, e := range r.Errors {
					fmt.Fprintf(out, "  Error: %s\n", e)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would be removed without deleting")
	return cmd
}
