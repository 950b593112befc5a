package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scenepack/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, roots and the run ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"config_path": ctx.configPath,
					"checks":      results,
				})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			lines := renderSectionHeader("scenepack doctor", colorize)
			lines = append(lines, renderStatusLine("Config file", statusInfo, ctx.configPath, colorize))
			if unknown := cfg.UnknownKeys(); len(unknown) > 0 {
				lines = append(lines, renderStatusLine("Unknown keys", statusWarn, strings.Join(unknown, ", "), colorize))
			}
			failed := 0
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
					failed++
				}
				lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))

			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			return nil
		},
	}
}
