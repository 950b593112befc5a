package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scenepack/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the [paths] section to point at your extractor output before running scenepack.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate [stage...]",
		Short:       "Validate the configuration for every stage, or the named ones",
		ValidArgs:   config.Stages(),
		Args:        cobra.OnlyValidArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configFlagValue())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			stages := args
			if len(stages) == 0 {
				stages = config.Stages()
			}

			type stageResult struct {
				Stage string `json:"stage"`
				Valid bool   `json:"valid"`
				Error string `json:"error,omitempty"`
			}
			results := make([]stageResult, 0, len(stages))
			invalid := 0
			for _, stage := range stages {
				res := stageResult{Stage: stage, Valid: true}
				if err := cfg.ValidateStage(stage); err != nil {
					res.Valid = false
					res.Error = err.Error()
					invalid++
				}
				results = append(results, res)
			}

			if ctx.JSONMode() {
				if err := writeJSON(cmd, map[string]any{
					"config_path": path,
					"exists":      exists,
					"stages":      results,
				}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Config path: %s\n", path)
				if !exists {
					fmt.Fprintln(out, "Config file did not exist; defaults were used")
				}
				for _, res := range results {
					if res.Valid {
						fmt.Fprintf(out, "  %-10s ok\n", res.Stage)
					} else {
						fmt.Fprintf(out, "  %-10s %s\n", res.Stage, res.Error)
					}
				}
				if invalid == 0 {
					fmt.Fprintln(out, "Configuration valid")
				}
			}
			if invalid > 0 {
				return fmt.Errorf("configuration invalid for %d of %d stages", invalid, len(stages))
			}
			return nil
		},
	}
}
