package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scenepack/internal/config"
	"scenepack/internal/logging"
	"scenepack/internal/logs"
)

const followPollWait = 2 * time.Second

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		filter logs.Filter
		lines  int
		follow bool
		day    string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show entries from the daily log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := logPathForDay(cfg, day)
			if err != nil {
				return err
			}
			return showLogs(cmd, path, filter, lines, follow, ctx.JSONMode())
		},
	}

	cmd.Flags().StringVar(&filter.RunID, "run", "", "Only show lines from this run id (prefix match)")
	cmd.Flags().StringVar(&filter.Movie, "movie", "", "Only show lines for this movie")
	cmd.Flags().StringVar(&filter.Stage, "stage", "", "Only show lines for this stage")
	cmd.Flags().StringVar(&filter.MinLevel, "level", "", "Minimum level (debug, info, warn, error)")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to read before filtering")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&day, "day", "", "Day to read (YYYY-MM-DD, default today)")

	return cmd
}

func logPathForDay(cfg *config.Config, day string) (string, error) {
	when := time.Now()
	if day = strings.TrimSpace(day); day != "" {
		parsed, err := time.ParseInLocation("2006-01-02", day, time.Local)
		if err != nil {
			return "", fmt.Errorf("invalid --day %q: expected YYYY-MM-DD", day)
		}
		when = parsed
	}
	return logging.LogFilePath(cfg.Paths.LogDir, when), nil
}

func showLogs(cmd *cobra.Command, path string, filter logs.Filter, lines int, follow, jsonMode bool) error {
	out := cmd.OutOrStdout()
	if lines <= 0 {
		lines = 50
	}

	result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: -1, Limit: lines})
	if err != nil {
		return err
	}
	printEntries(out, logs.Select(result.Lines, filter), jsonMode)
	if !follow {
		return nil
	}

	offset := result.Offset
	for {
		result, err = logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: offset, Follow: true, Wait: followPollWait})
		if err != nil {
			if errors.Is(err, cmd.Context().Err()) {
				return nil
			}
			return err
		}
		offset = result.Offset
		printEntries(out, logs.Select(result.Lines, filter), jsonMode)
	}
}

func printEntries(out io.Writer, entries []logs.Entry, jsonMode bool) {
	for _, entry := range entries {
		if jsonMode {
			fmt.Fprintln(out, entry.Raw)
			continue
		}
		fmt.Fprintln(out, entry.Format())
	}
}
