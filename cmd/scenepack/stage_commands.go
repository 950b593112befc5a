package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"scenepack/internal/config"
	"scenepack/internal/ledger"
	"scenepack/internal/logging"
	"scenepack/internal/workflow"
)

type stageFunc func(context.Context, *workflow.Runner) ([]*workflow.Summary, error)

func newStageCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newStageCommand(ctx, config.StagePacketize, "Split extractor output into packet folders"),
		newStageCommand(ctx, config.StageShots, "Detect shot boundaries and packetize the boundary frames"),
		newStageCommand(ctx, config.StageAggregate, "Write per-movie aggregate feature vectors"),
	}
}

func newStageCommand(ctx *commandContext, stage, short string) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   stage,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runStages(cmd, workers, func(runCtx context.Context, r *workflow.Runner) ([]*workflow.Summary, error) {
				summary, err := r.Run(runCtx, stage)
				if summary == nil {
					return nil, err
				}
				return []*workflow.Summary{summary}, err
			})
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Override workflow.workers for this run")
	return cmd
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run packetize, shots and aggregate in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runStages(cmd, workers, func(runCtx context.Context, r *workflow.Runner) ([]*workflow.Summary, error) {
				return r.RunAll(runCtx)
			})
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Override workflow.workers for this run")
	return cmd
}

// runStages wires config, logger and ledger into a runner, executes fn and
// prints the summaries. Only stage-level errors make the command fail.
func (c *commandContext) runStages(cmd *cobra.Command, workers int, fn stageFunc) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if workers > 0 {
		copied := *cfg
		copied.Workflow.Workers = workers
		cfg = &copied
	}

	logger, logPath, err := c.newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	return c.withLedger(cfg, func(store *ledger.Store) error {
		runner := workflow.NewRunner(cfg, store, logger)
		summaries, runErr := fn(cmd.Context(), runner)

		if err := c.renderSummaries(cmd, summaries); err != nil {
			return err
		}
		runMaintenance(cmd.Context(), logger, cfg, store, logPath)
		return runErr
	})
}

func (c *commandContext) renderSummaries(cmd *cobra.Command, summaries []*workflow.Summary) error {
	if c.JSONMode() {
		return writeJSON(cmd, summariesJSON(summaries))
	}
	out := cmd.OutOrStdout()
	for i, summary := range summaries {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprint(out, renderSummary(summary))
	}
	return nil
}

// runMaintenance prunes old log files and ledger runs past the retention
// window.
func runMaintenance(ctx context.Context, logger *slog.Logger, cfg *config.Config, store *ledger.Store, logPath string) {
	days := cfg.Logging.RetentionDays
	if days <= 0 {
		return
	}
	logging.PruneLogs(logger, cfg.Paths.LogDir, days, logPath)
	if store == nil {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	pruned, err := store.PruneRuns(context.WithoutCancel(ctx), cutoff)
	if err != nil {
		logging.WarnWithContext(logger, "ledger pruning failed", "ledger_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run scenepack doctor to check the ledger database"),
		)
		return
	}
	if pruned > 0 {
		logger.Info("pruned ledger runs",
			logging.Int("runs", int(pruned)),
			logging.String(logging.FieldEventType, "ledger_pruned"),
		)
	}
}
