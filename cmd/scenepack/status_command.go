package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"scenepack/internal/config"
	"scenepack/internal/ledger"
	"scenepack/internal/staging"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var outputs bool

	cmd := &cobra.Command{
		Use:   "status [run-id]",
		Short: "Show recent runs, one run's movies, or the output folders",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if outputs {
				return ctx.showOutputs(cmd, cfg)
			}
			if !cfg.Ledger.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Run ledger disabled (ledger.enabled = false)")
				return nil
			}
			return ctx.withLedger(cfg, func(store *ledger.Store) error {
				if len(args) == 1 {
					return ctx.showRun(cmd, store, args[0])
				}
				return ctx.showRuns(cmd, store, limit)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of recent runs to list")
	cmd.Flags().BoolVar(&outputs, "outputs", false, "List output folders and their completion state")
	return cmd
}

func (c *commandContext) showRuns(cmd *cobra.Command, store *ledger.Store, limit int) error {
	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if c.JSONMode() {
		if runs == nil {
			runs = []*ledger.Run{}
		}
		return writeJSON(cmd, runs)
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}
	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.Stage,
			colorizeRunStatus(run.Status, colorize),
			humanize.Time(run.StartedAt),
			strconv.Itoa(run.Processed),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(run.Failed),
		})
	}
	fmt.Fprint(out, renderTable(
		[]string{"Run", "Stage", "Status", "Started", "Processed", "Skipped", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	))
	return nil
}

func (c *commandContext) showRun(cmd *cobra.Command, store *ledger.Store, idOrPrefix string) error {
	run, err := resolveRun(cmd, store, idOrPrefix)
	if err != nil {
		return err
	}
	movies, err := store.Movies(cmd.Context(), run.ID)
	if err != nil {
		return err
	}
	if c.JSONMode() {
		if movies == nil {
			movies = []*ledger.Movie{}
		}
		return writeJSON(cmd, map[string]any{"run": run, "movies": movies})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s): %s, started %s\n", run.ID, run.Stage, run.Status, humanize.Time(run.StartedAt))
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", run.ErrorMessage)
	}
	if len(movies) == 0 {
		fmt.Fprintln(out, "No movies recorded")
		return nil
	}
	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(movies))
	for _, m := range movies {
		detail := m.ErrorMessage
		if m.ErrorKind != "" && detail != "" {
			detail = m.ErrorKind + ": " + detail
		}
		rows = append(rows, []string{
			m.Name,
			colorizeMovieStatus(m.Status, colorize),
			strconv.Itoa(m.Records),
			strconv.Itoa(m.Packets),
			strconv.Itoa(m.Boundaries),
			detail,
		})
	}
	fmt.Fprint(out, renderTable(
		[]string{"Movie", "Status", "Records", "Packets", "Boundaries", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	return nil
}

// resolveRun accepts a full run id or a unique prefix of a recent one.
func resolveRun(cmd *cobra.Command, store *ledger.Store, idOrPrefix string) (*ledger.Run, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	run, err := store.GetRun(cmd.Context(), idOrPrefix)
	if err != nil {
		return nil, err
	}
	if run != nil {
		return run, nil
	}
	runs, err := store.Runs(cmd.Context(), 0)
	if err != nil {
		return nil, err
	}
	var matches []*ledger.Run
	for _, r := range runs {
		if strings.HasPrefix(r.ID, idOrPrefix) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("run %s not found", idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("run prefix %s is ambiguous (%d matches)", idOrPrefix, len(matches))
	}
}

func (c *commandContext) showOutputs(cmd *cobra.Command, cfg *config.Config) error {
	type rootListing struct {
		Stage   string            `json:"stage"`
		Root    string            `json:"root"`
		Folders []staging.DirInfo `json:"folders"`
	}
	var listings []rootListing
	for _, stage := range []string{config.StagePacketize, config.StageShots} {
		_, root := cfg.StageRoots(stage)
		dirs, err := staging.ListDirectories(root)
		if err != nil {
			return fmt.Errorf("list %s: %w", root, err)
		}
		if dirs == nil {
			dirs = []staging.DirInfo{}
		}
		listings = append(listings, rootListing{Stage: stage, Root: root, Folders: dirs})
	}
	if c.JSONMode() {
		return writeJSON(cmd, listings)
	}

	out := cmd.OutOrStdout()
	for i, listing := range listings {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if len(listing.Folders) == 0 {
			fmt.Fprintf(out, "%s: no output folders in %s\n", listing.Stage, listing.Root)
			continue
		}
		var total int64
		rows := make([][]string, 0, len(listing.Folders))
		for _, d := range listing.Folders {
			total += d.Size
			rows = append(rows, []string{
				d.Name,
				yesNo(d.Complete),
				strconv.Itoa(d.Packets),
				humanize.Bytes(uint64(d.Size)),
				humanize.Time(d.ModTime),
			})
		}
		fmt.Fprint(out, tableLayout{
			title:   fmt.Sprintf("%s (%s)", listing.Stage, listing.Root),
			headers: []string{"Folder", "Complete", "Packets", "Size", "Modified"},
			rows:    rows,
			aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			footer:  []string{fmt.Sprintf("%d folders", len(rows)), "", "", humanize.Bytes(uint64(total)), ""},
		}.render())
	}
	return nil
}
