package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"scenepack/internal/config"
	"scenepack/internal/workflow"
)

func renderSummary(summary *workflow.Summary) string {
	if summary == nil {
		return ""
	}
	totals := summary.Totals()
	var b strings.Builder
	fmt.Fprintf(&b, "Stage %s (run %s): %d processed, %d skipped, %d failed in %s\n",
		summary.Stage, shortID(summary.RunID),
		totals.Processed, totals.Skipped, totals.Failed,
		summary.Duration.Round(time.Millisecond))
	if summary.Canceled {
		b.WriteString("Run canceled; remaining folders are processed next time\n")
	}
	if len(summary.Outcomes) == 0 {
		fmt.Fprintf(&b, "No movie folders found in %s\n", summary.Input)
		return b.String()
	}

	rows := make([][]string, 0, len(summary.Outcomes))
	var records, packets int
	for _, o := range summary.Outcomes {
		records += o.Records
		packets += o.Packets
		rows = append(rows, []string{
			movieLabel(o),
			string(o.Status),
			strconv.Itoa(o.Records),
			strconv.Itoa(o.Packets),
			boundaryCell(summary.Stage, o),
			outcomeDetail(o),
		})
	}
	b.WriteString(tableLayout{
		headers: []string{"Movie", "Status", "Records", "Packets", "Boundaries", "Detail"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
		footer:  []string{"Total", "", strconv.Itoa(records), strconv.Itoa(packets), "", ""},
	}.render())
	return b.String()
}

func movieLabel(o workflow.Outcome) string {
	if o.Movie == "" {
		return o.Source
	}
	if o.Source != "" && o.Source != o.Movie {
		return fmt.Sprintf("%s (%s)", o.Movie, o.Source)
	}
	return o.Movie
}

func boundaryCell(stage string, o workflow.Outcome) string {
	if stage != config.StageShots || o.Status != workflow.OutcomeProcessed {
		return ""
	}
	if o.LowConfidence > 0 {
		return fmt.Sprintf("%d (%d low-conf)", o.Boundaries, o.LowConfidence)
	}
	return strconv.Itoa(o.Boundaries)
}

func outcomeDetail(o workflow.Outcome) string {
	var parts []string
	switch o.Status {
	case workflow.OutcomeFailed:
		parts = append(parts, fmt.Sprintf("%s: %s", o.Kind, o.Error))
	case workflow.OutcomeSkipped:
		parts = append(parts, o.Reason)
		if o.Error != "" {
			parts = append(parts, o.Error)
		}
	}
	if o.Corrupt > 0 {
		parts = append(parts, fmt.Sprintf("%d corrupt", o.Corrupt))
	}
	if o.Resumed {
		parts = append(parts, "rebuilt")
	}
	return strings.Join(parts, "; ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
