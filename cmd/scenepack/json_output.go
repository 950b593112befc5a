package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"scenepack/internal/ledger"
	"scenepack/internal/workflow"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type summaryJSON struct {
	*workflow.Summary
	Totals ledger.Totals `json:"totals"`
}

func summariesJSON(summaries []*workflow.Summary) []summaryJSON {
	out := make([]summaryJSON, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, summaryJSON{Summary: s, Totals: s.Totals()})
	}
	return out
}
