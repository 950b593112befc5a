package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableLayout describes a rendered table. Footer is optional.
type tableLayout struct {
	title   string
	headers []string
	rows    [][]string
	aligns  []columnAlignment
	footer  []string
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	return tableLayout{headers: headers, rows: rows, aligns: aligns}.render()
}

func (s tableLayout) render() string {
	columns := len(s.headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if s.title != "" {
		tw.SetTitle(s.title)
	}
	tw.AppendHeader(toRow(s.headers, columns))
	for _, row := range s.rows {
		tw.AppendRow(toRow(row, columns))
	}
	if len(s.footer) > 0 {
		tw.AppendFooter(toRow(s.footer, columns))
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(s.aligns) && s.aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignFooter: align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render() + "\n"
}

// toRow pads or truncates cells to the column count.
func toRow(cells []string, columns int) table.Row {
	r := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		if i < len(cells) {
			r[i] = cells[i]
		} else {
			r[i] = ""
		}
	}
	return r
}
