package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/cognicore/pruner/pkg/pruner/prune"
)

// statsColumn is one column of the frequency stats table. Numeric columns
// are right aligned.
type statsColumn struct {
	header  string
	numeric bool
	value   func(prune.StatsRow) string
}

var statsColumns = []statsColumn{
	{"Token", false, func(r prune.StatsRow) string { return r.Token }},
	{"Count", true, func(r prune.StatsRow) string { return strconv.Itoa(r.Count) }},
	{"Ref count", true, func(r prune.StatsRow) string { return strconv.Itoa(r.RefCount) }},
	{"Count diff", true, func(r prune.StatsRow) string { return strconv.Itoa(r.CountDiff) }},
	{"Zipf", true, func(r prune.StatsRow) string { return formatZipf(r.Zipf) }},
	{"Ref zipf", true, func(r prune.StatsRow) string { return formatZipf(r.RefZipf) }},
	{"Zipf diff", true, func(r prune.StatsRow) string { return formatZipf(r.ZipfDiff) }},
	{"Pervasiveness", true, func(r prune.StatsRow) string { return formatZipf(r.Pervasiveness) }},
}

// renderStats draws rows as a rounded table with a token count footer.
func renderStats(rows []prune.StatsRow) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(statsColumns))
	configs := make([]table.ColumnConfig, len(statsColumns))
	for i, col := range statsColumns {
		header[i] = col.header
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, r := range rows {
		row := make(table.Row, len(statsColumns))
		for i, col := range statsColumns {
			row[i] = col.value(r)
		}
		tw.AppendRow(row)
	}
	tw.AppendFooter(table.Row{strconv.Itoa(len(rows)) + " tokens"})

	return tw.Render()
}

func formatZipf(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
