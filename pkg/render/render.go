// Package render prints and charts snapshots of folded contour trees.
package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/contourfold/pkg/persist"
	"github.com/Sumatoshi-tech/contourfold/pkg/simplify"
)

const valueDigits = 3

// Table writes the live nodes and edges of snapshot as two tables.
func Table(w io.Writer, snapshot *persist.Snapshot) error {
	degrees := make(map[int]int, len(snapshot.Nodes))
	for _, edge := range snapshot.Edges {
		degrees[edge.U]++
		degrees[edge.V]++
	}

	nodes := table.NewWriter()
	nodes.SetOutputMirror(w)
	nodes.SetStyle(table.StyleLight)
	nodes.SetTitle("Nodes")
	nodes.AppendHeader(table.Row{"ID", "Value", "Degree", "Members", "Collapsed"})

	for _, node := range snapshot.Nodes {
		nodes.AppendRow(table.Row{
			node.ID,
			humanize.CommafWithDigits(node.Value, valueDigits),
			degrees[node.ID],
			humanize.Comma(int64(node.Members)),
			node.Collapsed,
		})
	}

	nodes.AppendFooter(table.Row{"Total", "", "", humanize.Comma(int64(snapshot.TotalMembers)), ""})
	nodes.Render()

	if len(snapshot.Edges) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	edges := table.NewWriter()
	edges.SetOutputMirror(w)
	edges.SetStyle(table.StyleLight)
	edges.SetTitle("Edges")
	edges.AppendHeader(table.Row{"U", "V", "Members", "Reduced"})

	for _, edge := range snapshot.Edges {
		edges.AppendRow(table.Row{edge.U, edge.V, humanize.Comma(int64(edge.Members)), strconv.FormatBool(edge.Reduced)})
	}

	edges.Render()

	return nil
}

// Summary writes a colored one-screen account of a simplification run.
func Summary(w io.Writer, threshold float64, stats simplify.Stats, snapshot *persist.Snapshot) error {
	header := color.New(color.Bold)
	good := color.New(color.FgGreen)
	kept := color.New(color.FgYellow)

	lines := []struct {
		style *color.Color
		text  string
	}{
		{header, fmt.Sprintf("Simplified at persistence threshold %s\n", humanize.Ftoa(threshold))},
		{good, fmt.Sprintf("  collapsed  %s\n", humanize.Comma(int64(stats.Collapsed)))},
		{good, fmt.Sprintf("  reduced    %s\n", humanize.Comma(int64(stats.Reduced)))},
		{kept, fmt.Sprintf("  preserved  %s\n", humanize.Comma(int64(stats.Preserved)))},
		{kept, fmt.Sprintf("  requeued   %s\n", humanize.Comma(int64(stats.Requeued)))},
		{header, fmt.Sprintf("Remaining: %s nodes, %s edges, %s members\n",
			humanize.Comma(int64(len(snapshot.Nodes))),
			humanize.Comma(int64(len(snapshot.Edges))),
			humanize.Comma(int64(snapshot.TotalMembers)))},
	}

	for _, line := range lines {
		if _, err := line.style.Fprint(w, line.text); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	return nil
}
