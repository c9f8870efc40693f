package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/contourfold/pkg/persist"
)

const (
	chartWidth     = "100%"
	chartHeight    = "700px"
	minSymbolSize  = 12
	symbolScale    = 8
	forceRepulsion = 400
	forceEdgeLen   = 80
)

// Chart builds a force-directed graph of snapshot. Node symbols grow with
// the number of members they aggregate.
func Chart(snapshot *persist.Snapshot) *charts.Graph {
	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Folded contour tree",
			Subtitle: fmt.Sprintf("%d nodes, %d members", len(snapshot.Nodes), snapshot.TotalMembers),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	nodes := make([]opts.GraphNode, 0, len(snapshot.Nodes))
	for _, node := range snapshot.Nodes {
		nodes = append(nodes, opts.GraphNode{
			Name:       strconv.Itoa(node.ID),
			Value:      float32(node.Value),
			SymbolSize: symbolSize(node.Members),
		})
	}

	links := make([]opts.GraphLink, 0, len(snapshot.Edges))
	for _, edge := range snapshot.Edges {
		links = append(links, opts.GraphLink{
			Source: strconv.Itoa(edge.U),
			Target: strconv.Itoa(edge.V),
			Value:  float32(edge.Members),
		})
	}

	graph.AddSeries("contour tree", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout: "force",
			Roam:   opts.Bool(true),
			Force:  &opts.GraphForce{Repulsion: forceRepulsion, EdgeLength: forceEdgeLen},
		}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right"}),
	)

	return graph
}

// WriteChart renders the chart of snapshot as a standalone HTML page.
func WriteChart(w io.Writer, snapshot *persist.Snapshot) error {
	if err := Chart(snapshot).Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}

func symbolSize(members int) float64 {
	return minSymbolSize + symbolScale*math.Log1p(float64(members))
}
