package graph

import (
	stderrors "errors"

	"github.com/wippyai/jaot/errors"
)

// Export is a serialisable view of a graph.
type Export struct {
	Nodes []string     `yaml:"nodes" json:"nodes"`
	Edges []ExportEdge `yaml:"edges" json:"edges"`
	Order []string     `yaml:"order,omitempty" json:"order,omitempty"`
	Cycle []string     `yaml:"cycle,omitempty" json:"cycle,omitempty"`
}

// ExportEdge is one edge of an Export.
type ExportEdge struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
	Kind string `yaml:"kind" json:"kind"`
}

// Export describes the graph with its topological order. When the Hard
// edges form a cycle, Order is empty and Cycle names it instead.
func (g *Graph) Export() *Export {
	out := &Export{
		Nodes: make([]string, len(g.nodes)),
		Edges: make([]ExportEdge, len(g.edges)),
	}
	for i, n := range g.nodes {
		out.Nodes[i] = n.Name
	}
	for i, e := range g.edges {
		out.Edges[i] = ExportEdge{From: e.From.Name, To: e.To.Name, Kind: e.Kind.String()}
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		var e *errors.Error
		if stderrors.As(err, &e) {
			out.Cycle, _ = e.Value.([]string)
		}
		return out
	}
	out.Order = make([]string, len(order))
	for i, n := range order {
		out.Order[i] = n.Name
	}
	return out
}
