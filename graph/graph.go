package graph

import "github.com/wippyai/jaot/errors"

// EdgeKind says how much of a dependency must exist before its dependent.
type EdgeKind uint8

const (
	// Soft edges need only a forward declaration of the target.
	Soft EdgeKind = iota
	// Hard edges need the complete target definition first.
	Hard
)

func (k EdgeKind) String() string {
	if k == Hard {
		return "HARD"
	}
	return "SOFT"
}

// Node is a class in the dependency graph. Nodes are shared between every
// edge that mentions them.
type Node struct {
	Name  string
	index int
}

// Edge is a dependency of From on To.
type Edge struct {
	From *Node
	To   *Node
	Kind EdgeKind
}

// Graph is a directed class dependency graph. Nodes and edges keep their
// insertion order.
type Graph struct {
	byName map[string]*Node
	edgeAt map[[2]int]int
	nodes  []*Node
	edges  []Edge
	out    [][]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		byName: make(map[string]*Node),
		edgeAt: make(map[[2]int]int),
	}
}

// AddNode returns the node for name, creating it if needed.
func (g *Graph) AddNode(name string) *Node {
	if n, ok := g.byName[name]; ok {
		return n
	}
	n := &Node{Name: name, index: len(g.nodes)}
	g.byName[name] = n
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	return n
}

// Node looks up a node by class name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return append([]*Node(nil), g.nodes...)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// AddEdge records that from depends on to. Adding an existing pair again
// keeps the stronger kind.
func (g *Graph) AddEdge(from, to string, kind EdgeKind) {
	f, t := g.AddNode(from), g.AddNode(to)
	key := [2]int{f.index, t.index}
	if i, ok := g.edgeAt[key]; ok {
		if kind == Hard {
			g.edges[i].Kind = Hard
		}
		return
	}
	g.edgeAt[key] = len(g.edges)
	g.out[f.index] = append(g.out[f.index], len(g.edges))
	g.edges = append(g.edges, Edge{From: f, To: t, Kind: kind})
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// EdgesFrom returns the dependencies of the named class.
func (g *Graph) EdgesFrom(name string) []Edge {
	n, ok := g.byName[name]
	if !ok {
		return nil
	}
	out := make([]Edge, len(g.out[n.index]))
	for i, e := range g.out[n.index] {
		out[i] = g.edges[e]
	}
	return out
}

// Dependents returns the names of classes that depend on the named class.
func (g *Graph) Dependents(name string) []string {
	var out []string
	for _, e := range g.edges {
		if e.To.Name == name {
			out = append(out, e.From.Name)
		}
	}
	return out
}

type frame struct {
	node int
	next int // position in g.out[node]
}

// TopologicalOrder returns the nodes so that every Hard dependency comes
// before its dependent. Soft edges are ignored. A cycle of Hard edges is a
// KindCycle error whose Value lists the cycle.
func (g *Graph) TopologicalOrder() ([]*Node, error) {
	done := NewBitSet(len(g.nodes))
	onStack := NewBitSet(len(g.nodes))
	order := make([]*Node, 0, len(g.nodes))
	var stack []frame

	for _, root := range g.nodes {
		if done.Has(root.index) {
			continue
		}
		stack = append(stack[:0], frame{node: root.index})
		onStack.Set(root.index)

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := g.out[top.node]

			pushed := false
			for top.next < len(edges) {
				e := g.edges[edges[top.next]]
				top.next++
				if e.Kind != Hard {
					continue
				}
				to := e.To.index
				if onStack.Has(to) {
					return nil, g.cycle(stack, to)
				}
				if done.Has(to) {
					continue
				}
				stack = append(stack, frame{node: to})
				onStack.Set(to)
				pushed = true
				break
			}
			if pushed {
				continue
			}

			stack = stack[:len(stack)-1]
			onStack.Clear(top.node)
			done.Set(top.node)
			order = append(order, g.nodes[top.node])
		}
	}
	return order, nil
}

func (g *Graph) cycle(stack []frame, to int) error {
	start := 0
	for i, f := range stack {
		if f.node == to {
			start = i
			break
		}
	}
	members := make([]string, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		members = append(members, g.nodes[f.node].Name)
	}
	members = append(members, g.nodes[to].Name)
	return errors.Cycle(errors.PhaseCollect, members)
}
