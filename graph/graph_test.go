package graph_test

import (
	stderrors "errors"
	"math/rand"
	"reflect"
	"strconv"
	"testing"

	"github.com/wippyai/jaot/errors"
	"github.com/wippyai/jaot/graph"
)

func names(nodes []*graph.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestTopologicalOrderChain(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", graph.Hard)
	g.AddEdge("B", "C", graph.Hard)

	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder: %v", err)
	}
	if got := names(order); !reflect.DeepEqual(got, []string{"C", "B", "A"}) {
		t.Errorf("order = %v, want [C B A]", got)
	}
}

func TestTopologicalOrderIgnoresSoft(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", graph.Soft)
	g.AddEdge("B", "A", graph.Soft)
	g.AddEdge("B", "C", graph.Hard)

	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("soft cycle should not fail: %v", err)
	}
	if got := names(order); !reflect.DeepEqual(got, []string{"A", "C", "B"}) {
		t.Errorf("order = %v, want [A C B]", got)
	}
}

func TestAddEdgeHardWins(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", graph.Soft)
	g.AddEdge("A", "B", graph.Hard)
	g.AddEdge("A", "B", graph.Soft)

	edges := g.Edges()
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	if edges[0].Kind != graph.Hard {
		t.Errorf("kind = %v, want HARD", edges[0].Kind)
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d", g.Len())
	}
	a, _ := g.Node("A")
	if edges[0].From != a {
		t.Error("edges should share node pointers")
	}
	if got := g.EdgesFrom("A"); len(got) != 1 || got[0].To.Name != "B" {
		t.Errorf("EdgesFrom(A) = %v", got)
	}
	if got := g.EdgesFrom("missing"); got != nil {
		t.Errorf("EdgesFrom(missing) = %v", got)
	}
	if got := g.Dependents("B"); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("Dependents(B) = %v", got)
	}
}

func TestNodesKeepInsertionOrder(t *testing.T) {
	g := graph.New()
	g.AddNode("main")
	g.AddEdge("z", "y", graph.Soft)
	g.AddNode("main")
	if got := names(g.Nodes()); !reflect.DeepEqual(got, []string{"main", "z", "y"}) {
		t.Errorf("nodes = %v", got)
	}
	if _, ok := g.Node("x"); ok {
		t.Error("unexpected node x")
	}
}

func TestTopologicalOrderCycle(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]string
		cycle []string
	}{
		{"self", [][2]string{{"A", "A"}}, []string{"A", "A"}},
		{"pair", [][2]string{{"A", "B"}, {"B", "A"}}, []string{"A", "B", "A"}},
		{"tail", [][2]string{{"M", "A"}, {"A", "B"}, {"B", "C"}, {"C", "A"}}, []string{"A", "B", "C", "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			for _, e := range tt.edges {
				g.AddEdge(e[0], e[1], graph.Hard)
			}
			_, err := g.TopologicalOrder()
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Kind != errors.KindCycle {
				t.Fatalf("err = %v, want cycle", err)
			}
			if !reflect.DeepEqual(e.Value, tt.cycle) {
				t.Errorf("cycle = %v, want %v", e.Value, tt.cycle)
			}
			if errors.CategoryOf(err) != errors.CategoryFormat {
				t.Errorf("category = %s", errors.CategoryOf(err))
			}
		})
	}
}

// Every Hard edge A->B must put B before A, for arbitrary DAGs.
func TestTopologicalOrderProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		g := graph.New()
		n := 2 + rng.Intn(40)
		for i := 0; i < n; i++ {
			g.AddNode("c" + strconv.Itoa(i))
		}
		for i := 0; i < n*2; i++ {
			a, b := rng.Intn(n), rng.Intn(n)
			if a == b {
				continue
			}
			kind := graph.Soft
			// Hard edges only point to lower indices, so they cannot cycle.
			if a > b && rng.Intn(2) == 0 {
				kind = graph.Hard
			}
			g.AddEdge("c"+strconv.Itoa(a), "c"+strconv.Itoa(b), kind)
		}

		order, err := g.TopologicalOrder()
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if len(order) != g.Len() {
			t.Fatalf("round %d: order has %d nodes, graph %d", round, len(order), g.Len())
		}
		pos := make(map[string]int, len(order))
		for i, node := range order {
			pos[node.Name] = i
		}
		for _, e := range g.Edges() {
			if e.Kind == graph.Hard && pos[e.To.Name] >= pos[e.From.Name] {
				t.Errorf("round %d: %s -> %s out of order", round, e.From.Name, e.To.Name)
			}
		}
	}
}

func TestTopologicalOrderDeepChain(t *testing.T) {
	g := graph.New()
	const depth = 100000
	for i := 0; i < depth; i++ {
		g.AddEdge("c"+strconv.Itoa(i), "c"+strconv.Itoa(i+1), graph.Hard)
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder: %v", err)
	}
	if order[0].Name != "c"+strconv.Itoa(depth) || order[len(order)-1].Name != "c0" {
		t.Errorf("order ends = %s, %s", order[0].Name, order[len(order)-1].Name)
	}
}

func TestExport(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", graph.Hard)
	g.AddEdge("A", "C", graph.Soft)

	want := &graph.Export{
		Nodes: []string{"A", "B", "C"},
		Edges: []graph.ExportEdge{
			{From: "A", To: "B", Kind: "HARD"},
			{From: "A", To: "C", Kind: "SOFT"},
		},
		Order: []string{"B", "A", "C"},
	}
	if got := g.Export(); !reflect.DeepEqual(got, want) {
		t.Errorf("Export() = %+v, want %+v", got, want)
	}

	g.AddEdge("B", "A", graph.Hard)
	got := g.Export()
	if got.Order != nil || !reflect.DeepEqual(got.Cycle, []string{"A", "B", "A"}) {
		t.Errorf("cyclic export = %+v", got)
	}
}
