package graph_test

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/wippyai/jaot/classfile"
	"github.com/wippyai/jaot/errors"
	"github.com/wippyai/jaot/graph"
)

type mapLoader struct {
	classes map[string]*classfile.ClassInfo
	loads   map[string]int
}

func (m *mapLoader) Load(name string) (*classfile.ClassInfo, error) {
	if m.loads == nil {
		m.loads = make(map[string]int)
	}
	m.loads[name]++
	c, ok := m.classes[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseLoad, "class", name)
	}
	return c, nil
}

// program is Main extends Base implements Task, referencing Util, an array
// of Item and an int array. Util and Main reference each other.
func program() *mapLoader {
	classes := map[string]*classfile.ClassInfo{}
	add := func(b *classfile.ClassBuilder) {
		c := b.Build()
		name, _ := c.Name()
		classes[name] = c
	}

	main := classfile.NewClassBuilder("app/Main", "app/Base").Interface("app/Task")
	main.Pool().Class("app/Util")
	main.Pool().Class("[[Lapp/Item;")
	main.Pool().Class("[I")
	main.Pool().Class("app/Base")
	add(main)

	util := classfile.NewClassBuilder("app/Util", "java/lang/Object")
	util.Pool().Class("app/Main")
	util.Pool().Class("app/Item")
	util.Field(classfile.AccPrivate, "last", "Lapp/Item;")
	add(util)

	add(classfile.NewClassBuilder("app/Base", "java/lang/Object"))
	add(classfile.NewClassBuilder("app/Task", "java/lang/Object").Access(classfile.AccInterface | classfile.AccAbstract))
	add(classfile.NewClassBuilder("app/Item", "java/lang/Object"))
	add(classfile.NewClassBuilder("java/lang/Object", ""))

	return &mapLoader{classes: classes}
}

func TestDependencies(t *testing.T) {
	l := program()
	deps, err := graph.Dependencies(l.classes["app/Main"])
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	want := []string{"app/Base", "app/Task", "app/Util", "app/Item"}
	if !reflect.DeepEqual(deps, want) {
		t.Errorf("deps = %v, want %v", deps, want)
	}
}

func TestCollectStructural(t *testing.T) {
	l := program()
	g, err := (&graph.Collector{Loader: l, Policy: graph.StructuralEdges}).Collect("app/Main")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	want := []string{"app/Main", "app/Base", "app/Task", "app/Util", "app/Item", "java/lang/Object"}
	if got := names(g.Nodes()); !reflect.DeepEqual(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}

	kinds := map[string]graph.EdgeKind{}
	for _, e := range g.Edges() {
		kinds[e.From.Name+">"+e.To.Name] = e.Kind
	}
	wantKinds := map[string]graph.EdgeKind{
		"app/Main>app/Base":         graph.Hard,
		"app/Main>app/Task":         graph.Hard,
		"app/Main>app/Util":         graph.Soft,
		"app/Main>app/Item":         graph.Soft,
		"app/Util>app/Main":         graph.Soft,
		"app/Util>app/Item":         graph.Hard,
		"app/Util>java/lang/Object": graph.Hard,
		"app/Base>java/lang/Object": graph.Hard,
		"app/Task>java/lang/Object": graph.Hard,
		"app/Item>java/lang/Object": graph.Hard,
	}
	if !reflect.DeepEqual(kinds, wantKinds) {
		t.Errorf("edges = %v\nwant %v", kinds, wantKinds)
	}

	for name, n := range l.loads {
		if n != 1 {
			t.Errorf("%s loaded %d times", name, n)
		}
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder: %v", err)
	}
	pos := map[string]int{}
	for i, n := range order {
		pos[n.Name] = i
	}
	if pos["java/lang/Object"] > pos["app/Base"] || pos["app/Base"] > pos["app/Main"] || pos["app/Task"] > pos["app/Main"] {
		t.Errorf("order = %v", names(order))
	}
}

func TestCollectStrict(t *testing.T) {
	g, err := (&graph.Collector{Loader: program(), Policy: graph.StrictEdges}).Collect("app/Main")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for _, e := range g.Edges() {
		if e.Kind != graph.Hard {
			t.Errorf("%s -> %s is %v", e.From.Name, e.To.Name, e.Kind)
		}
	}
	// Main and Util reference each other.
	if _, err := g.TopologicalOrder(); errors.CategoryOf(err) != errors.CategoryFormat {
		t.Errorf("expected cycle, got %v", err)
	}
}

func TestCollectDefaultChain(t *testing.T) {
	l := &mapLoader{classes: map[string]*classfile.ClassInfo{}}
	for _, c := range []struct{ name, dep string }{{"A", "B"}, {"B", "C"}, {"C", ""}} {
		b := classfile.NewClassBuilder(c.name, "")
		if c.dep != "" {
			b.Pool().Class(c.dep)
		}
		l.classes[c.name] = b.Build()
	}

	g, err := (&graph.Collector{Loader: l}).Collect("A")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for _, e := range g.Edges() {
		if e.Kind != graph.Hard {
			t.Errorf("%s -> %s is %v", e.From.Name, e.To.Name, e.Kind)
		}
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder: %v", err)
	}
	if got, want := names(order), []string{"C", "B", "A"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestCollectMissingClass(t *testing.T) {
	l := program()
	delete(l.classes, "app/Item")

	_, err := (&graph.Collector{Loader: l}).Collect("app/Main")
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
	if e.Class != "app/Item" {
		t.Errorf("class = %q", e.Class)
	}
}

func TestCollectPlainLoaderError(t *testing.T) {
	boom := fmt.Errorf("disk on fire")
	loader := graph.LoaderFunc(func(string) (*classfile.ClassInfo, error) { return nil, boom })

	_, err := (&graph.Collector{Loader: loader}).Collect("app/Main")
	if errors.CategoryOf(err) != errors.CategoryLookup {
		t.Errorf("category = %s", errors.CategoryOf(err))
	}
	if !stderrors.Is(err, boom) {
		t.Error("cause should be kept")
	}
}

func TestCollectNoLoader(t *testing.T) {
	if _, err := (&graph.Collector{}).Collect("a/B"); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseEdgePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want graph.EdgePolicy
		ok   bool
	}{
		{"", graph.StrictEdges, true},
		{"STRICT", graph.StrictEdges, true},
		{"structural", graph.StructuralEdges, true},
		{"loose", 0, false},
	}
	for _, tt := range tests {
		got, err := graph.ParseEdgePolicy(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseEdgePolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
	if graph.StrictEdges.String() != "strict" || graph.StructuralEdges.String() != "structural" {
		t.Error("policy names")
	}
	var zero graph.EdgePolicy
	if zero != graph.StrictEdges {
		t.Error("zero policy should be strict")
	}
}
