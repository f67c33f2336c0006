// Package graph discovers the classes a program needs and orders them for
// code generation.
//
// A Collector starts at the main class and follows every Class constant
// until no new class appears. Each reference becomes an edge: Hard when the
// dependent needs the complete definition of the target first, Soft when a
// forward declaration is enough. TopologicalOrder walks Hard edges only and
// puts dependencies before their dependents.
//
//	c := &graph.Collector{Loader: loader}
//	g, err := c.Collect("com/example/Main")
//	order, err := g.TopologicalOrder()
package graph
