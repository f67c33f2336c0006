// Package compiler runs the front end pipeline for one main class.
//
// A Context reads classes through a jaot.ClassProvider, decoding each one at
// most once. Compile walks the dependency graph from the main class, orders
// it so that superclasses and interfaces come before the classes that extend
// them, resolves every class and renders one C++ translation unit:
//
//	c := compiler.NewContext(cp, compiler.Options{Verify: true})
//	res, err := c.Compile(ctx, "com/example/Main")
//
// Any error aborts the run. A Context is single-threaded.
package compiler
