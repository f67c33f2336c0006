package graph

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/jaot/classfile"
	"github.com/wippyai/jaot/descriptor"
	"github.com/wippyai/jaot/errors"
)

// ClassLoader returns the decoded class file for a binary class name.
type ClassLoader interface {
	Load(name string) (*classfile.ClassInfo, error)
}

// LoaderFunc adapts a function to ClassLoader.
type LoaderFunc func(name string) (*classfile.ClassInfo, error)

// Load calls f(name).
func (f LoaderFunc) Load(name string) (*classfile.ClassInfo, error) {
	return f(name)
}

// EdgePolicy chooses the kind of each discovered edge.
type EdgePolicy uint8

const (
	// StrictEdges makes every reference Hard.
	StrictEdges EdgePolicy = iota
	// StructuralEdges makes superclass, interface and declared field type
	// edges Hard and every other reference Soft.
	StructuralEdges
)

func (p EdgePolicy) String() string {
	if p == StructuralEdges {
		return "structural"
	}
	return "strict"
}

// ParseEdgePolicy parses "strict" or "structural". The empty string is strict.
func ParseEdgePolicy(s string) (EdgePolicy, error) {
	switch strings.ToLower(s) {
	case "", "strict":
		return StrictEdges, nil
	case "structural":
		return StructuralEdges, nil
	}
	return 0, errors.InvalidConfig(errors.PhaseConfig, "edges",
		"unknown edge policy "+s+", want structural or strict")
}

// Collector discovers every class reachable from a main class.
type Collector struct {
	Loader ClassLoader
	Policy EdgePolicy
}

// Collect walks the class references of main and everything it reaches.
// Any class that cannot be loaded aborts the walk.
func (c *Collector) Collect(main string) (*Graph, error) {
	if c.Loader == nil {
		return nil, errors.NilPointer(errors.PhaseCollect, nil, "class loader")
	}

	g := New()
	g.AddNode(main)
	visited := map[string]bool{main: true}
	queue := []string{main}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		cf, err := c.Loader.Load(name)
		if err != nil {
			return nil, notFound(name, err)
		}
		deps, err := Dependencies(cf)
		if err != nil {
			return nil, errors.WithClass(err, errors.PhaseCollect, name)
		}
		var structural map[string]bool
		if c.Policy == StructuralEdges {
			if structural, err = structuralNames(cf); err != nil {
				return nil, errors.WithClass(err, errors.PhaseCollect, name)
			}
		}

		for _, dep := range deps {
			kind := Soft
			if c.Policy != StructuralEdges || structural[dep] {
				kind = Hard
			}
			g.AddEdge(name, dep, kind)
			if !visited[dep] {
				visited[dep] = true
				queue = append(queue, dep)
			}
		}

		Logger().Debug("collected class",
			zap.String("class", name),
			zap.Int("dependencies", len(deps)),
			zap.Int("pending", len(queue)))
	}
	return g, nil
}

// Dependencies returns the distinct classes a class file references through
// its Class constants, in pool order. Array types contribute their element
// class; primitive arrays and the class itself are skipped.
func Dependencies(cf *classfile.ClassInfo) ([]string, error) {
	self, err := cf.Name()
	if err != nil {
		return nil, err
	}

	var (
		deps []string
		seen = map[string]bool{self: true}
	)
	for _, c := range cf.ConstantPool.Entries {
		cl, ok := c.(classfile.ConstantClass)
		if !ok {
			continue
		}
		raw, err := cf.ConstantPool.UTF8(cl.NameIndex)
		if err != nil {
			return nil, err
		}
		d, err := descriptor.ParseClassName(raw)
		if err != nil {
			return nil, errors.WithClass(err, errors.PhaseCollect, self)
		}
		name, ok := d.ClassReference()
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		deps = append(deps, name)
	}
	return deps, nil
}

// structuralNames returns the supertypes and field types of a class.
func structuralNames(cf *classfile.ClassInfo) (map[string]bool, error) {
	out := make(map[string]bool, len(cf.Interfaces)+1)
	super, err := cf.SuperName()
	if err != nil {
		return nil, err
	}
	if super != "" {
		out[super] = true
	}
	ifaces, err := cf.InterfaceNames()
	if err != nil {
		return nil, err
	}
	for _, n := range ifaces {
		out[n] = true
	}
	for _, f := range cf.Fields {
		raw, err := cf.ConstantPool.UTF8(f.DescriptorIndex)
		if err != nil {
			return nil, err
		}
		d, err := descriptor.ParseField(raw)
		if err != nil {
			return nil, err
		}
		if n, ok := d.ClassReference(); ok {
			out[n] = true
		}
	}
	return out, nil
}

// notFound keeps structured loader errors and turns anything else into a
// lookup error naming the class.
func notFound(name string, err error) error {
	if _, ok := err.(*errors.Error); ok {
		return errors.WithClass(err, errors.PhaseLoad, name)
	}
	return errors.New(errors.PhaseLoad, errors.KindNotFound).
		Class(name).
		Value(name).
		Cause(err).
		Detail("class %q not found", name).
		Build()
}
