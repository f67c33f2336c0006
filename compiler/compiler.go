package compiler

import (
	"bytes"
	"context"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/jaot"
	"github.com/wippyai/jaot/classfile"
	"github.com/wippyai/jaot/codegen"
	"github.com/wippyai/jaot/errors"
	"github.com/wippyai/jaot/graph"
	"github.com/wippyai/jaot/resolve"
)

// Options configures a compilation context.
type Options struct {
	// IgnoreAttributes are attribute names the resolver skips.
	IgnoreAttributes []string
	// Header replaces the comment at the top of the generated file.
	Header string
	// Policy selects which dependency edges constrain emission order.
	Policy graph.EdgePolicy
	// Verify parses the generated source and fails on syntax errors.
	Verify bool
	// Disassemble writes each method's instructions as comments in its body.
	Disassemble bool
}

// Result is the output of a successful compilation.
type Result struct {
	Graph  *graph.Graph
	Order  []string
	Source []byte
}

// Context owns the state of one compilation run: the class cache, the
// resolved class cache and the resolver. It is not safe for concurrent use.
type Context struct {
	provider jaot.ClassProvider
	resolver *resolve.Resolver
	classes  map[string]*classfile.ClassInfo
	resolved map[string]*resolve.Class
	logger   *zap.Logger
	opts     Options
	runID    string
}

// NewContext creates a compilation context reading classes from provider.
func NewContext(provider jaot.ClassProvider, opts Options) *Context {
	id := uuid.NewString()
	return &Context{
		provider: provider,
		resolver: resolve.New(resolve.Options{IgnoreAttributes: opts.IgnoreAttributes}),
		classes:  make(map[string]*classfile.ClassInfo),
		resolved: make(map[string]*resolve.Class),
		logger:   Logger().With(zap.String("run", id)),
		opts:     opts,
		runID:    id,
	}
}

// RunID identifies this context in log output.
func (c *Context) RunID() string {
	return c.runID
}

// Load returns the decoded class, reading it from the provider on first use.
func (c *Context) Load(name string) (*classfile.ClassInfo, error) {
	if cf, ok := c.classes[name]; ok {
		return cf, nil
	}
	if c.provider == nil {
		return nil, errors.NilPointer(errors.PhaseLoad, nil, "class provider")
	}
	rc, err := c.provider.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(rc)
	if cerr := rc.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Class(name).
			Cause(err).
			Detail("read class bytes").
			Build()
	}

	cf, err := classfile.DecodeValidate(data)
	if err != nil {
		return nil, errors.WithClass(err, errors.PhaseDecode, name)
	}
	declared, err := cf.Name()
	if err != nil {
		return nil, errors.WithClass(err, errors.PhaseDecode, name)
	}
	if declared != name {
		return nil, errors.New(errors.PhaseLoad, errors.KindTypeMismatch).
			Class(name).
			Value(declared).
			Detail("class file declares %s", declared).
			Build()
	}

	c.classes[name] = cf
	c.logger.Debug("class loaded", zap.String("class", name), zap.Int("bytes", len(data)))
	return cf, nil
}

// Resolve returns the resolved form of a class, loading it if needed.
func (c *Context) Resolve(name string) (*resolve.Class, error) {
	if rc, ok := c.resolved[name]; ok {
		return rc, nil
	}
	cf, err := c.Load(name)
	if err != nil {
		return nil, err
	}
	rc, err := c.resolver.Class(cf)
	if err != nil {
		return nil, err
	}
	c.resolved[name] = rc
	return rc, nil
}

// Collect builds the dependency graph rooted at main.
func (c *Context) Collect(main string) (*graph.Graph, error) {
	col := &graph.Collector{Loader: c, Policy: c.opts.Policy}
	return col.Collect(main)
}

// Compile collects everything main reaches, orders it, resolves each class
// and renders a single C++ translation unit. Nothing is returned on failure.
func (c *Context) Compile(ctx context.Context, main string) (*Result, error) {
	c.logger.Info("compile started", zap.String("main", main), zap.Stringer("edges", c.opts.Policy))

	g, err := c.Collect(main)
	if err != nil {
		return nil, err
	}
	nodes, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	order := make([]string, len(nodes))
	for i, n := range nodes {
		order[i] = n.Name
	}

	for _, name := range order {
		if _, err := c.Resolve(name); err != nil {
			return nil, err
		}
	}

	em := &codegen.Emitter{Header: c.opts.Header, Disassemble: c.opts.Disassemble}
	file, err := em.Build(order, c.Resolve)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := codegen.Render(file, &buf); err != nil {
		return nil, err
	}

	if c.opts.Verify {
		if err := codegen.Verify(ctx, buf.Bytes()); err != nil {
			return nil, err
		}
	}

	c.logger.Info("compile finished",
		zap.String("main", main),
		zap.Int("classes", len(order)),
		zap.Int("edges", len(g.Edges())),
		zap.Int("bytes", buf.Len()))
	return &Result{Graph: g, Order: order, Source: buf.Bytes()}, nil
}
