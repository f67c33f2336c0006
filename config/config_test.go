package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wippyai/jaot/config"
	"github.com/wippyai/jaot/errors"
	"github.com/wippyai/jaot/graph"
)

// same compares configs treating nil and empty lists alike.
func same(a, b *config.Config) bool {
	norm := func(c config.Config) config.Config {
		if len(c.Resolver.IgnoreAttributes) == 0 {
			c.Resolver.IgnoreAttributes = nil
		}
		return c
	}
	return reflect.DeepEqual(norm(*a), norm(*b))
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !same(cfg, config.Default()) {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, config.Default())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	src := `
classpath = ["app.jar", "lib/rt.jar"]
output = "out.hpp"
edges = "structural"
verify = true

[resolver]
ignore_attributes = ["Signature", "Deprecated"]

[log]
level = "debug"
format = "json"
`
	if err := os.WriteFile(filepath.Join(dir, "jaot.toml"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &config.Config{
		ClassPath: []string{"app.jar", "lib/rt.jar"},
		Output:    "out.hpp",
		Edges:     "structural",
		Verify:    true,
		Resolver:  config.Resolver{IgnoreAttributes: []string{"Signature", "Deprecated"}},
		Log:       config.Log{Level: "debug", Format: "json"},
	}
	if !same(cfg, want) {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}

	opts, err := cfg.CompilerOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Policy != graph.StructuralEdges || !opts.Verify || len(opts.IgnoreAttributes) != 2 {
		t.Errorf("options = %+v", opts)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JAOT_LOG_LEVEL", "error")
	t.Setenv("JAOT_EDGES", "structural")
	t.Setenv("JAOT_CLASSPATH", "a.jar,b.jar")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "error" || cfg.Edges != "structural" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.ClassPath, []string{"a.jar", "b.jar"}) {
		t.Errorf("classpath = %v", cfg.ClassPath)
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if errors.CategoryOf(err) != errors.CategoryConfiguration {
		t.Errorf("err = %v, want configuration error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
		field  string
	}{
		{"empty classpath", func(c *config.Config) { c.ClassPath = nil }, "classpath"},
		{"blank entry", func(c *config.Config) { c.ClassPath = []string{"a.jar", " "} }, "classpath"},
		{"no output", func(c *config.Config) { c.Output = "" }, "output"},
		{"edges", func(c *config.Config) { c.Edges = "loose" }, "edges"},
		{"log level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.Default()
			tt.mutate(c)
			err := c.Validate()
			e, ok := err.(*errors.Error)
			if !ok {
				t.Fatalf("err = %v, want *errors.Error", err)
			}
			if e.Kind != errors.KindInvalidConfig || len(e.Path) != 1 || e.Path[0] != tt.field {
				t.Errorf("err = %v, want invalid config at %s", err, tt.field)
			}
		})
	}

	if err := config.Default().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestInvalidFileRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jaot.yaml")
	os.WriteFile(path, []byte("edges: sideways\n"), 0o644)

	if _, err := config.Load(path); errors.CategoryOf(err) != errors.CategoryConfiguration {
		t.Errorf("err = %v", err)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jaot.toml")

	c := config.Default()
	c.ClassPath = []string{"app.jar"}
	c.IndexCache = ".jaot/index.db"
	if err := c.WriteFile(path, false); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := c.WriteFile(path, false); err == nil {
		t.Error("expected error overwriting without permission")
	}
	if err := c.WriteFile(path, true); err != nil {
		t.Errorf("overwrite: %v", err)
	}

	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !same(got, c) {
		t.Errorf("round trip = %+v, want %+v", got, c)
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	if err := config.Default().Encode(&buf); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"edges = 'strict'", "[log]", "level = 'warn'"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("missing %q in\n%s", want, buf.String())
		}
	}
}

func TestLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		l, err := config.Log{Level: "info", Format: format}.Logger()
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if l.Core().Enabled(-1) {
			t.Errorf("%s: debug enabled at info level", format)
		}
	}
	if _, err := (config.Log{Level: "nope"}).Logger(); err == nil {
		t.Error("expected error for bad level")
	}
}
