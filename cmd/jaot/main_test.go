package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/klauspost/compress/zip"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/jaot"
	"github.com/wippyai/jaot/bytecode"
	"github.com/wippyai/jaot/classfile"
	"github.com/wippyai/jaot/compiler"
	"github.com/wippyai/jaot/errors"
	"github.com/wippyai/jaot/graph"
)

// classes returns Object, app/Helper and app/Main, which calls Helper.
func classes() map[string][]byte {
	out := map[string][]byte{}
	add := func(b *classfile.ClassBuilder) {
		c := b.Build()
		name, _ := c.Name()
		out[name] = c.Encode()
	}
	ret := bytecode.Instruction{Opcode: bytecode.OpReturn}

	obj := classfile.NewClassBuilder("java/lang/Object", "")
	obj.Method(classfile.AccPublic, "<init>", "()V", obj.Code(&classfile.CodeAttribute{
		MaxStack: 1, MaxLocals: 1, Instructions: []bytecode.Instruction{ret},
	}))
	add(obj)

	helper := classfile.NewClassBuilder("app/Helper", "java/lang/Object")
	helper.Method(classfile.AccPublic|classfile.AccStatic, "help", "()V", helper.Code(&classfile.CodeAttribute{
		MaxStack: 1, MaxLocals: 0, Instructions: []bytecode.Instruction{ret},
	}))
	add(helper)

	main := classfile.NewClassBuilder("app/Main", "java/lang/Object")
	help := main.Pool().MethodRef("app/Helper", "help", "()V")
	main.Method(classfile.AccPublic|classfile.AccStatic, "main", "([Ljava/lang/String;)V", main.Code(&classfile.CodeAttribute{
		MaxStack: 1, MaxLocals: 1,
		Instructions: []bytecode.Instruction{
			{Opcode: bytecode.OpInvokestatic, Imm: bytecode.PoolImm{Index: help}},
			ret,
		},
	}))
	add(main)
	return out
}

func writeJar(t *testing.T, path string, classes map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, data := range classes {
		w, err := zw.Create(name + ".class")
		if err != nil {
			t.Fatal(err)
		}
		w.Write(data)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBinaryName(t *testing.T) {
	tests := map[string]string{
		"com.example.Main":       "com/example/Main",
		"com/example/Main":       "com/example/Main",
		"com/example/Main.class": "com/example/Main",
		"Main":                   "Main",
	}
	for in, want := range tests {
		if got := binaryName(in); got != want {
			t.Errorf("binaryName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	jar := filepath.Join(dir, "app.jar")
	writeJar(t, jar, classes())

	t.Run("compile", func(t *testing.T) {
		out := filepath.Join(dir, "main.hpp")
		if _, err := execute(t, "compile", "-c", jar, "--index-cache", filepath.Join(dir, "cache", "index.db"),
			"app.Main", "-o", out); err != nil {
			t.Fatalf("compile: %v", err)
		}
		src, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"#pragma once", "struct Helper", "static void help()", "struct Main"} {
			if !strings.Contains(string(src), want) {
				t.Errorf("output missing %q", want)
			}
		}
		if _, err := os.Stat(filepath.Join(dir, "cache", "index.db")); err != nil {
			t.Errorf("index cache not created: %v", err)
		}
	})

	t.Run("graph", func(t *testing.T) {
		out, err := execute(t, "graph", "-c", jar, "--index-cache", "", "app/Main")
		if err != nil {
			t.Fatalf("graph: %v", err)
		}
		var exp graph.Export
		if err := yaml.Unmarshal([]byte(out), &exp); err != nil {
			t.Fatalf("yaml: %v\n%s", err, out)
		}
		if len(exp.Nodes) != 3 || exp.Order[0] != "java/lang/Object" {
			t.Errorf("export = %+v", exp)
		}
	})

	t.Run("inspect", func(t *testing.T) {
		out, err := execute(t, "inspect", "-c", jar, "app.Main", "--disasm", "--cross-check")
		if err != nil {
			t.Fatalf("inspect: %v", err)
		}
		for _, want := range []string{"class app/Main", "extends java/lang/Object", "invokestatic app/Helper.help()V", "cross-check: ok"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q\n%s", want, out)
			}
		}
	})

	t.Run("missing class", func(t *testing.T) {
		_, err := execute(t, "graph", "-c", jar, "app/Nope")
		if errors.CategoryOf(err) != errors.CategoryLookup {
			t.Errorf("err = %v, want lookup error", err)
		}
	})

	t.Run("bad config", func(t *testing.T) {
		_, err := execute(t, "graph", "-c", jar, "--edges", "sideways", "app/Main")
		if errors.CategoryOf(err) != errors.CategoryConfiguration {
			t.Errorf("err = %v, want configuration error", err)
		}
	})

	t.Run("config init", func(t *testing.T) {
		path := filepath.Join(dir, "jaot.toml")
		if _, err := execute(t, "config", "init", path); err != nil {
			t.Fatalf("config init: %v", err)
		}
		if _, err := execute(t, "config", "init", path); err == nil {
			t.Error("second init should refuse to overwrite")
		}
		data, _ := os.ReadFile(path)
		if !strings.Contains(string(data), "edges = 'strict'") {
			t.Errorf("unexpected config:\n%s", data)
		}
	})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestExploreModel(t *testing.T) {
	data := classes()
	provider := jaot.ProviderFunc(func(name string) (io.ReadCloser, error) {
		b, ok := data[name]
		if !ok {
			return nil, errors.NotFound(errors.PhaseLoad, "class", name)
		}
		return io.NopCloser(bytes.NewReader(b)), nil
	})
	m := newExploreModel(compiler.NewContext(provider, compiler.Options{}), "app/Main")

	if !strings.Contains(m.View(), "Collecting") {
		t.Errorf("initial view = %q", m.View())
	}
	m.Update(m.Init()())
	if m.graph == nil || len(m.visible) != 3 {
		t.Fatalf("visible = %v, err = %v", m.visible, m.err)
	}

	m.Update(key("down"))
	m.Update(key("down"))
	m.Update(key("down"))
	if m.selected != 2 {
		t.Errorf("selected = %d, want clamped at 2", m.selected)
	}
	m.Update(key("up"))
	if m.selected != 1 {
		t.Errorf("selected = %d", m.selected)
	}

	m.Update(key("/"))
	if m.state != stateFilter {
		t.Fatal("filter not focused")
	}
	for _, r := range "help" {
		m.Update(key(string(r)))
	}
	m.Update(key("enter"))
	if len(m.visible) != 1 || m.visible[0] != "app/Helper" || m.selected != 0 {
		t.Errorf("visible = %v selected = %d", m.visible, m.selected)
	}

	m.Update(key("enter"))
	if m.state != stateDetail {
		t.Fatal("detail not opened")
	}
	view := m.View()
	for _, want := range []string{"app/Helper", "used by", "app/Main", "help"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q\n%s", want, view)
		}
	}
	m.Update(key("esc"))
	if m.state != stateBrowse {
		t.Error("esc did not return to the list")
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestExploreModelError(t *testing.T) {
	provider := jaot.ProviderFunc(func(name string) (io.ReadCloser, error) {
		return nil, errors.NotFound(errors.PhaseLoad, "class", name)
	})
	m := newExploreModel(compiler.NewContext(provider, compiler.Options{}), "app/Main")
	m.Update(m.Init()())
	if m.err == nil || !strings.Contains(m.View(), "lookup") {
		t.Errorf("view = %q", m.View())
	}
}
