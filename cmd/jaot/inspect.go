package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/jaot/classfile"
	"github.com/wippyai/jaot/crosscheck"
	"github.com/wippyai/jaot/errors"
	"github.com/wippyai/jaot/resolve"
)

var (
	inspectCrossCheck bool
	inspectDisasm     bool
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	typeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	flagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90"))
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.class | class-name>",
	Short: "Describe one class file",
	Long: `Inspect decodes and resolves a single class and prints its header, fields
and methods. The argument is a .class file on disk or a class name looked up on
the class path.

Examples:
  jaot inspect build/classes/com/example/Main.class --disasm
  jaot inspect -c rt.jar java.lang.String --cross-check`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectCrossCheck, "cross-check", false, "compare the decoding with an independent parser")
	inspectCmd.Flags().BoolVar(&inspectDisasm, "disasm", false, "list method instructions")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := readClass(args[0])
	if err != nil {
		return err
	}
	cf, err := classfile.DecodeValidate(data)
	if err != nil {
		return err
	}
	opts, err := cfg.CompilerOptions()
	if err != nil {
		return err
	}
	cls, err := resolve.New(resolve.Options{IgnoreAttributes: opts.IgnoreAttributes}).Class(cf)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p := &styler{w: out, color: isTerminal(out)}
	describeClass(p, cls, inspectDisasm)

	if inspectCrossCheck {
		if err := crosscheck.Compare(data, cf); err != nil {
			return err
		}
		p.line(p.paint(okStyle, "cross-check: ok"))
	}
	return p.err
}

// readClass reads a file when arg names one, otherwise it asks the class path.
func readClass(arg string) ([]byte, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, errors.Load("read "+arg, err)
		}
		return data, nil
	}
	cp, done, err := openClassPath()
	if err != nil {
		return nil, err
	}
	defer done()
	rc, err := cp.Open(binaryName(arg))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Load("read "+arg, err)
	}
	return data, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// styler writes lines, colouring them only on a terminal.
type styler struct {
	w     io.Writer
	err   error
	color bool
}

func (s *styler) paint(st lipgloss.Style, text string) string {
	if !s.color || text == "" {
		return text
	}
	return st.Render(text)
}

func (s *styler) line(parts ...string) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintln(s.w, strings.Join(nonEmpty(parts), " "))
}

func nonEmpty(parts []string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func describeClass(p *styler, c *resolve.Class, disasm bool) {
	kind := "class"
	if c.Access.Has(classfile.AccInterface) {
		kind = "interface"
	}
	p.line(p.paint(headingStyle, kind), p.paint(nameStyle, c.Name), p.paint(flagStyle, c.Access.Format(classfile.TargetClass)))
	version := fmt.Sprintf("version %d.%d", c.MajorVersion, c.MinorVersion)
	if c.SourceFile != "" {
		version += ", source " + c.SourceFile
	}
	p.line(" ", version)
	if c.Super != "" {
		p.line("  extends", p.paint(typeStyle, c.Super))
	}
	for _, i := range c.Interfaces {
		p.line("  implements", p.paint(typeStyle, i))
	}

	p.line()
	p.line(p.paint(headingStyle, fmt.Sprintf("fields (%d)", len(c.Fields))))
	for _, f := range c.Fields {
		value := ""
		if v, ok := f.ConstantValue(); ok {
			value = "= " + v.String()
		}
		p.line(" ", p.paint(flagStyle, f.Access.Format(classfile.TargetField)),
			p.paint(typeStyle, f.Descriptor.String()), p.paint(nameStyle, f.Name), value)
	}

	p.line()
	p.line(p.paint(headingStyle, fmt.Sprintf("methods (%d)", len(c.Methods))))
	for _, m := range c.Methods {
		p.line(" ", p.paint(flagStyle, m.Access.Format(classfile.TargetMethod)),
			p.paint(nameStyle, m.Name)+p.paint(typeStyle, m.Descriptor.String()))
		code, ok := m.Code()
		if !ok || !disasm {
			continue
		}
		for _, in := range code.Instructions {
			text := in.Instruction.String()
			if in.Ref != nil {
				text = in.Opcode.String() + " " + p.paint(typeStyle, in.Ref.String())
			}
			p.line(fmt.Sprintf("    %4d:", in.Offset), text)
		}
		for _, h := range code.Handlers {
			catch := h.CatchType
			if catch == "" {
				catch = "any"
			}
			p.line(fmt.Sprintf("    try [%d, %d) catch %s -> %d", h.StartPC, h.EndPC, catch, h.HandlerPC))
		}
	}
}
