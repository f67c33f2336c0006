package codegen

import (
	"fmt"
	"io"
	"strings"
)

// Printer writes indented source text. The first write error sticks: later
// writes are skipped and Err reports it.
type Printer struct {
	w         io.Writer
	err       error
	indentStr string
	depth     int
	midLine   bool
}

// NewPrinter creates a printer indenting with four spaces.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, indentStr: "    "}
}

// Err returns the first write error.
func (p *Printer) Err() error {
	return p.err
}

// Indent increases the indentation of following lines.
func (p *Printer) Indent() {
	p.depth++
}

// Dedent decreases the indentation of following lines.
func (p *Printer) Dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

// Write writes s, indenting it if it starts a line. s must not contain
// newlines; use Line or Newline to end lines.
func (p *Printer) Write(s string) {
	if p.err != nil || s == "" {
		return
	}
	if !p.midLine {
		if p.depth > 0 {
			p.raw(strings.Repeat(p.indentStr, p.depth))
		}
		p.midLine = true
	}
	p.raw(s)
}

// Printf formats and writes inline text.
func (p *Printer) Printf(format string, args ...any) {
	p.Write(fmt.Sprintf(format, args...))
}

// Newline ends the current line.
func (p *Printer) Newline() {
	p.raw("\n")
	p.midLine = false
}

// Line writes a complete indented line. An empty line carries no
// indentation.
func (p *Printer) Line(format string, args ...any) {
	if format != "" {
		p.Printf(format, args...)
	}
	p.Newline()
}

func (p *Printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}
