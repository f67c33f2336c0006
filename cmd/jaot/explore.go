package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/jaot/compiler"
	"github.com/wippyai/jaot/errors"
	"github.com/wippyai/jaot/graph"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	hardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var exploreCmd = &cobra.Command{
	Use:   "explore <main-class>",
	Short: "Browse the dependency graph interactively",
	Long: `Explore collects the classes reachable from the main class and opens a
terminal browser listing them in emission order. Select a class to see its
edges, its dependents and its members.`,
	Args: cobra.ExactArgs(1),
	RunE: runExplore,
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}

func runExplore(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.InvalidInput(errors.PhaseConfig, "explore needs an interactive terminal")
	}
	opts, err := cfg.CompilerOptions()
	if err != nil {
		return err
	}
	cp, done, err := openClassPath()
	if err != nil {
		return err
	}
	defer done()

	m := newExploreModel(compiler.NewContext(cp, opts), binaryName(args[0]))
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	return final.(*exploreModel).err
}

type exploreState int

const (
	stateBrowse exploreState = iota
	stateFilter
	stateDetail
)

type exploreModel struct {
	err      error
	ctx      *compiler.Context
	graph    *graph.Graph
	main     string
	note     string
	order    []string
	visible  []string
	filter   textinput.Model
	detail   viewport.Model
	selected int
	height   int
	state    exploreState
}

type collectedMsg struct {
	err   error
	graph *graph.Graph
}

func newExploreModel(ctx *compiler.Context, main string) *exploreModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter classes"
	ti.Width = 40
	return &exploreModel{
		ctx:    ctx,
		main:   main,
		filter: ti,
		detail: viewport.New(80, 20),
		height: 24,
	}
}

func (m *exploreModel) Init() tea.Cmd {
	return m.collect
}

func (m *exploreModel) collect() tea.Msg {
	g, err := m.ctx.Collect(m.main)
	return collectedMsg{graph: g, err: err}
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.detail.Width = msg.Width
		m.detail.Height = max(msg.Height-4, 1)
		return m, nil

	case collectedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.setGraph(msg.graph)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.state {
		case stateFilter:
			return m.updateFilter(msg)
		case stateDetail:
			return m.updateDetail(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m *exploreModel) setGraph(g *graph.Graph) {
	m.graph = g
	nodes, err := g.TopologicalOrder()
	if err != nil {
		nodes = g.Nodes()
		m.note = err.Error()
	}
	m.order = make([]string, len(nodes))
	for i, n := range nodes {
		m.order[i] = n.Name
	}
	m.applyFilter()
}

func (m *exploreModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for _, name := range m.order {
		if q == "" || strings.Contains(strings.ToLower(name), q) {
			m.visible = append(m.visible, name)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *exploreModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.visible)-1 {
			m.selected++
		}
	case "/":
		m.state = stateFilter
		return m, m.filter.Focus()
	case "enter":
		if len(m.visible) > 0 {
			m.detail.SetContent(m.describe(m.visible[m.selected]))
			m.detail.GotoTop()
			m.state = stateDetail
		}
	}
	return m, nil
}

func (m *exploreModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.filter.Blur()
		m.state = stateBrowse
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *exploreModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.state = stateBrowse
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

// describe renders the edges of a class followed by its members.
func (m *exploreModel) describe(name string) string {
	var b strings.Builder
	p := &styler{w: &b, color: true}

	var hard, soft []string
	for _, e := range m.graph.EdgesFrom(name) {
		if e.Kind == graph.Hard {
			hard = append(hard, e.To.Name)
		} else {
			soft = append(soft, e.To.Name)
		}
	}
	p.line(p.paint(headingStyle, "requires (hard)"), strings.Join(hard, ", "))
	p.line(p.paint(headingStyle, "references (soft)"), strings.Join(soft, ", "))
	p.line(p.paint(headingStyle, "used by"), strings.Join(m.graph.Dependents(name), ", "))
	p.line()

	cls, err := m.ctx.Resolve(name)
	if err != nil {
		p.line(errorStyle.Render(err.Error()))
		return b.String()
	}
	describeClass(p, cls, true)
	return b.String()
}

func (m *exploreModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("%s: %v\n\nPress ctrl+c to quit.", errors.CategoryOf(m.err), m.err))
	}
	if m.graph == nil {
		return "Collecting classes reachable from " + m.main + "..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("jaot explore"))
	b.WriteString(" ")
	b.WriteString(m.main)
	b.WriteString(fmt.Sprintf("  %d classes, %d edges\n", m.graph.Len(), len(m.graph.Edges())))
	if m.note != "" {
		b.WriteString(errorStyle.Render(m.note))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.state == stateDetail {
		b.WriteString(hardStyle.Render(m.visible[m.selected]))
		b.WriteString("\n")
		b.WriteString(m.detail.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
		return b.String()
	}

	rows := max(m.height-8, 1)
	start := 0
	if m.selected >= rows {
		start = m.selected - rows + 1
	}
	for i := start; i < len(m.visible) && i < start+rows; i++ {
		line := fmt.Sprintf("%3d  %s", position(m.order, m.visible[i])+1, m.visible[i])
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if len(m.visible) == 0 {
		b.WriteString(helpStyle.Render("  no classes match"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.state == stateFilter || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ select • enter details • / filter • q quit"))
	return b.String()
}

func position(order []string, name string) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return -1
}
