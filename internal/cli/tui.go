package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/routesim/pkg/network"
	"github.com/matzehuels/routesim/pkg/pipeline"
	"github.com/matzehuels/routesim/pkg/routing"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// routeModel - Interactive route selection
// =============================================================================

type pickStep int

const (
	stepAlgorithm pickStep = iota
	stepSource
	stepDestination
)

// routeModel is the bubbletea model that picks an algorithm, a source and a
// destination, in that order. Destination index 0 means the full table.
type routeModel struct {
	algorithms []routing.Algorithm
	nodes      []network.Node

	step   pickStep
	cursor [3]int
	done   bool
}

func newRouteModel(n *network.Network, popts pipeline.Options) routeModel {
	m := routeModel{
		algorithms: routing.Algorithms(),
		nodes:      n.Nodes(),
	}
	for i, a := range m.algorithms {
		if a == popts.Algorithm {
			m.cursor[stepAlgorithm] = i
		}
	}
	for i, node := range m.nodes {
		if node.ID == popts.Source {
			m.cursor[stepSource] = i
		}
		if popts.Destination != nil && node.ID == *popts.Destination {
			m.cursor[stepDestination] = i + 1
		}
	}
	return m
}

func (m routeModel) Init() tea.Cmd {
	return nil
}

func (m routeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		if m.step == stepAlgorithm {
			return m, tea.Quit
		}
		m.step--
	case "up", "k":
		if m.cursor[m.step] > 0 {
			m.cursor[m.step]--
		}
	case "down", "j":
		if m.cursor[m.step] < m.itemCount()-1 {
			m.cursor[m.step]++
		}
	case "enter":
		if m.step == stepDestination {
			m.done = true
			return m, tea.Quit
		}
		m.step++
	}
	return m, nil
}

func (m routeModel) itemCount() int {
	switch m.step {
	case stepAlgorithm:
		return len(m.algorithms)
	case stepSource:
		return len(m.nodes)
	default:
		return len(m.nodes) + 1
	}
}

func (m routeModel) items() []string {
	var items []string
	switch m.step {
	case stepAlgorithm:
		for _, a := range m.algorithms {
			items = append(items, a.Title())
		}
	case stepSource:
		for _, n := range m.nodes {
			items = append(items, n.Label)
		}
	default:
		items = append(items, "All routers")
		for _, n := range m.nodes {
			items = append(items, n.Label)
		}
	}
	return items
}

// options returns the selection as pipeline options.
func (m routeModel) options() pipeline.Options {
	opts := pipeline.Options{
		Algorithm: m.algorithms[m.cursor[stepAlgorithm]],
		Source:    m.nodes[m.cursor[stepSource]].ID,
	}
	if d := m.cursor[stepDestination]; d > 0 {
		id := m.nodes[d-1].ID
		opts.Destination = &id
	}
	return opts
}

func (m routeModel) View() string {
	var b strings.Builder

	titles := [...]string{"Select Algorithm", "Select Source", "Select Destination"}
	b.WriteString(StyleTitle.Render(titles[m.step]))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  (%d/3)", m.step+1)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  esc back  q quit"))
	b.WriteString("\n\n")

	for i, item := range m.items() {
		if i == m.cursor[m.step] {
			b.WriteString(listSelectedStyle.Render("▸ " + item))
		} else {
			b.WriteString(listNormalStyle.Render("  " + item))
		}
		b.WriteString("\n")
	}
	return b.String()
}
