package cli

import (
	"fmt"
	"strings"
	"time"

	"symindex/internal/engine/symbols"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxVisibleResults = 20

var (
	docStyle      = lipgloss.NewStyle().Margin(1, 2)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)
)

type searcher interface {
	FindSymbol(query string) ([]symbols.Symbol, error)
	WorkingDirectory() string
	PendingFileCount() int
}

// indexUpdatedMsg is sent after a watch cycle so the current query reruns.
type indexUpdatedMsg struct{}

type model struct {
	index      searcher
	input      textinput.Model
	results    []symbols.Symbol
	selected   int
	err        error
	lastUpdate time.Time
	lastQuery  string
}

func initialModel(index searcher) model {
	ti := textinput.New()
	ti.Placeholder = "symbol name, optionally \"name (type)\""
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Focus()
	return model{index: index, input: ti, lastUpdate: time.Now()}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "ctrl+k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "ctrl+j":
			if m.selected < m.visible()-1 {
				m.selected++
			}
			return m, nil
		}
	case indexUpdatedMsg:
		m.lastUpdate = time.Now()
		return m.search(true), nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m.search(false), cmd
}

// search reruns the lookup when the query changed or force is set.
func (m model) search(force bool) model {
	query := strings.TrimSpace(m.input.Value())
	if !force && query == m.lastQuery {
		return m
	}
	m.lastQuery = query
	m.selected = 0
	if query == "" {
		m.results = nil
		m.err = nil
		return m
	}
	m.results, m.err = m.index.FindSymbol(query)
	return m
}

func (m model) visible() int {
	if len(m.results) > maxVisibleResults {
		return maxVisibleResults
	}
	return len(m.results)
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("symindex: " + m.index.WorkingDirectory()))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	case m.lastQuery != "" && len(m.results) == 0:
		b.WriteString(statusStyle.Render("no matches"))
		b.WriteString("\n")
	}

	for i := 0; i < m.visible(); i++ {
		line := formatSymbol(m.results[i])
		if i == m.selected {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(m.results) > maxVisibleResults {
		b.WriteString(statusStyle.Render(fmt.Sprintf("… %d more", len(m.results)-maxVisibleResults)))
		b.WriteString("\n")
	}

	status := fmt.Sprintf("%d matches | updated %s", len(m.results), m.lastUpdate.Format("15:04:05"))
	if pending := m.index.PendingFileCount(); pending > 0 {
		status += fmt.Sprintf(" | %d files pending", pending)
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(status + " | esc to quit"))
	return docStyle.Render(b.String())
}
