// Package tui provides the interactive findings browser behind
// `cbam validate --tui`.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carbonfabric/cbam/internal/domain"
)

// chromeRows is the number of rows consumed by the header and footer.
const chromeRows = 4

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// findingsModel drives the browser: a scrolling list of findings with a
// detail pane for the selection, filterable by severity.
type findingsModel struct {
	result   domain.ValidationResult
	filtered []domain.Finding
	filter   domain.Severity // "" shows all

	cursor int
	offset int
	height int
	width  int
}

func newFindingsModel(result domain.ValidationResult) *findingsModel {
	m := &findingsModel{result: result, height: 24, width: 80}
	m.applyFilter("")
	return m
}

func (m *findingsModel) applyFilter(severity domain.Severity) {
	m.filter = severity
	m.filtered = m.filtered[:0]
	for _, f := range m.result.Findings {
		if severity == "" || f.Severity == severity {
			m.filtered = append(m.filtered, f)
		}
	}
	m.cursor, m.offset = 0, 0
}

func (m *findingsModel) Init() tea.Cmd { return nil }

func (m *findingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.width = msg.Width
		m.clampScroll()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = len(m.filtered) - 1
		case "e":
			m.applyFilter(domain.SeverityError)
		case "w":
			m.applyFilter(domain.SeverityWarning)
		case "i":
			m.applyFilter(domain.SeverityInfo)
		case "a":
			m.applyFilter("")
		}
		m.clampScroll()
	}
	return m, nil
}

// clampScroll keeps the cursor inside the visible window.
func (m *findingsModel) clampScroll() {
	if m.cursor < 0 {
		m.cursor = 0
	}
	visible := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m *findingsModel) listHeight() int {
	h := m.height - chromeRows - 3 // detail pane
	if h < 3 {
		h = 3
	}
	return h
}

func (m *findingsModel) View() string {
	var b strings.Builder

	header := fmt.Sprintf("Validation %s · %s", m.result.PeriodID, m.result.Status)
	if m.filter != "" {
		header += dimStyle.Render(fmt.Sprintf("  [filter: %s]", m.filter))
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	visible := m.listHeight()
	end := m.offset + visible
	if end > len(m.filtered) {
		end = len(m.filtered)
	}
	if len(m.filtered) == 0 {
		b.WriteString(dimStyle.Render("no findings"))
		b.WriteString("\n")
	}
	for i := m.offset; i < end; i++ {
		f := m.filtered[i]
		line := fmt.Sprintf("%-7s %-15s %s", f.Severity, f.Category, truncate(f.Message, m.width-26))
		if i == m.cursor {
			line = selectedStyle.Render(line)
		} else {
			line = styleFor(f.Severity).Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.cursor < len(m.filtered) {
		f := m.filtered[m.cursor]
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("field: %s  source: %s", f.Field, f.SourceID)))
		b.WriteString("\n")
		if f.Suggestion != "" {
			b.WriteString(dimStyle.Render("hint: " + f.Suggestion))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ move · e/w/i filter · a all · q quit"))
	return b.String()
}

func styleFor(s domain.Severity) lipgloss.Style {
	switch s {
	case domain.SeverityError:
		return errorStyle
	case domain.SeverityWarning:
		return warningStyle
	default:
		return infoStyle
	}
}

func truncate(s string, width int) string {
	if width <= 3 || len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}

// BrowseFindings opens the interactive browser over a validation result and
// blocks until the user quits.
func BrowseFindings(result domain.ValidationResult) error {
	_, err := tea.NewProgram(newFindingsModel(result), tea.WithAltScreen()).Run()
	return err
}
