// Package tui provides the interactive preview shown before an edit is written.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Styles ---
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

const (
	defaultWidth  = 80
	defaultHeight = 20
	chromeLines   = 3 // header + blank + footer
)

// Decision is the user's answer to a preview.
type Decision int

const (
	Pending Decision = iota
	Accepted
	Rejected
)

// PreviewModel shows a diff in a scrollable viewport and asks y/n.
type PreviewModel struct {
	path     string
	diff     string
	viewport viewport.Model
	decision Decision
}

// NewPreviewModel creates a preview of diff for path.
func NewPreviewModel(path, diff string) PreviewModel {
	vp := viewport.New(defaultWidth, defaultHeight)
	vp.SetContent(renderDiff(diff))
	return PreviewModel{
		path:     path,
		diff:     diff,
		viewport: vp,
	}
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - chromeLines
		if m.viewport.Height < 1 {
			m.viewport.Height = 1
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y", "enter":
			m.decision = Accepted
			return m, tea.Quit
		case "n", "N", "q", "esc", "ctrl+c":
			m.decision = Rejected
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m PreviewModel) View() string {
	if m.decision != Pending {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Apply changes to " + m.path + "?"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	footer := "[y] apply  [n] skip  ↑/↓ scroll"
	if !m.viewport.AtBottom() || !m.viewport.AtTop() {
		footer += fmt.Sprintf("  %3.f%%", m.viewport.ScrollPercent()*100)
	}
	b.WriteString(faintStyle.Render(footer))
	return b.String()
}

// Decision returns the user's answer, or Pending if none was given.
func (m PreviewModel) Decision() Decision {
	return m.decision
}

func renderDiff(diff string) string {
	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++ "), strings.HasPrefix(line, "--- "):
			lines[i] = headerStyle.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = hunkStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = addedStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = removedStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// Confirm runs the preview on the terminal and reports whether the user
// accepted the change. Interrupting the program counts as a rejection.
func Confirm(path, diff string, opts ...tea.ProgramOption) (bool, error) {
	final, err := tea.NewProgram(NewPreviewModel(path, diff), opts...).Run()
	if err != nil {
		return false, fmt.Errorf("preview %s: %w", path, err)
	}
	m, ok := final.(PreviewModel)
	return ok && m.decision == Accepted, nil
}
