package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/search"
)

// linesPerItem is the number of terminal lines each result occupies.
const linesPerItem = 2

const (
	titleWidth = 14
	dateWidth  = 10
)

var snippetCleaner = strings.NewReplacer("\n", " ", "\t", " ", ">>>", "", "<<<", "")

func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(m.emptyText())
	}

	lines := make([]string, 0, height)
	for i := m.offset; i < len(m.results) && len(lines)+linesPerItem <= height; i++ {
		lines = append(lines, formatResultLine(m.results[i], width, i == m.cursor)...)
	}
	blank := strings.Repeat(" ", width)
	for len(lines) < height {
		lines = append(lines, blank)
	}
	return strings.Join(lines, "\n")
}

func (m model) emptyText() string {
	if m.scope == nil && m.mode == modeSearch && strings.TrimSpace(m.options().Query) == "" {
		return "Type to search messages"
	}
	return "No results"
}

// formatResultLine renders a result as a header and a snippet line:
//
//	> Family Trip    2023-05-12 Alice
//	    pizza tonight?
//
// Group notifications show "notice" in place of a sender.
func formatResultLine(r search.Result, width int, selected bool) []string {
	date := "????-??-??"
	if len(r.Ts) >= dateWidth {
		date = r.Ts[:dateWidth]
	}

	title := runewidth.FillRight(runewidth.Truncate(r.Title, titleWidth, ""), titleWidth)

	sender := styleSender
	name := r.Sender
	if name == string(parse.GroupNotification) {
		sender = styleSnippet
		name = "notice"
	}
	// "> " + title + " " + date + " "
	name = runewidth.Truncate(name, max(width-titleWidth-dateWidth-4, 0), "")

	marker := "  "
	if selected {
		marker = styleListSelected.Render("> ")
	}
	head := marker + styleExportTitle.Render(title) + " " + date + " " + sender.Render(name)

	snippet := runewidth.Truncate(snippetCleaner.Replace(r.Snippet), max(width-4, 0), "")
	return []string{head, "    " + styleSnippet.Render(snippet)}
}

func (m model) visibleItems() int {
	return max(m.layout().panel/linesPerItem, 1)
}

func (m *model) keepCursorVisible() {
	n := m.visibleItems()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+n {
		m.offset = m.cursor - n + 1
	}
}

func (m *model) scrollList(delta int) {
	last := max(len(m.results)-m.visibleItems(), 0)
	m.offset = min(max(m.offset+delta, 0), last)
}
