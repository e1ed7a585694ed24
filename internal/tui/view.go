package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// layout holds the inner sizes of the two panels. The list takes two fifths
// of the width; the input row, status bar and panel borders take six rows.
type layout struct {
	list    int
	preview int
	panel   int
}

func (m model) layout() layout {
	l := layout{list: 40, preview: 60, panel: 20}
	if m.width > 0 {
		l.list = max(m.width*2/5-4, 20)
		l.preview = max(m.width*3/5-4, 20)
	}
	if m.height > 0 {
		l.panel = max(m.height-6, 5)
	}
	return l
}

func (m model) View() string {
	if m.done || m.width == 0 {
		return ""
	}
	l := m.layout()

	list := stylePanelBorder.Width(l.list).Height(l.panel).Render(m.renderList(l.list, l.panel))
	m.preview.Width, m.preview.Height = l.preview, l.panel
	preview := styleActiveBorder.Width(l.preview).Height(l.panel).Render(m.preview.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		lipgloss.JoinHorizontal(lipgloss.Top, list, preview),
		m.statusBar(),
	)
}

func (m model) header() string {
	if m.scope == nil {
		return m.input.View()
	}
	return styleScope.Render(m.scope.title) + " " + m.input.View()
}

func (m model) statusBar() string {
	opts := m.options()
	parts := []string{m.countLabel(opts.Query)}
	if opts.Sender != "" {
		parts = append(parts, "from "+opts.Sender)
	}
	if opts.Since != "" {
		parts = append(parts, "since "+opts.Since)
	}
	if m.notifications {
		parts = append(parts, "C-n hide notifications")
	} else {
		parts = append(parts, "C-n show notifications")
	}
	if m.scope != nil {
		parts = append(parts, "S-tab all exports")
	} else {
		parts = append(parts, "tab open export")
	}
	parts = append(parts, "enter copy", "esc quit")
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func (m model) countLabel(query string) string {
	if m.scope == nil && m.mode == modeList && strings.TrimSpace(query) == "" {
		return fmt.Sprintf("%d exports", len(m.results))
	}
	return fmt.Sprintf("%d messages", len(m.results))
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// regionAt maps a terminal cell to a panel and, inside the list, to the
// result index under it. Row 0 is the input and row 1 the top border.
func (m model) regionAt(x, y int) (mouseRegion, int) {
	l := m.layout()
	row := y - 2
	if row < 0 || row >= l.panel {
		return regionNone, -1
	}
	switch {
	case x >= 1 && x <= l.list:
		return regionList, m.offset + row/linesPerItem
	case x > l.list+2:
		return regionPreview, -1
	}
	return regionNone, -1
}
