package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/chatx/internal/search"
)

type resultsMsg struct {
	seq     int
	query   string
	results []search.Result
	err     error
}

type refreshMsg struct {
	seq int
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		l := m.layout()
		m.preview = newViewport(l.preview, l.panel)
		m.shown = ""
		return m, m.previewCmd()
	case tea.KeyMsg:
		return m.onKey(msg)
	case tea.MouseMsg:
		return m.onMouse(msg)
	case refreshMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m, m.fetch()
	case resultsMsg:
		return m.onResults(msg)
	case previewRenderedMsg:
		return m.onPreview(msg), nil
	}
	return m, nil
}

func (m model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	half := m.layout().panel / 2

	switch {
	case key.Matches(msg, keys.Quit):
		m.done = true
		return m, tea.Quit
	case key.Matches(msg, keys.Enter):
		if r, ok := m.selected(); ok {
			m.chosen = &r
			m.done = true
			return m, tea.Quit
		}
		return m, nil
	case key.Matches(msg, keys.Up):
		return m.moveTo(m.cursor - 1)
	case key.Matches(msg, keys.Down):
		return m.moveTo(m.cursor + 1)
	case key.Matches(msg, keys.PreviewUp):
		m.preview.LineUp(half)
		return m, nil
	case key.Matches(msg, keys.PreviewDn):
		m.preview.LineDown(half)
		return m, nil
	case key.Matches(msg, keys.PageUp):
		m.preview.LineUp(2 * half)
		return m, nil
	case key.Matches(msg, keys.PageDown):
		m.preview.LineDown(2 * half)
		return m, nil
	case key.Matches(msg, keys.Notifications):
		m.notifications = !m.notifications
		cmd := m.refresh()
		return m, cmd
	case key.Matches(msg, keys.Scope):
		r, ok := m.selected()
		if !ok {
			return m, nil
		}
		cmd := m.enterScope(r)
		return m, cmd
	case key.Matches(msg, keys.Unscope):
		cmd := m.leaveScope()
		return m, cmd
	}

	before := m.input.Value()
	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, inputCmd
	}
	m.seq++
	return m, tea.Batch(inputCmd, m.debounce())
}

func (m model) onMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.width == 0 || len(m.results) == 0 {
		return m, nil
	}
	wheelUp := msg.Button == tea.MouseButtonWheelUp
	wheelDown := msg.Button == tea.MouseButtonWheelDown

	region, item := m.regionAt(msg.X, msg.Y)
	switch region {
	case regionPreview:
		if wheelUp || wheelDown {
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}
	case regionList:
		switch {
		case wheelUp:
			m.scrollList(-1)
		case wheelDown:
			m.scrollList(1)
		case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			return m.moveTo(item)
		}
	}
	return m, nil
}

func (m model) onResults(msg resultsMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.seq {
		return m, nil
	}
	m.cursor, m.offset, m.shown = 0, 0, ""
	m.highlight = msg.query
	if msg.err != nil {
		m.results = nil
		m.preview.SetContent("Error: " + msg.err.Error())
		return m, nil
	}
	m.results = msg.results
	if len(m.results) == 0 {
		m.preview.SetContent("")
		return m, nil
	}
	return m, m.previewCmd()
}

func (m model) onPreview(msg previewRenderedMsg) model {
	r, ok := m.selected()
	id := previewID(msg.exportKey, msg.idx)
	if !ok || previewID(r.ExportKey, r.Idx) != id || id == m.shown {
		return m
	}
	switch {
	case msg.err != nil:
		m.preview.SetContent("Preview error: " + msg.err.Error())
	default:
		m.preview.SetContent(msg.content)
		if msg.hitLine > 0 {
			m.preview.SetYOffset(msg.hitLine)
		} else {
			m.preview.GotoTop()
		}
	}
	m.shown = id
	return m
}

// moveTo puts the cursor on item i and loads its preview.
func (m model) moveTo(i int) (tea.Model, tea.Cmd) {
	if i < 0 || i >= len(m.results) || i == m.cursor {
		return m, nil
	}
	m.cursor = i
	m.keepCursorVisible()
	return m, m.previewCmd()
}

func (m model) fetch() tea.Cmd {
	db, mode, scope, seq := m.db, m.mode, m.scope, m.seq
	opts := m.options()
	return func() tea.Msg {
		results, err := load(db, mode, scope, opts)
		return resultsMsg{seq: seq, query: opts.Query, results: results, err: err}
	}
}

func (m model) debounce() tea.Cmd {
	seq := m.seq
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return refreshMsg{seq: seq}
	})
}

func (m model) previewCmd() tea.Cmd {
	r, ok := m.selected()
	if !ok || previewID(r.ExportKey, r.Idx) == m.shown {
		return nil
	}
	return loadPreviewCmd(m.db, r, m.highlight, m.layout().preview)
}

func previewID(exportKey string, idx int) string {
	return fmt.Sprintf("%s#%d", exportKey, idx)
}
