package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/chatx/internal/index"
	"github.com/Zuo-Peng/chatx/internal/search"
)

const debounceDelay = 200 * time.Millisecond

type tuiMode int

const (
	modeSearch tuiMode = iota // message hits across exports
	modeList                  // one row per export
)

// exportScope pins the browser to a single export.
type exportScope struct {
	key   string
	title string
}

type model struct {
	db   *index.DB
	base search.Options

	mode  tuiMode
	scope *exportScope
	// input line to restore when leaving a scope
	saved         string
	notifications bool

	input textinput.Model
	// seq is bumped whenever the input or a filter changes; results and
	// debounce ticks carrying an older seq are dropped.
	seq       int
	results   []search.Result
	highlight string
	cursor    int
	offset    int

	preview viewport.Model
	shown   string // previewID of the rendered preview

	width  int
	height int
	done   bool
	chosen *search.Result
}

func newModel(db *index.DB, mode tuiMode, query string, opts search.Options) model {
	in := textinput.New()
	in.Prompt = "> "
	in.PromptStyle = styleInputPrompt
	in.TextStyle = styleInput
	in.CharLimit = 256
	in.SetValue(query)
	in.Focus()

	m := model{
		db:            db,
		base:          opts,
		mode:          mode,
		notifications: opts.IncludeNotifications,
		input:         in,
		preview:       viewport.New(0, 0),
	}
	if opts.Export != "" {
		m.scope = &exportScope{key: opts.Export, title: opts.Export}
		if e, err := db.GetExportByKey(opts.Export); err == nil && e != nil {
			m.scope.title = e.Title
		}
	}
	m.input.Placeholder = m.placeholder()
	return m
}

// Run opens the message search UI. The chosen message is copied to the
// clipboard on exit.
func Run(db *index.DB, query string, opts search.Options) error {
	return run(newModel(db, modeSearch, query, opts))
}

// RunList opens the export browser, most recently active first. Choosing an
// export copies its file path; Tab opens it to browse its messages.
func RunList(db *index.DB, opts search.Options) error {
	return run(newModel(db, modeList, "", opts))
}

func run(m model) error {
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	if fm := final.(model); fm.chosen != nil {
		return copySelection(fm.db, *fm.chosen)
	}
	return nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetch())
}

func (m model) placeholder() string {
	switch {
	case m.scope != nil:
		return "Search in " + m.scope.title + "..."
	case m.mode == modeList:
		return "Filter exports... (from:NAME since:YYYY-MM-DD)"
	default:
		return "Search messages... (from:NAME since:YYYY-MM-DD)"
	}
}

// options merges the launch options with the input line and UI toggles.
func (m model) options() search.Options {
	f := parseFilter(m.input.Value())
	opts := m.base
	opts.Query = f.text
	if f.sender != "" {
		opts.Sender = f.sender
	}
	if f.since != "" {
		opts.Since = f.since
	}
	opts.IncludeNotifications = m.notifications
	opts.Export = ""
	if m.scope != nil {
		opts.Export = m.scope.key
	}
	opts.OnePerExport = m.scope == nil && m.mode == modeList
	return opts
}

func (m model) selected() (search.Result, bool) {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return search.Result{}, false
	}
	return m.results[m.cursor], true
}

// enterScope narrows the browser to r's export with a fresh input line.
func (m *model) enterScope(r search.Result) tea.Cmd {
	if m.scope != nil && m.scope.key == r.ExportKey {
		return nil
	}
	if m.scope == nil {
		m.saved = m.input.Value()
	}
	title := r.Title
	if title == "" {
		title = r.ExportKey
	}
	m.scope = &exportScope{key: r.ExportKey, title: title}
	m.input.SetValue("")
	m.input.Placeholder = m.placeholder()
	return m.refresh()
}

func (m *model) leaveScope() tea.Cmd {
	if m.scope == nil {
		return nil
	}
	m.scope = nil
	m.input.SetValue(m.saved)
	m.input.CursorEnd()
	m.input.Placeholder = m.placeholder()
	return m.refresh()
}

// refresh drops in-flight results and reloads without debouncing.
func (m *model) refresh() tea.Cmd {
	m.seq++
	return m.fetch()
}
