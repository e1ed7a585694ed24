package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/chatx/internal/index"
	"github.com/Zuo-Peng/chatx/internal/render"
	"github.com/Zuo-Peng/chatx/internal/search"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	exportKey string
	idx       int
	content   string
	hitLine   int
	err       error
}

// loadPreviewCmd returns a tea.Cmd that renders the export preview async.
func loadPreviewCmd(db *index.DB, r search.Result, query string, width int) tea.Cmd {
	return func() tea.Msg {
		content, hitLine, err := render.RenderExport(db, r.ExportKey, render.Options{
			HitIndex: r.Idx,
			Context:  -1,
			Width:    width,
			Query:    query,
		})
		return previewRenderedMsg{
			exportKey: r.ExportKey,
			idx:       r.Idx,
			content:   content,
			hitLine:   hitLine,
			err:       err,
		}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
