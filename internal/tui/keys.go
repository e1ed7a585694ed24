package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up            key.Binding
	Down          key.Binding
	Enter         key.Binding
	Quit          key.Binding
	Scope         key.Binding
	Unscope       key.Binding
	Notifications key.Binding
	PreviewUp     key.Binding
	PreviewDn     key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
}

func binding(help, desc string, on ...string) key.Binding {
	return key.NewBinding(key.WithKeys(on...), key.WithHelp(help, desc))
}

var keys = keyMap{
	Up:            binding("up/C-k", "previous result", "up", "ctrl+k"),
	Down:          binding("dn/C-j", "next result", "down", "ctrl+j"),
	Enter:         binding("enter", "copy message or path", "enter"),
	Quit:          binding("esc", "quit", "esc", "ctrl+c"),
	Scope:         binding("tab", "browse this export", "tab"),
	Unscope:       binding("S-tab", "back to all exports", "shift+tab"),
	Notifications: binding("C-n", "toggle group notifications", "ctrl+n"),
	PreviewUp:     binding("C-u", "preview half page up", "ctrl+u"),
	PreviewDn:     binding("C-d", "preview half page down", "ctrl+d"),
	PageUp:        binding("pgup", "preview page up", "pgup"),
	PageDown:      binding("pgdn", "preview page down", "pgdown"),
}
