package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("12")  // bright blue
	colorSender = lipgloss.Color("10")  // bright green
	colorMuted  = lipgloss.Color("240") // gray
	colorCursor = lipgloss.Color("11")  // bright yellow
	colorFrame  = lipgloss.Color("238") // dark gray

	styleInput       = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	styleInputPrompt = styleInput

	// badge in front of the input while browsing one export
	styleScope = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(colorSender).
			Padding(0, 1)

	styleListSelected = lipgloss.NewStyle().Foreground(colorCursor).Bold(true)
	styleExportTitle  = lipgloss.NewStyle().Foreground(colorAccent)
	styleSender       = lipgloss.NewStyle().Foreground(colorSender)
	styleSnippet      = lipgloss.NewStyle().Foreground(colorMuted)

	stylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorFrame)
	styleActiveBorder = stylePanelBorder.BorderForeground(colorAccent)

	styleStatusBar = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
)
