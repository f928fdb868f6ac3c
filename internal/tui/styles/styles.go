// Package styles defines the lipgloss styles shared by the browse picker.
package styles

import "github.com/charmbracelet/lipgloss"

// Picker palette.
var (
	PrimaryColor = lipgloss.Color("#7AA2F7") // blue
	AccentColor  = lipgloss.Color("#9ECE6A") // green
	ErrorColor   = lipgloss.Color("#F7768E") // red
	MutedColor   = lipgloss.Color("#787C99") // gray
	TextColor    = lipgloss.Color("#C0CAF5") // foreground
)

var (
	Muted = lipgloss.NewStyle().Foreground(MutedColor)
	Error = lipgloss.NewStyle().Foreground(ErrorColor)

	// Header above the list.
	Title = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).MarginBottom(1)

	// Picker rows. The selected row is drawn inverted.
	Row         = lipgloss.NewStyle().Padding(0, 1)
	RowSelected = Row.Bold(true).Foreground(TextColor).Background(PrimaryColor)

	// Running-session marker on a row.
	RunningMarker = lipgloss.NewStyle().Foreground(AccentColor)

	// Filter input line.
	FilterPrompt = lipgloss.NewStyle().Foreground(AccentColor)

	// Help bar at the bottom.
	HelpBar = lipgloss.NewStyle().Foreground(MutedColor).MarginTop(1)
	HelpKey = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)
)
