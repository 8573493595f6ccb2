package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorFgPrimary = lipgloss.Color("#ABB2BF")
	colorFgMuted   = lipgloss.Color("#636B78")
	colorRed       = lipgloss.Color("#E06C75")
	colorGreen     = lipgloss.Color("#98C379")
	colorYellow    = lipgloss.Color("#E5C07B")
	colorBlue      = lipgloss.Color("#61AFEF")
	colorMagenta   = lipgloss.Color("#C678DD")
	colorBorder    = lipgloss.Color("#3F4451")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorMagenta).
			Bold(true).
			PaddingLeft(1)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			Width(28)

	activeColumnStyle = columnStyle.
				BorderForeground(colorBlue)

	columnTitleStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)

	taskStyle = lipgloss.NewStyle().
			Foreground(colorFgPrimary)

	selectedTaskStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true)

	doneTaskStyle = lipgloss.NewStyle().
			Foreground(colorFgMuted).
			Strikethrough(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorFgMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	clockStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true).
			Padding(1, 4).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)
)
