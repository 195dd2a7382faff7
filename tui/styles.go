package tui

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	borderCol = lipgloss.Color("#243141")

	appStyle   = lipgloss.NewStyle().Foreground(baseFg)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(baseDimFg)

	cornerStyle = lipgloss.NewStyle().Background(lipgloss.Color("#2B3545")).Bold(true)
	headerStyle = lipgloss.NewStyle().Background(lipgloss.Color("#1E2733")).Bold(true)
	columnStyle = lipgloss.NewStyle().Background(lipgloss.Color("#161D26"))
	bodyStyle   = lipgloss.NewStyle()
	borderStyle = lipgloss.NewStyle().Foreground(borderCol)
)
