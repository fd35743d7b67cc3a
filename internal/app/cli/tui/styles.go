package tui

import "github.com/charmbracelet/lipgloss"

// Shared lipgloss styles used by the package's interactive dependency
// search prompt.
var (
	cyanBold         = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	greenCheck       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	greenStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	dimStyle         = lipgloss.NewStyle().Faint(true)
	inputPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	inputTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	cursorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	spinnerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	selectedStyle    = lipgloss.NewStyle().Bold(true)
)
