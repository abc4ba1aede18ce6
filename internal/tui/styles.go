package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			MarginBottom(1)

	// Header styling for steps
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	// Help text styling
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1)

	// Behind, failed
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	// Ahead of the published release, skipped
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500"))

	// Up to date, cloned, fetched
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	// Unreleased, unknown
	SubtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// NewHuhTheme returns the huh theme used by interactive forms.
func NewHuhTheme() *huh.Theme {
	theme := huh.ThemeBase()

	theme.Focused.Title = theme.Focused.Title.Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	theme.Focused.Description = theme.Focused.Description.Foreground(lipgloss.Color("#888888"))
	theme.Focused.SelectSelector = theme.Focused.SelectSelector.Foreground(lipgloss.Color("#7D56F4"))
	theme.Focused.MultiSelectSelector = theme.Focused.MultiSelectSelector.Foreground(lipgloss.Color("#7D56F4"))
	theme.Focused.SelectedOption = theme.Focused.SelectedOption.Foreground(lipgloss.Color("#04B575"))
	theme.Focused.SelectedPrefix = theme.Focused.SelectedPrefix.Foreground(lipgloss.Color("#04B575"))
	theme.Focused.UnselectedOption = theme.Focused.UnselectedOption.Foreground(lipgloss.Color("#888888"))

	theme.Blurred = theme.Focused
	theme.Blurred.Base = theme.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())

	return theme
}
