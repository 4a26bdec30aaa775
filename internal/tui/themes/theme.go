// Package themes holds the color themes of the chat console.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title       lipgloss.Style
	UserLine    lipgloss.Style
	Normal      lipgloss.Style
	Muted       lipgloss.Style
	Prompt      lipgloss.Style
	StatusError lipgloss.Style
	StatusSaved lipgloss.Style
	StatusAsk   lipgloss.Style
	Spinner     lipgloss.Style
	Primary     lipgloss.Color
	Border      lipgloss.Color
}

func build(primary, foreground, muted, success, warning, errColor, border lipgloss.Color) Theme {
	return Theme{
		Primary: primary,
		Border:  border,
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginBottom(1),
		UserLine: lipgloss.NewStyle().
			Bold(true).
			Foreground(foreground),
		Normal: lipgloss.NewStyle().
			Foreground(foreground),
		Muted: lipgloss.NewStyle().
			Foreground(muted),
		Prompt: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		StatusError: lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true),
		StatusSaved: lipgloss.NewStyle().
			Foreground(success).
			Bold(true),
		StatusAsk: lipgloss.NewStyle().
			Foreground(warning).
			Italic(true),
		Spinner: lipgloss.NewStyle().
			Foreground(primary),
	}
}

// Default is the default theme.
var Default = build(
	lipgloss.Color("#F2B134"),
	lipgloss.Color("#fafafa"),
	lipgloss.Color("#737373"),
	lipgloss.Color("#10b981"),
	lipgloss.Color("#f59e0b"),
	lipgloss.Color("#ef4444"),
	lipgloss.Color("#404040"),
)

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(
	lipgloss.Color("#f9e2af"),
	lipgloss.Color("#cdd6f4"),
	lipgloss.Color("#6c7086"),
	lipgloss.Color("#a6e3a1"),
	lipgloss.Color("#fab387"),
	lipgloss.Color("#f38ba8"),
	lipgloss.Color("#45475a"),
)

// ByName returns the named theme, or Default.
func ByName(name string) Theme {
	switch name {
	case "catppuccin", "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
