package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for the UI.
type Theme struct {
	Name string

	Text    string
	Muted   string
	Accent  string
	Success string
	Warning string
	Danger  string

	Border      string
	BorderFocus string
	SelectionBg string
}

// Styles returns prebuilt lipgloss styles for the theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)).Bold(true),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		Danger:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),
		TabActive: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)).Bold(true).Underline(true),
		Tab:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)).
			Background(lipgloss.Color(t.Danger)).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.Text)),
		Footer: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)).Padding(0, 1),
	}
}

// Styles holds the prebuilt lipgloss styles.
type Styles struct {
	Text      lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Danger    lipgloss.Style
	TabActive lipgloss.Style
	Tab       lipgloss.Style
	Badge     lipgloss.Style
	Selected  lipgloss.Style
	Footer    lipgloss.Style
}

var themes = map[string]Theme{
	"Dracula": {
		Name:        "Dracula",
		Text:        "#F8F8F2",
		Muted:       "#6272A4",
		Accent:      "#BD93F9",
		Success:     "#50FA7B",
		Warning:     "#FFB86C",
		Danger:      "#FF5555",
		Border:      "#44475A",
		BorderFocus: "#BD93F9",
		SelectionBg: "#44475A",
	},
	"Slate": {
		Name:        "Slate",
		Text:        "#f1f5f9",
		Muted:       "#94a3b8",
		Accent:      "#38bdf8",
		Success:     "#22c55e",
		Warning:     "#f59e0b",
		Danger:      "#ef4444",
		Border:      "#334155",
		BorderFocus: "#38bdf8",
		SelectionBg: "#0284c7",
	},
}

// GetTheme returns a theme by name, defaulting to Dracula.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["Dracula"]
}
