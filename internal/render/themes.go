package render

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the widget panel
type Theme struct {
	Name        string
	Description string

	// MarkdownStyle is the glamour style matching the palette
	MarkdownStyle string

	Surface lipgloss.Color
	Border  lipgloss.Color

	Primary   lipgloss.Color // header, toggle badge, send control
	Secondary lipgloss.Color // online indicator
	Accent    lipgloss.Color // assistant label
	Warning   lipgloss.Color // typing indicator
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

var themes = []Theme{
	{
		Name:          "tokyonight",
		Description:   "Tokyo Night - dark with blue accents",
		MarkdownStyle: StyleTokyoNight,
		Surface:       lipgloss.Color("#24283b"),
		Border:        lipgloss.Color("#414868"),
		Primary:       lipgloss.Color("#7aa2f7"),
		Secondary:     lipgloss.Color("#9ece6a"),
		Accent:        lipgloss.Color("#bb9af7"),
		Warning:       lipgloss.Color("#e0af68"),
		Error:         lipgloss.Color("#f7768e"),
		Text:          lipgloss.Color("#c0caf5"),
		TextDim:       lipgloss.Color("#565f89"),
		TextMute:      lipgloss.Color("#3b4261"),
	},
	{
		Name:          "catppuccin",
		Description:   "Catppuccin Mocha - warm pastels",
		MarkdownStyle: StyleDark,
		Surface:       lipgloss.Color("#313244"),
		Border:        lipgloss.Color("#45475a"),
		Primary:       lipgloss.Color("#89b4fa"),
		Secondary:     lipgloss.Color("#a6e3a1"),
		Accent:        lipgloss.Color("#cba6f7"),
		Warning:       lipgloss.Color("#f9e2af"),
		Error:         lipgloss.Color("#f38ba8"),
		Text:          lipgloss.Color("#cdd6f4"),
		TextDim:       lipgloss.Color("#6c7086"),
		TextMute:      lipgloss.Color("#45475a"),
	},
	{
		Name:          "dracula",
		Description:   "Dracula - vibrant dark",
		MarkdownStyle: StyleDracula,
		Surface:       lipgloss.Color("#44475a"),
		Border:        lipgloss.Color("#6272a4"),
		Primary:       lipgloss.Color("#8be9fd"),
		Secondary:     lipgloss.Color("#50fa7b"),
		Accent:        lipgloss.Color("#ff79c6"),
		Warning:       lipgloss.Color("#f1fa8c"),
		Error:         lipgloss.Color("#ff5555"),
		Text:          lipgloss.Color("#f8f8f2"),
		TextDim:       lipgloss.Color("#6272a4"),
		TextMute:      lipgloss.Color("#44475a"),
	},
	{
		// Bobee brand colors: teal header on a light panel.
		Name:          "bobee",
		Description:   "Bobee - light panel with teal accents",
		MarkdownStyle: StyleLight,
		Surface:       lipgloss.Color("#f4f7f7"),
		Border:        lipgloss.Color("#0f9d8a"),
		Primary:       lipgloss.Color("#0f9d8a"),
		Secondary:     lipgloss.Color("#2e7d32"),
		Accent:        lipgloss.Color("#00695c"),
		Warning:       lipgloss.Color("#ef6c00"),
		Error:         lipgloss.Color("#c62828"),
		Text:          lipgloss.Color("#1b1b1b"),
		TextDim:       lipgloss.Color("#5f6b6b"),
		TextMute:      lipgloss.Color("#9aa5a5"),
	},
}

// DefaultTheme returns the tokyonight theme
func DefaultTheme() Theme {
	return themes[0]
}

// ThemeByName returns the theme with the given name
func ThemeByName(name string) (Theme, bool) {
	for _, t := range themes {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// ThemeOrDefault returns the named theme, or the default when unknown
func ThemeOrDefault(name string) Theme {
	if t, ok := ThemeByName(name); ok {
		return t
	}
	return DefaultTheme()
}

// ThemeNames returns the names of all themes
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
