// Package tui provides the terminal rendition of the support chat widget:
// an embeddable Widget component and a demo Host page.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bobee/supportbot/internal/render"
)

// Color variables (updated from theme)
var (
	colorSurface lipgloss.Color
	colorBorder  lipgloss.Color

	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color

	colorText     lipgloss.Color
	colorTextDim  lipgloss.Color
	colorTextMute lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	// Closed-state floating badge
	toggleStyle lipgloss.Style

	// Open panel frame
	panelStyle lipgloss.Style

	headerStyle      lipgloss.Style
	titleStyle       lipgloss.Style
	onlineStyle      lipgloss.Style
	typingStyle      lipgloss.Style
	closeHintStyle   lipgloss.Style
	emptyHintStyle   lipgloss.Style
	customerLabel    lipgloss.Style
	assistantLabel   lipgloss.Style
	customerBubble   lipgloss.Style
	assistantBubble  lipgloss.Style
	inputStyle       lipgloss.Style
	sendEnabled      lipgloss.Style
	sendDisabled     lipgloss.Style
	statusLineStyle  lipgloss.Style
	statusErrorStyle lipgloss.Style

	// Host page
	pageTitleStyle lipgloss.Style
	pageTextStyle  lipgloss.Style
	pageHintStyle  lipgloss.Style
)

func init() {
	ApplyTheme(render.DefaultTheme())
}

// ApplyTheme refreshes all styles from theme
func ApplyTheme(theme render.Theme) {
	colorSurface = theme.Surface
	colorBorder = theme.Border
	colorPrimary = theme.Primary
	colorSecondary = theme.Secondary
	colorAccent = theme.Accent
	colorWarning = theme.Warning
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute

	rebuildStyles()
}

func rebuildStyles() {
	toggleStyle = lipgloss.NewStyle().
		Foreground(colorSurface).
		Background(colorPrimary).
		Bold(true).
		Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(colorTextMute)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	onlineStyle = lipgloss.NewStyle().
		Foreground(colorSecondary)

	typingStyle = lipgloss.NewStyle().
		Foreground(colorWarning).
		Italic(true)

	closeHintStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	emptyHintStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true)

	customerLabel = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	assistantLabel = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	customerBubble = lipgloss.NewStyle().
		Foreground(colorText).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(0, 1)

	assistantBubble = lipgloss.NewStyle().
		Foreground(colorText).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(colorTextMute)

	sendEnabled = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	sendDisabled = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Strikethrough(true)

	statusLineStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	statusErrorStyle = lipgloss.NewStyle().
		Foreground(colorError)

	pageTitleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		MarginBottom(1)

	pageTextStyle = lipgloss.NewStyle().
		Foreground(colorText)

	pageHintStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true)
}
