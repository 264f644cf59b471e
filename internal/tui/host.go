package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const overlayMargin = 1

// Host is a demo landing page with the chat widget floating in its
// bottom-right corner.
type Host struct {
	widget Widget
	brand  string

	width  int
	height int
}

// NewHost creates the host page around w
func NewHost(w Widget) Host {
	return Host{
		widget: w,
		brand:  w.Controller().Brand(),
	}
}

// Widget returns the embedded widget
func (h Host) Widget() Widget {
	return h.widget
}

// Init implements tea.Model
func (h Host) Init() tea.Cmd {
	return h.widget.Init()
}

// Update implements tea.Model
func (h Host) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return h, tea.Quit
		}

	case tea.WindowSizeMsg:
		h.width = msg.Width
		h.height = msg.Height
		h.widget.SetSize(
			min(defaultPanelWidth, msg.Width-2*overlayMargin),
			min(defaultPanelHeight+4, msg.Height-2*overlayMargin),
		)
		return h, nil
	}

	var cmd tea.Cmd
	h.widget, cmd = h.widget.Update(msg)
	return h, cmd
}

// View implements tea.Model
func (h Host) View() string {
	if h.width == 0 || h.height == 0 {
		return h.widget.View()
	}
	return overlayBottomRight(h.renderPage(), h.widget.View(), h.width, h.height, overlayMargin)
}

func (h Host) renderPage() string {
	width := h.width - 4
	services := []string{
		"• Home cleaning, weekly or one-off",
		"• Office cleaning outside business hours",
		"• Vetted, insured cleaners",
		"• Flexible subscription plans",
	}

	page := lipgloss.JoinVertical(lipgloss.Left,
		pageTitleStyle.Render(h.brand),
		pageTextStyle.Width(width).Render("On-demand cleaning services for homes and offices."),
		"",
		pageTextStyle.Render(strings.Join(services, "\n")),
		"",
		pageHintStyle.Render("ctrl+o chat with us • ctrl+c quit"),
	)
	return lipgloss.NewStyle().Padding(1, 2).Render(page)
}

// overlayBottomRight draws top over base, anchored to the bottom-right
// corner of a width x height canvas.
func overlayBottomRight(base, top string, width, height, margin int) string {
	lines := strings.Split(base, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}

	topLines := strings.Split(top, "\n")
	x := max(width-lipgloss.Width(top)-margin, 0)
	y := max(height-len(topLines)-margin, 0)

	for i, tl := range topLines {
		row := y + i
		if row >= len(lines) {
			lines = append(lines, "")
		}
		left := ansi.Truncate(lines[row], x, "")
		if pad := x - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		lines[row] = left + ansi.ResetStyle + tl
	}

	return strings.Join(lines, "\n")
}
