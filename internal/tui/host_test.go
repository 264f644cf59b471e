package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

func TestHostQuit(t *testing.T) {
	h := NewHost(newTestWidget(&stubCompleter{}))

	_, cmd := h.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should produce tea.QuitMsg")
	}
}

func TestHostOverlaysWidget(t *testing.T) {
	h := NewHost(newTestWidget(&stubCompleter{}))

	m, _ := h.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	h = m.(Host)

	view := ansi.Strip(h.View())
	if !strings.Contains(view, "Bobee") {
		t.Error("host page should show the brand")
	}
	lines := strings.Split(view, "\n")
	if len(lines) < 30 {
		t.Fatalf("view has %d lines, want at least 30", len(lines))
	}
	// toggle sits near the bottom-right corner
	if !strings.Contains(lines[28], "Chat") {
		t.Errorf("toggle not found on the bottom row: %q", lines[28])
	}

	m, _ = h.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	h = m.(Host)
	if !h.Widget().Open() {
		t.Fatal("ctrl+o should reach the widget")
	}
	view = ansi.Strip(h.View())
	if !strings.Contains(view, "Support Bot") {
		t.Error("open panel should be drawn over the page")
	}
	width, _ := h.Widget().Size()
	if width > 100-2*overlayMargin {
		t.Errorf("panel width %d exceeds the window", width)
	}
}

func TestOverlayBottomRight(t *testing.T) {
	base := "aaaaaaaaaa\nbbbbbbbbbb\ncccccccccc"
	got := ansi.Strip(overlayBottomRight(base, "XY", 10, 3, 1))
	lines := strings.Split(got, "\n")

	if lines[1] != "bbbbbbbXY" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if lines[0] != "aaaaaaaaaa" || lines[2] != "cccccccccc" {
		t.Errorf("other lines should be untouched: %q", lines)
	}
}
