package commands

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorAccent   = lipgloss.Color("#bb9af7")
	colorError    = lipgloss.Color("#f7768e")
)

// spinner draws a typing indicator on stderr while a reply is pending
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

func (s *spinner) render() {
	var dots strings.Builder
	lit := s.frame % 4
	for i := 0; i < 3; i++ {
		if i < lit {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorAccent).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}
	msg := lipgloss.NewStyle().Foreground(colorText).Italic(true).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s %s", dots.String(), msg)
}

// halt stops the animation and waits for the line to be cleared
func (s *spinner) halt() {
	s.mu.Lock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
	s.mu.Unlock()
	<-s.done
}
