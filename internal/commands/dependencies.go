package commands

import (
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/bobee/supportbot/internal/api"
	"github.com/bobee/supportbot/internal/config"
	"github.com/bobee/supportbot/internal/logger"
)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	LoadConfig func() (config.Config, error)
	SaveConfig func(config.Config) error
	LoadAPIKey func(config.Config) (string, error)

	// NewCompleter builds the completion backend for cfg.
	NewCompleter func(cfg config.Config, apiKey string, log *zap.Logger) (api.Completer, error)

	// NewLogger returns the diagnostic logger and a close function.
	NewLogger func(cfg config.Config) (*zap.Logger, func() error, error)

	// RunProgram runs a Bubble Tea model until it quits.
	RunProgram func(m tea.Model) error

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// IsTTY reports whether stdout is a terminal.
	IsTTY func() bool
	// TerminalWidth returns the width of stdout.
	TerminalWidth func() int
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		LoadConfig:    config.LoadConfig,
		SaveConfig:    config.SaveConfig,
		LoadAPIKey:    config.LoadAPIKey,
		NewCompleter:  newCompleter,
		NewLogger:     newLogger,
		RunProgram:    runProgram,
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		Stdin:         os.Stdin,
		IsTTY:         isStdoutTTY,
		TerminalWidth: getTerminalWidth,
	}
}

func newCompleter(cfg config.Config, apiKey string, log *zap.Logger) (api.Completer, error) {
	return api.NewCompleter(cfg.Backend, apiKey,
		api.WithModel(cfg.Model),
		api.WithEndpoint(cfg.Endpoint),
		api.WithTimeout(time.Duration(cfg.RequestTimeoutSeconds)*time.Second),
		api.WithLogger(log),
	)
}

func newLogger(cfg config.Config) (*zap.Logger, func() error, error) {
	if cfg.LogFile == "" {
		return zap.NewNop(), func() error { return nil }, nil
	}
	return logger.NewFile(cfg.Debug, cfg.LogFile)
}

func runProgram(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
