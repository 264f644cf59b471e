// Package commands provides the CLI commands for the Bobee support widget.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bobee/supportbot/internal/config"
	"github.com/bobee/supportbot/internal/filter"
	"github.com/bobee/supportbot/internal/widget"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalFlags holds the persistent flags shared by all commands
type globalFlags struct {
	model   string
	backend string
	debug   bool
}

// NewRootCmd creates the root command and its subcommands
func NewRootCmd(deps *Dependencies) *cobra.Command {
	flags := &globalFlags{}
	var startOpen bool

	cmd := &cobra.Command{
		Use:   "bobee-support",
		Short: "Bobee support chat widget for the terminal",
		Long: `bobee-support runs the Bobee support chat widget: a demo page with a
toggleable chat panel that answers questions about Bobee and cleaning
services through an OpenAI-compatible chat-completions endpoint.

The API key is read from the environment (OPENAI_API_KEY by default).

Examples:
  bobee-support                         Open the demo page (ctrl+o toggles chat)
  bobee-support chat --open             Start with the chat panel open
  bobee-support ask "Do you clean offices?"
  bobee-support config set backend sdk`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "bobee-support %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return runChat(cmd.Context(), deps, flags, startOpen)
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.model, "model", "m", "", "Model to use (e.g., gpt-3.5-turbo)")
	cmd.PersistentFlags().StringVar(&flags.backend, "backend", "", "Completion backend (http, sdk)")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")
	cmd.Flags().BoolVar(&startOpen, "open", false, "Start with the chat panel open")

	cmd.AddCommand(newChatCmd(deps, flags))
	cmd.AddCommand(newAskCmd(deps, flags))
	cmd.AddCommand(NewConfigCmd(deps))

	return cmd
}

// Execute runs the root command
func Execute() {
	deps := NewDependencies()
	if err := NewRootCmd(deps).Execute(); err != nil {
		fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}

// session bundles what a command needs to drive the controller
type session struct {
	cfg      config.Config
	log      *zap.Logger
	closeLog func() error
	ctrl     *widget.Controller
}

func (s *session) Close() {
	_ = s.closeLog()
}

// loadConfig loads the config and applies flag overrides
func loadConfig(deps *Dependencies, flags *globalFlags) (config.Config, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.model != "" {
		cfg.Model = flags.model
	}
	if flags.backend != "" {
		cfg.Backend = flags.backend
	}
	if flags.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newSession wires config, logging, the completion client and the controller
func newSession(deps *Dependencies, flags *globalFlags) (*session, error) {
	cfg, err := loadConfig(deps, flags)
	if err != nil {
		return nil, err
	}

	log, closeLog, err := deps.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "Warning: logging disabled: %v\n", err)
		log, closeLog = zap.NewNop(), func() error { return nil }
	}

	apiKey, err := deps.LoadAPIKey(cfg)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	completer, err := deps.NewCompleter(cfg, apiKey, log)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	opts := []widget.Option{
		widget.WithBrand(cfg.Brand),
		widget.WithLogger(log),
	}
	if len(cfg.Keywords) > 0 {
		opts = append(opts, widget.WithFilter(filter.New(cfg.Keywords...)))
	}

	log.Info("session started",
		zap.String("backend", cfg.Backend),
		zap.String("model", cfg.Model),
		zap.String("endpoint", cfg.Endpoint),
	)

	return &session{
		cfg:      cfg,
		log:      log,
		closeLog: closeLog,
		ctrl:     widget.New(completer, opts...),
	}, nil
}
