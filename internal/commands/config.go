package commands

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/bobee/supportbot/internal/config"
)

// NewConfigCmd creates a new config command
func NewConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Show or change the settings stored in ~/.bobee/config.json.

The API key is never stored in the config file. It is read from the
environment variable named by api_key_env.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(deps)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(deps.Stdout, path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Long: `Change a setting. Keys: model, endpoint, backend, brand, keywords
(comma separated), request_timeout_seconds, tui_theme, markdown.style,
log_file, debug, api_key_env.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(deps, args[0], args[1])
		},
	})

	return cmd
}

func runConfigShow(deps *Dependencies) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(deps.Stdout, string(data))

	key, _ := deps.LoadAPIKey(cfg)
	keyStyle := lipgloss.NewStyle().Foreground(colorPrimary)
	fmt.Fprintf(deps.Stdout, "%s %s\n", keyStyle.Render("api key:"), config.MaskSecret(key))
	return nil
}

func runConfigSet(deps *Dependencies, key, value string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.SetValue(&cfg, key, value); err != nil {
		return err
	}
	if err := deps.SaveConfig(cfg); err != nil {
		return err
	}

	ok := lipgloss.NewStyle().Foreground(colorSuccess).Render(fmt.Sprintf("✓ %s updated", key))
	fmt.Fprintln(deps.Stdout, ok)
	return nil
}
