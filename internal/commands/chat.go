package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobee/supportbot/internal/render"
	"github.com/bobee/supportbot/internal/tui"
)

func newChatCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	var startOpen bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the demo page with the chat widget",
		Long: `Open the demo page with the support chat widget in the bottom-right corner.

Press ctrl+o to open or close the panel, enter to send, ctrl+y to copy the
last reply and ctrl+c to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), deps, flags, startOpen)
		},
	}
	cmd.Flags().BoolVar(&startOpen, "open", false, "Start with the chat panel open")
	return cmd
}

func runChat(ctx context.Context, deps *Dependencies, flags *globalFlags, startOpen bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := newSession(deps, flags)
	if err != nil {
		return err
	}
	defer s.Close()

	tui.ApplyTheme(render.ThemeOrDefault(s.cfg.TUITheme))

	if startOpen {
		s.ctrl.ToggleOpen()
	}

	w := tui.NewWidget(s.ctrl,
		tui.WithContext(ctx),
		tui.WithMarkdownOptions(render.OptionsFromMarkdown(s.cfg.Markdown)),
	)

	if err := deps.RunProgram(tui.NewHost(w)); err != nil {
		return fmt.Errorf("chat UI failed: %w", err)
	}
	return nil
}
