package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/bobee/supportbot/internal/models"
	"github.com/bobee/supportbot/internal/render"
	"github.com/bobee/supportbot/internal/widget"
)

var (
	askLabelStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	askBubbleStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Foreground(colorText).
			Padding(0, 1).
			MarginBottom(1)
)

func newAskCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [message]",
		Short: "Send a single message and print the reply",
		Long: `Send one message through the same filter and client as the chat widget
and print the assistant's reply. Off-topic messages get the canned redirect
without contacting the endpoint. Reads the message from stdin when no
argument is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) > 0 {
				text = args[0]
			} else {
				data, err := io.ReadAll(deps.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text = string(data)
			}
			return runAsk(cmd.Context(), deps, flags, text)
		},
	}
}

func runAsk(ctx context.Context, deps *Dependencies, flags *globalFlags, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	s, err := newSession(deps, flags)
	if err != nil {
		return err
	}
	defer s.Close()

	s.ctrl.UpdateInput(text)
	outcome, ex := s.ctrl.Submit()

	var reply models.Turn
	switch outcome {
	case widget.OutcomeRedirected:
		reply, _ = s.ctrl.LastAssistantTurn()
	case widget.OutcomeDispatched:
		tty := deps.IsTTY()
		var spin *spinner
		if tty {
			spin = newSpinner(deps.Stderr, models.WidgetTypingText)
			spin.start()
		}

		reply, err = ex.Await(ctx)

		if spin != nil {
			spin.halt()
		}
		if err != nil {
			fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Request failed"))
			printReply(deps, reply)
			return fmt.Errorf("request failed: %w", err)
		}
	default:
		return fmt.Errorf("message was not sent (%s)", outcome)
	}

	printReply(deps, reply)
	return nil
}

// printReply writes the reply raw when piped and as a rendered bubble on a terminal
func printReply(deps *Dependencies, reply models.Turn) {
	if !deps.IsTTY() {
		fmt.Fprintln(deps.Stdout, reply.Content)
		return
	}

	bubbleWidth := min(max(deps.TerminalWidth()-4, 40), 120)
	contentWidth := bubbleWidth - 4

	opts := render.DefaultOptions().WithWidth(contentWidth)
	rendered := render.MarkdownOrPlain(reply.Content, opts)

	fmt.Fprintln(deps.Stdout, askLabelStyle.Render(models.AssistantLabel))
	fmt.Fprintln(deps.Stdout, askBubbleStyle.Width(bubbleWidth).Render(rendered))
}
