package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/bobee/supportbot/internal/errors"
)

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := apierrors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
		return sb.String()
	}

	switch {
	case apierrors.IsMissingAPIKey(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Export OPENAI_API_KEY or set api_key_env with 'bobee-support config set'"))
	case apierrors.IsAuthError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The API key was rejected. Check that it is valid and has not been revoked"))
	case apierrors.IsRateLimitError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The provider is rate limiting requests. Try again later"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check your internet connection and the configured endpoint"))
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Raise request_timeout_seconds or try again"))
	case apierrors.IsParseError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The endpoint did not return a chat-completions response"))
	}

	return sb.String()
}
