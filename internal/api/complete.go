package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apierrors "github.com/bobee/supportbot/internal/errors"
	"github.com/bobee/supportbot/internal/models"
)

const (
	contentPath = "choices.0.message.content"
	maxBodySize = 1 << 20
	maxErrBody  = 4096
)

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []models.Turn `json:"messages"`
	N        int           `json:"n"`
}

// buildPayload encodes the request body for the chat-completions endpoint
func buildPayload(model string, turns []models.Turn) ([]byte, error) {
	if len(turns) == 0 {
		return nil, fmt.Errorf("no messages to send")
	}
	return json.Marshal(completionRequest{
		Model:    model,
		Messages: turns,
		N:        1,
	})
}

// Complete posts turns to the endpoint and returns the first choice as an
// assistant Turn.
func (c *Client) Complete(ctx context.Context, turns []models.Turn) (models.Turn, error) {
	payload, err := buildPayload(c.model, turns)
	if err != nil {
		return models.Turn{}, fmt.Errorf("failed to build payload: %w", err)
	}

	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return models.Turn{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	c.logger.Debug("sending chat completion",
		zap.String("endpoint", c.endpoint),
		zap.String("model", c.model),
		zap.Int("messages", len(turns)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Turn{}, classifyTransportError(ctx, c.endpoint, err)
	}
	defer func() {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		message := gjson.GetBytes(errorBody, "error.message").String()
		return models.Turn{}, statusError(resp.StatusCode, c.endpoint, message, string(errorBody))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return models.Turn{}, classifyTransportError(ctx, c.endpoint, err)
	}

	c.logger.Debug("chat completion settled",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	content, err := parseCompletion(body)
	if err != nil {
		return models.Turn{}, err
	}
	return models.NewAssistantTurn(content), nil
}

// parseCompletion extracts choices[0].message.content from a response body
func parseCompletion(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("response is not valid JSON", "")
	}

	choices := gjson.GetBytes(body, "choices")
	if !choices.Exists() || !choices.IsArray() {
		return "", apierrors.NewParseError("missing choices array", "choices")
	}
	if len(choices.Array()) == 0 {
		return "", fmt.Errorf("%w: empty choices", apierrors.ErrNoContent)
	}

	content := gjson.GetBytes(body, contentPath)
	if !content.Exists() {
		return "", apierrors.NewParseError("missing message content", contentPath)
	}
	if content.Type != gjson.String {
		return "", apierrors.NewParseError("message content is not a string", contentPath)
	}
	return content.String(), nil
}

// statusError maps a non-success status to the error taxonomy
func statusError(status int, endpoint, message, body string) error {
	if message == "" {
		message = fmt.Sprintf("chat completion failed with status %d", status)
	}

	switch status {
	case 401, 403:
		return apierrors.NewAuthError(status, message)
	case 429:
		return apierrors.NewRateLimitError(message)
	default:
		return apierrors.NewAPIErrorWithBody(status, endpoint, message, body)
	}
}

// classifyTransportError separates deadlines from other transport failures
func classifyTransportError(ctx context.Context, endpoint string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apierrors.NewTimeoutError(fmt.Sprintf("no response from %s", endpoint))
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apierrors.NewTimeoutError(fmt.Sprintf("no response from %s", endpoint))
	}
	return apierrors.NewNetworkErrorWithEndpoint("chat completion", endpoint, err)
}
