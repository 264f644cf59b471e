package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"

	apierrors "github.com/bobee/supportbot/internal/errors"
	"github.com/bobee/supportbot/internal/models"
)

// SDKClient is a completion backend built on the official OpenAI SDK
type SDKClient struct {
	client   oai.Client
	model    string
	endpoint string
	logger   *zap.Logger
}

// NewSDKClient creates an SDKClient. Retries are disabled so each Complete
// call issues exactly one request.
func NewSDKClient(apiKey string, opts ...ClientOption) (*SDKClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apierrors.ErrMissingAPIKey
	}

	cfg := newClientConfig(opts)

	httpClient := cfg.sdkHTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.timeout}
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL(cfg.endpoint)),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}

	return &SDKClient{
		client:   oai.NewClient(reqOpts...),
		model:    cfg.model,
		endpoint: cfg.endpoint,
		logger:   cfg.logger,
	}, nil
}

// baseURL strips the chat/completions path so the SDK can append it again
func baseURL(endpoint string) string {
	base := strings.TrimSuffix(endpoint, "/")
	base = strings.TrimSuffix(base, "/chat/completions")
	return base + "/"
}

// Complete implements Completer.
func (s *SDKClient) Complete(ctx context.Context, turns []models.Turn) (models.Turn, error) {
	if len(turns) == 0 {
		return models.Turn{}, fmt.Errorf("failed to build payload: no messages to send")
	}

	messages := make([]oai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		msg, err := convertTurn(t)
		if err != nil {
			return models.Turn{}, fmt.Errorf("failed to build payload: %w", err)
		}
		messages = append(messages, msg)
	}

	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(s.model),
		Messages: messages,
		N:        param.NewOpt(int64(1)),
	}

	start := time.Now()
	s.logger.Debug("sending chat completion",
		zap.String("endpoint", s.endpoint),
		zap.String("model", s.model),
		zap.Int("messages", len(turns)),
		zap.String("backend", BackendSDK),
	)

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return models.Turn{}, s.mapError(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return models.Turn{}, fmt.Errorf("%w: empty choices", apierrors.ErrNoContent)
	}

	s.logger.Debug("chat completion settled", zap.Duration("duration", time.Since(start)))

	return models.NewAssistantTurn(resp.Choices[0].Message.Content), nil
}

func (s *SDKClient) mapError(ctx context.Context, err error) error {
	var sdkErr *oai.Error
	if errors.As(err, &sdkErr) {
		return statusError(sdkErr.StatusCode, s.endpoint, sdkErr.Message, sdkErr.RawJSON())
	}
	return classifyTransportError(ctx, s.endpoint, err)
}

// convertTurn converts a Turn to an SDK message param
func convertTurn(t models.Turn) (oai.ChatCompletionMessageParamUnion, error) {
	switch t.Role {
	case models.RoleSystem:
		return oai.SystemMessage(t.Content), nil
	case models.RoleUser:
		return oai.UserMessage(t.Content), nil
	case models.RoleAssistant:
		asst := oai.ChatCompletionAssistantMessageParam{}
		asst.Content.OfString = oai.String(t.Content)
		return oai.ChatCompletionMessageParamUnion{OfAssistant: &asst}, nil
	default:
		return oai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unknown message role %q", t.Role)
	}
}
