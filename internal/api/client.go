package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"go.uber.org/zap"

	apierrors "github.com/bobee/supportbot/internal/errors"
	"github.com/bobee/supportbot/internal/models"
)

// DefaultTimeout matches the TLS client's default of 300 seconds
const DefaultTimeout = 300 * time.Second

// Completer sends a conversation to a chat-completion endpoint and returns
// the assistant's reply. Implementations issue exactly one request per call.
type Completer interface {
	Complete(ctx context.Context, turns []models.Turn) (models.Turn, error)
}

// Doer is the subset of tls_client.HttpClient used by Client
type Doer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

type clientConfig struct {
	model         string
	endpoint      string
	timeout       time.Duration
	doer          Doer
	sdkHTTPClient *http.Client
	logger        *zap.Logger
}

// ClientOption is a function that configures a completion client
type ClientOption func(*clientConfig)

// WithModel sets the model identifier sent with every request
func WithModel(model string) ClientOption {
	return func(c *clientConfig) {
		if model != "" {
			c.model = model
		}
	}
}

// WithEndpoint sets the chat-completions URL
func WithEndpoint(endpoint string) ClientOption {
	return func(c *clientConfig) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithTimeout sets the transport timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the TLS transport used by Client
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *clientConfig) {
		c.doer = doer
	}
}

// WithSDKHTTPClient replaces the net/http client used by SDKClient
func WithSDKHTTPClient(hc *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.sdkHTTPClient = hc
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *clientConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newClientConfig(opts []ClientOption) *clientConfig {
	cfg := &clientConfig{
		model:    models.DefaultModel,
		endpoint: models.EndpointChatCompletions,
		timeout:  DefaultTimeout,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Client is the default completion backend. It posts the conversation as
// JSON over the TLS client and reads the reply with gjson.
type Client struct {
	httpClient Doer
	apiKey     string
	model      string
	endpoint   string
	logger     *zap.Logger
}

// NewClient creates a Client. The API key is required.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apierrors.ErrMissingAPIKey
	}

	cfg := newClientConfig(opts)

	doer := cfg.doer
	if doer == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(cfg.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		doer = httpClient
	}

	return &Client{
		httpClient: doer,
		apiKey:     apiKey,
		model:      cfg.model,
		endpoint:   cfg.endpoint,
		logger:     cfg.logger,
	}, nil
}

// Model returns the model identifier sent with requests
func (c *Client) Model() string {
	return c.model
}

// Endpoint returns the chat-completions URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Backend names accepted by NewCompleter
const (
	BackendHTTP = "http"
	BackendSDK  = "sdk"
)

// NewCompleter builds the completion backend named by backend
func NewCompleter(backend, apiKey string, opts ...ClientOption) (Completer, error) {
	switch backend {
	case "", BackendHTTP:
		return NewClient(apiKey, opts...)
	case BackendSDK:
		return NewSDKClient(apiKey, opts...)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
