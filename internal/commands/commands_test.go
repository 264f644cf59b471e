package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bobee/supportbot/internal/api"
	"github.com/bobee/supportbot/internal/config"
	apierrors "github.com/bobee/supportbot/internal/errors"
	"github.com/bobee/supportbot/internal/models"
	"github.com/bobee/supportbot/internal/tui"
)

type stubCompleter struct {
	mu    sync.Mutex
	turns [][]models.Turn
	reply models.Turn
	err   error
}

func (s *stubCompleter) Complete(ctx context.Context, turns []models.Turn) (models.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turns)
	return s.reply, s.err
}

type testEnv struct {
	deps      *Dependencies
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	completer *stubCompleter
	cfg       config.Config
	saved     *config.Config
	gotKey    string
	gotCfg    config.Config
	program   tea.Model
}

func newTestEnv() *testEnv {
	env := &testEnv{
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
		completer: &stubCompleter{reply: models.NewAssistantTurn("We clean homes and offices.")},
		cfg:       config.DefaultConfig(),
	}
	env.deps = &Dependencies{
		LoadConfig: func() (config.Config, error) { return env.cfg, nil },
		SaveConfig: func(c config.Config) error {
			env.saved = &c
			return nil
		},
		LoadAPIKey: func(config.Config) (string, error) { return "sk-test-secret", nil },
		NewCompleter: func(cfg config.Config, apiKey string, log *zap.Logger) (api.Completer, error) {
			env.gotKey = apiKey
			env.gotCfg = cfg
			return env.completer, nil
		},
		NewLogger: func(config.Config) (*zap.Logger, func() error, error) {
			return zap.NewNop(), func() error { return nil }, nil
		},
		RunProgram: func(m tea.Model) error {
			env.program = m
			return nil
		},
		Stdout:        env.stdout,
		Stderr:        env.stderr,
		Stdin:         strings.NewReader(""),
		IsTTY:         func() bool { return false },
		TerminalWidth: func() int { return 80 },
	}
	return env
}

func (env *testEnv) run(args ...string) error {
	cmd := NewRootCmd(env.deps)
	cmd.SetArgs(args)
	cmd.SetOut(env.stdout)
	cmd.SetErr(env.stderr)
	return cmd.Execute()
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCmd(newTestEnv().deps)
	assert.Equal(t, "bobee-support", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"chat", "ask", "config"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestVersionFlag(t *testing.T) {
	env := newTestEnv()
	require.NoError(t, env.run("--version"))
	assert.Contains(t, env.stdout.String(), "bobee-support "+Version)
	assert.Nil(t, env.program)
}

func TestRootRunsHost(t *testing.T) {
	env := newTestEnv()
	require.NoError(t, env.run("--open", "--model", "gpt-4o-mini"))

	host, ok := env.program.(tui.Host)
	require.True(t, ok, "expected tui.Host, got %T", env.program)
	assert.True(t, host.Widget().Open())
	assert.Equal(t, "sk-test-secret", env.gotKey)
	assert.Equal(t, "gpt-4o-mini", env.gotCfg.Model)
}

func TestChatCommandStartsClosed(t *testing.T) {
	env := newTestEnv()
	require.NoError(t, env.run("chat", "--backend", "sdk"))

	host, ok := env.program.(tui.Host)
	require.True(t, ok)
	assert.False(t, host.Widget().Open())
	assert.Equal(t, "sdk", env.gotCfg.Backend)
}

func TestInvalidBackendFlag(t *testing.T) {
	env := newTestEnv()
	err := env.run("chat", "--backend", "grpc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.Nil(t, env.program)
}

func TestMissingAPIKey(t *testing.T) {
	env := newTestEnv()
	env.deps.LoadAPIKey = func(config.Config) (string, error) {
		return "", apierrors.ErrMissingAPIKey
	}
	err := env.run("ask", "Do you clean offices?")
	assert.ErrorIs(t, err, apierrors.ErrMissingAPIKey)
	assert.Contains(t, formatErrorMessage(err, "Error"), "OPENAI_API_KEY")
}

func TestAskRelevant(t *testing.T) {
	env := newTestEnv()
	require.NoError(t, env.run("ask", "Do you offer office cleaning?"))

	assert.Equal(t, "We clean homes and offices.\n", env.stdout.String())
	require.Len(t, env.completer.turns, 1)
	sent := env.completer.turns[0]
	require.Len(t, sent, 2)
	assert.Equal(t, models.SystemTurn("Bobee"), sent[0])
	assert.Equal(t, models.NewUserTurn("Do you offer office cleaning?"), sent[1])
}

func TestAskRedirect(t *testing.T) {
	env := newTestEnv()
	require.NoError(t, env.run("ask", "What's the weather today?"))

	assert.Equal(t, models.RedirectMessage("Bobee")+"\n", env.stdout.String())
	assert.Empty(t, env.completer.turns)
}

func TestAskFromStdin(t *testing.T) {
	env := newTestEnv()
	env.deps.Stdin = strings.NewReader("subscription plans?\n")
	require.NoError(t, env.run("ask"))
	assert.Len(t, env.completer.turns, 1)
}

func TestAskEmpty(t *testing.T) {
	env := newTestEnv()
	err := env.run("ask", "   ")
	assert.Error(t, err)
	assert.Empty(t, env.completer.turns)
}

func TestAskFailure(t *testing.T) {
	env := newTestEnv()
	env.completer.err = apierrors.NewAPIErrorWithBody(500, models.EndpointChatCompletions, "upstream", "oops")

	err := env.run("ask", "cleaning prices")
	require.Error(t, err)
	assert.Equal(t, models.FailureMessage+"\n", env.stdout.String())
	assert.Contains(t, env.stderr.String(), "HTTP Status: 500")
	assert.NotContains(t, env.stderr.String(), "sk-test-secret")
}

func TestAskCustomKeywordsAndBrand(t *testing.T) {
	env := newTestEnv()
	env.cfg.Brand = "Sparkle"
	env.cfg.Keywords = []string{"sparkle"}

	require.NoError(t, env.run("ask", "home cleaning"))
	assert.Equal(t, models.RedirectMessage("Sparkle")+"\n", env.stdout.String())

	env.stdout.Reset()
	require.NoError(t, env.run("ask", "Sparkle pricing"))
	require.Len(t, env.completer.turns, 1)
	assert.Equal(t, models.SystemTurn("Sparkle"), env.completer.turns[0][0])
}

func TestConfigShowMasksKey(t *testing.T) {
	env := newTestEnv()
	require.NoError(t, env.run("config", "show"))

	out := env.stdout.String()
	assert.Contains(t, out, `"model": "gpt-3.5-turbo"`)
	assert.Contains(t, out, "api key:")
	assert.NotContains(t, out, "sk-test-secret")
}

func TestConfigSet(t *testing.T) {
	env := newTestEnv()
	require.NoError(t, env.run("config", "set", "backend", "sdk"))
	require.NotNil(t, env.saved)
	assert.Equal(t, "sdk", env.saved.Backend)
	assert.Contains(t, env.stdout.String(), "backend updated")

	env.saved = nil
	assert.Error(t, env.run("config", "set", "backend", "grpc"))
	assert.Nil(t, env.saved)
}

func TestLoggerFailureFallsBack(t *testing.T) {
	env := newTestEnv()
	env.deps.NewLogger = func(config.Config) (*zap.Logger, func() error, error) {
		return nil, nil, errors.New("read-only filesystem")
	}
	require.NoError(t, env.run("ask", "home cleaning"))
	assert.Contains(t, env.stderr.String(), "logging disabled")
}

func TestFormatErrorMessage(t *testing.T) {
	assert.Equal(t, "", formatErrorMessage(nil, "ctx"))

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"api error with body", apierrors.NewAPIErrorWithBody(502, "/ep", "bad", "gateway down"), "gateway down"},
		{"auth", apierrors.NewAuthError(401, ""), "Hint"},
		{"rate limit", apierrors.NewRateLimitError(""), "rate limiting"},
		{"network", apierrors.NewNetworkErrorWithEndpoint("op", "/ep", errors.New("refused")), "Endpoint: /ep"},
		{"timeout", apierrors.NewTimeoutError(""), "timed out"},
		{"parse", apierrors.NewParseError("bad", ""), "chat-completions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, formatErrorMessage(tt.err, "Failed"), tt.want)
		})
	}
}
