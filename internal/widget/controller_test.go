package widget

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apierrors "github.com/bobee/supportbot/internal/errors"
	"github.com/bobee/supportbot/internal/filter"
	"github.com/bobee/supportbot/internal/models"
)

type fakeCompleter struct {
	mu    sync.Mutex
	calls [][]models.Turn
	reply models.Turn
	err   error

	// observe runs inside Complete, between issuance and settlement
	observe func()
	// release, when set, blocks Complete until closed
	release chan struct{}
}

func (f *fakeCompleter) Complete(ctx context.Context, turns []models.Turn) (models.Turn, error) {
	f.mu.Lock()
	f.calls = append(f.calls, turns)
	f.mu.Unlock()

	if f.observe != nil {
		f.observe()
	}
	if f.release != nil {
		<-f.release
	}
	return f.reply, f.err
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestToggleOpen(t *testing.T) {
	c := New(&fakeCompleter{})
	assert.False(t, c.State().Open)

	c.ToggleOpen()
	assert.True(t, c.State().Open)

	c.ToggleOpen()
	assert.False(t, c.State().Open)
	assert.Empty(t, c.Transcript())
}

func TestUpdateInput(t *testing.T) {
	c := New(&fakeCompleter{})
	c.UpdateInput("hel")
	c.UpdateInput("hello")
	assert.Equal(t, "hello", c.State().Input)

	c.UpdateInput("")
	assert.Equal(t, "", c.State().Input)
}

func TestSubmitBlankIsIgnored(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n"} {
		fc := &fakeCompleter{}
		c := New(fc)
		c.UpdateInput(input)

		outcome, ex := c.Submit()
		assert.Equal(t, OutcomeIgnored, outcome)
		assert.Nil(t, ex)
		assert.Empty(t, c.Transcript())
		assert.Equal(t, input, c.State().Input)
		assert.Equal(t, 0, fc.callCount())
	}
}

func TestSubmitOffTopicIsRedirected(t *testing.T) {
	fc := &fakeCompleter{}
	c := New(fc)
	c.UpdateInput("What's the weather today?")

	outcome, ex := c.Submit()
	assert.Equal(t, OutcomeRedirected, outcome)
	assert.Nil(t, ex)

	assert.Equal(t, []models.Turn{
		models.NewUserTurn("What's the weather today?"),
		models.NewAssistantTurn(models.RedirectMessage("Bobee")),
	}, c.Transcript())
	assert.Equal(t, "", c.State().Input)
	assert.False(t, c.State().Busy)
	assert.Equal(t, 0, fc.callCount())
}

func TestSubmitRelevantDispatchesOnce(t *testing.T) {
	fc := &fakeCompleter{reply: models.NewAssistantTurn("We offer home and office cleaning.")}
	c := New(fc)

	var busyDuringCall bool
	fc.observe = func() { busyDuringCall = c.Busy() }

	c.UpdateInput("Tell me about Bobee services")
	outcome, ex := c.Submit()
	require.Equal(t, OutcomeDispatched, outcome)
	require.NotNil(t, ex)

	// user turn is visible before the request settles
	assert.Equal(t, []models.Turn{models.NewUserTurn("Tell me about Bobee services")}, c.Transcript())
	assert.True(t, c.State().Busy)
	assert.Equal(t, "", c.State().Input)

	reply, err := ex.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "We offer home and office cleaning.", reply.Content)
	assert.True(t, busyDuringCall)
	assert.False(t, c.State().Busy)

	require.Equal(t, 1, fc.callCount())
	assert.Equal(t, []models.Turn{
		models.SystemTurn("Bobee"),
		models.NewUserTurn("Tell me about Bobee services"),
	}, fc.calls[0])

	assert.Equal(t, []models.Turn{
		models.NewUserTurn("Tell me about Bobee services"),
		models.NewAssistantTurn("We offer home and office cleaning."),
	}, c.Transcript())

	last, ok := c.LastAssistantTurn()
	require.True(t, ok)
	assert.Equal(t, reply, last)
}

func TestSubmitKeepsUntrimmedText(t *testing.T) {
	fc := &fakeCompleter{reply: models.NewAssistantTurn("ok")}
	c := New(fc)
	c.UpdateInput("  cleaning please  ")

	_, ex := c.Submit()
	require.NotNil(t, ex)
	assert.Equal(t, "  cleaning please  ", c.Transcript()[0].Content)
	_, _ = ex.Await(context.Background())
}

func TestSubmitWhileBusy(t *testing.T) {
	fc := &fakeCompleter{
		reply:   models.NewAssistantTurn("first"),
		release: make(chan struct{}),
	}
	c := New(fc)

	c.UpdateInput("bobee pricing")
	outcome, ex := c.Submit()
	require.Equal(t, OutcomeDispatched, outcome)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = ex.Await(context.Background())
	}()

	c.UpdateInput("another cleaning question")
	outcome, second := c.Submit()
	assert.Equal(t, OutcomeBusy, outcome)
	assert.Nil(t, second)
	assert.Equal(t, "another cleaning question", c.State().Input)
	assert.Len(t, c.Transcript(), 1)

	close(fc.release)
	<-done

	assert.False(t, c.State().Busy)
	outcome, ex = c.Submit()
	require.Equal(t, OutcomeDispatched, outcome)
	fc.release = nil
	_, err := ex.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fc.callCount())
}

func TestAwaitFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	fc := &fakeCompleter{err: apierrors.NewNetworkErrorWithEndpoint("chat completion", models.EndpointChatCompletions, errors.New("dial tcp: refused"))}
	c := New(fc, WithLogger(zap.New(core)))

	c.UpdateInput("Do you offer office cleaning?")
	_, ex := c.Submit()
	require.NotNil(t, ex)

	reply, err := ex.Await(context.Background())
	assert.True(t, apierrors.IsNetworkError(err))
	assert.Equal(t, models.NewAssistantTurn(models.FailureMessage), reply)

	assert.False(t, c.State().Busy)
	assert.Equal(t, []models.Turn{
		models.NewUserTurn("Do you offer office cleaning?"),
		models.NewAssistantTurn(models.FailureMessage),
	}, c.Transcript())

	entries := logs.FilterMessage("chat completion failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, models.EndpointChatCompletions, entries[0].ContextMap()["endpoint"])

	// the widget stays usable after a failure
	fc.err = nil
	fc.reply = models.NewAssistantTurn("yes")
	c.UpdateInput("office cleaning?")
	outcome, ex := c.Submit()
	require.Equal(t, OutcomeDispatched, outcome)
	_, err = ex.Await(context.Background())
	require.NoError(t, err)
}

func TestAwaitTwice(t *testing.T) {
	fc := &fakeCompleter{reply: models.NewAssistantTurn("ok")}
	c := New(fc)
	c.UpdateInput("cleaning")
	_, ex := c.Submit()

	_, err := ex.Await(context.Background())
	require.NoError(t, err)
	_, err = ex.Await(context.Background())
	assert.ErrorIs(t, err, apierrors.ErrAlreadySettled)
	assert.Equal(t, 1, fc.callCount())
	assert.Len(t, c.Transcript(), 2)
}

func TestRejectedTurnsAreSentLater(t *testing.T) {
	fc := &fakeCompleter{reply: models.NewAssistantTurn("sure")}
	c := New(fc)

	c.UpdateInput("What's the weather today?")
	c.Submit()
	c.UpdateInput("ok, what about cleaning?")
	_, ex := c.Submit()
	require.NotNil(t, ex)

	msgs := ex.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, models.RoleSystem, msgs[0].Role)
	assert.Equal(t, models.RedirectMessage("Bobee"), msgs[2].Content)
	assert.Equal(t, "ok, what about cleaning?", msgs[3].Content)
	_, _ = ex.Await(context.Background())
}

func TestOptions(t *testing.T) {
	fc := &fakeCompleter{reply: models.NewAssistantTurn("ok")}
	var changes int
	c := New(fc,
		WithBrand("Sparkle"),
		WithFilter(filter.New("sparkle")),
		WithOnChange(func() { changes++ }),
	)
	assert.Equal(t, "Sparkle", c.Brand())

	c.UpdateInput("bobee cleaning")
	outcome, _ := c.Submit()
	assert.Equal(t, OutcomeRedirected, outcome)
	assert.Equal(t, models.RedirectMessage("Sparkle"), c.Transcript()[1].Content)
	assert.Equal(t, 1, changes)

	c.UpdateInput("Sparkle plans")
	outcome, ex := c.Submit()
	require.Equal(t, OutcomeDispatched, outcome)
	assert.Equal(t, models.SystemTurn("Sparkle"), ex.Messages()[0])
	_, _ = ex.Await(context.Background())
	assert.Equal(t, 3, changes)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "ignored", OutcomeIgnored.String())
	assert.Equal(t, "busy", OutcomeBusy.String())
	assert.Equal(t, "redirected", OutcomeRedirected.String())
	assert.Equal(t, "dispatched", OutcomeDispatched.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
