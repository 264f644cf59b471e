// Package widget implements the support chat controller: the interaction
// state, the transcript, and the single outstanding completion request.
package widget

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/bobee/supportbot/internal/api"
	"github.com/bobee/supportbot/internal/filter"
	"github.com/bobee/supportbot/internal/models"
)

// State is the interaction state of the widget
type State struct {
	Open  bool
	Input string
	Busy  bool
}

// Outcome describes what Submit did with the input buffer
type Outcome int

const (
	// OutcomeIgnored means the buffer was blank and nothing changed
	OutcomeIgnored Outcome = iota
	// OutcomeBusy means a reply is pending and nothing changed
	OutcomeBusy
	// OutcomeRedirected means the message was off-topic and answered locally
	OutcomeRedirected
	// OutcomeDispatched means an Exchange is ready to be awaited
	OutcomeDispatched
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeBusy:
		return "busy"
	case OutcomeRedirected:
		return "redirected"
	case OutcomeDispatched:
		return "dispatched"
	default:
		return "unknown"
	}
}

// Controller owns the widget state and transcript. It is safe for use from
// a UI loop plus the goroutine awaiting the current Exchange.
type Controller struct {
	mu         sync.Mutex
	state      State
	transcript *models.Transcript

	completer api.Completer
	filter    *filter.Filter
	brand     string
	inflight  *semaphore.Weighted
	logger    *zap.Logger
	onChange  func()
}

// Option configures a Controller
type Option func(*Controller)

// WithFilter replaces the default keyword filter
func WithFilter(f *filter.Filter) Option {
	return func(c *Controller) {
		if f != nil {
			c.filter = f
		}
	}
}

// WithBrand sets the brand named in the system and redirect messages
func WithBrand(brand string) Option {
	return func(c *Controller) {
		if strings.TrimSpace(brand) != "" {
			c.brand = brand
		}
	}
}

// WithLogger sets the logger used for request failures
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOnChange registers a hook called after every transcript or busy change
func WithOnChange(fn func()) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// New creates a closed, idle Controller with an empty transcript
func New(completer api.Completer, opts ...Option) *Controller {
	c := &Controller{
		transcript: models.NewTranscript(),
		completer:  completer,
		filter:     filter.Default(),
		brand:      models.DefaultBrand,
		inflight:   semaphore.NewWeighted(1),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetOnChange replaces the change hook
func (c *Controller) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Brand returns the configured brand name
func (c *Controller) Brand() string {
	return c.brand
}

// ToggleOpen flips the panel visibility. The transcript is untouched.
func (c *Controller) ToggleOpen() {
	c.mu.Lock()
	c.state.Open = !c.state.Open
	c.mu.Unlock()
}

// UpdateInput replaces the input buffer
func (c *Controller) UpdateInput(text string) {
	c.mu.Lock()
	c.state.Input = text
	c.mu.Unlock()
}

// Submit consumes the input buffer. A dispatched submission returns the
// Exchange that must be awaited to settle the request.
func (c *Controller) Submit() (Outcome, *Exchange) {
	c.mu.Lock()

	text := c.state.Input
	if strings.TrimSpace(text) == "" {
		c.mu.Unlock()
		return OutcomeIgnored, nil
	}

	if !c.inflight.TryAcquire(1) {
		c.mu.Unlock()
		return OutcomeBusy, nil
	}

	c.transcript.Append(models.NewUserTurn(text))
	c.state.Input = ""

	if !c.filter.IsRelevant(text) {
		c.transcript.Append(models.NewAssistantTurn(models.RedirectMessage(c.brand)))
		c.inflight.Release(1)
		c.mu.Unlock()
		c.logger.Debug("message redirected", zap.Int("transcript_len", c.transcript.Len()))
		c.notify()
		return OutcomeRedirected, nil
	}

	c.state.Busy = true
	ex := &Exchange{
		c:        c,
		messages: c.transcript.WithSystem(models.SystemTurn(c.brand)),
	}
	c.mu.Unlock()

	c.notify()
	return OutcomeDispatched, ex
}

// State returns a snapshot of the interaction state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a reply is pending
func (c *Controller) Busy() bool {
	return c.State().Busy
}

// Transcript returns a copy of the conversation so far
func (c *Controller) Transcript() []models.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Turns()
}

// LastAssistantTurn returns the most recent assistant turn, if any
func (c *Controller) LastAssistantTurn() (models.Turn, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.LastByRole(models.RoleAssistant)
}

// settle appends the reply, clears busy and frees the request slot
func (c *Controller) settle(reply models.Turn) {
	c.mu.Lock()
	c.transcript.Append(reply)
	c.state.Busy = false
	c.inflight.Release(1)
	c.mu.Unlock()

	c.notify()
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}
