package tui

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/bobee/supportbot/internal/errors"
	"github.com/bobee/supportbot/internal/models"
	"github.com/bobee/supportbot/internal/render"
	"github.com/bobee/supportbot/internal/widget"
)

const (
	defaultPanelWidth  = 52
	defaultPanelHeight = 22
	minPanelWidth      = 24
	minPanelHeight     = 10

	sendLabel  = "[ Send ]"
	toggleText = "💬 Chat"
)

type keyMap struct {
	Toggle     key.Binding
	Close      key.Binding
	Send       key.Binding
	Copy       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "chat")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Send:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Copy:       key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy reply")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll")),
	}
}

// settledMsg reports the end of the outstanding request
type settledMsg struct {
	reply models.Turn
	err   error
}

// copiedMsg reports the result of a clipboard write
type copiedMsg struct {
	err error
}

// clipboardWrite is replaced in tests
var clipboardWrite = clipboard.WriteAll

// Widget is the chat panel component. Embed it in a host model and forward
// messages to Update.
type Widget struct {
	ctrl *widget.Controller
	ctx  context.Context
	keys keyMap

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	markdown render.Options

	width  int
	height int

	// changes is bumped by the controller's change hook; seen is the value
	// the viewport was last rebuilt for.
	changes *atomic.Uint64
	seen    uint64

	status    string
	statusErr bool
}

// WidgetOption configures a Widget
type WidgetOption func(*Widget)

// WithMarkdownOptions sets how assistant replies are rendered
func WithMarkdownOptions(opts render.Options) WidgetOption {
	return func(w *Widget) {
		w.markdown = opts
	}
}

// WithContext sets the context passed to outstanding requests
func WithContext(ctx context.Context) WidgetOption {
	return func(w *Widget) {
		if ctx != nil {
			w.ctx = ctx
		}
	}
}

// NewWidget creates a Widget driven by ctrl
func NewWidget(ctrl *widget.Controller, opts ...WidgetOption) Widget {
	ti := textinput.New()
	ti.Placeholder = models.Placeholder(ctrl.Brand())
	ti.Prompt = "› "
	ti.CharLimit = 0
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorPrimary)
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorText)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(colorTextDim)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = typingStyle

	w := Widget{
		ctrl:     ctrl,
		ctx:      context.Background(),
		keys:     defaultKeyMap(),
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  s,
		markdown: render.DefaultOptions(),
		changes:  &atomic.Uint64{},
	}
	for _, opt := range opts {
		opt(&w)
	}

	changes := w.changes
	ctrl.SetOnChange(func() { changes.Add(1) })

	if ctrl.State().Open {
		w.input.Focus()
	}
	w.SetSize(defaultPanelWidth, defaultPanelHeight)
	return w
}

// Init starts the cursor blink when the panel is open
func (w Widget) Init() tea.Cmd {
	if w.Open() {
		return textinput.Blink
	}
	return nil
}

// Open reports whether the panel is visible
func (w Widget) Open() bool {
	return w.ctrl.State().Open
}

// Controller returns the underlying controller
func (w Widget) Controller() *widget.Controller {
	return w.ctrl
}

// SetSize sets the outer size of the open panel
func (w *Widget) SetSize(width, height int) {
	w.width = max(width, minPanelWidth)
	w.height = max(height, minPanelHeight)

	inner := w.innerWidth()
	// panel border (2) + header (2) + input (2) + status (1)
	w.viewport.Width = inner
	w.viewport.Height = w.height - 7
	w.input.Width = inner - lipgloss.Width(sendLabel) - lipgloss.Width(w.input.Prompt) - 2
	w.refresh()
}

// Size returns the outer panel size
func (w Widget) Size() (int, int) {
	return w.width, w.height
}

func (w Widget) innerWidth() int {
	// border + horizontal padding
	return w.width - 4
}

// Update handles key presses and request settlement
func (w Widget) Update(msg tea.Msg) (Widget, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, w.keys.Toggle) {
			cmds = append(cmds, w.toggle())
			break
		}
		if !w.Open() {
			return w, nil
		}

		switch {
		case key.Matches(msg, w.keys.Close):
			cmds = append(cmds, w.toggle())
		case key.Matches(msg, w.keys.Send):
			cmds = append(cmds, w.submit())
		case key.Matches(msg, w.keys.Copy):
			cmds = append(cmds, w.copyLastReply())
		case key.Matches(msg, w.keys.ScrollUp, w.keys.ScrollDown):
			w.viewport, cmd = w.viewport.Update(msg)
			cmds = append(cmds, cmd)
		default:
			w.input, cmd = w.input.Update(msg)
			cmds = append(cmds, cmd)
			w.ctrl.UpdateInput(w.input.Value())
		}

	case settledMsg:
		if msg.err != nil {
			w.setStatus(describeError(msg.err), true)
		}

	case copiedMsg:
		if msg.err != nil {
			w.setStatus("Copy failed: clipboard unavailable", true)
		} else {
			w.setStatus("Reply copied to clipboard", false)
		}

	case spinner.TickMsg:
		if w.ctrl.Busy() {
			w.spinner, cmd = w.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		if w.Open() {
			w.input, cmd = w.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	w.syncTranscript()
	return w, tea.Batch(cmds...)
}

func (w *Widget) toggle() tea.Cmd {
	w.ctrl.ToggleOpen()
	if !w.Open() {
		w.input.Blur()
		return nil
	}
	w.refresh()
	return w.input.Focus()
}

func (w *Widget) submit() tea.Cmd {
	w.ctrl.UpdateInput(w.input.Value())
	outcome, ex := w.ctrl.Submit()

	switch outcome {
	case widget.OutcomeBusy:
		w.setStatus("Please wait for the current reply", false)
		return nil
	case widget.OutcomeRedirected:
		w.input.Reset()
		w.setStatus("", false)
		return nil
	case widget.OutcomeDispatched:
		w.input.Reset()
		w.setStatus("", false)
		return tea.Batch(awaitExchange(w.ctx, ex), w.spinner.Tick)
	default:
		return nil
	}
}

// awaitExchange runs the outstanding request off the update loop. Closing
// the panel does not cancel it.
func awaitExchange(ctx context.Context, ex *widget.Exchange) tea.Cmd {
	return func() tea.Msg {
		reply, err := ex.Await(ctx)
		return settledMsg{reply: reply, err: err}
	}
}

func (w *Widget) copyLastReply() tea.Cmd {
	turn, ok := w.ctrl.LastAssistantTurn()
	if !ok {
		w.setStatus("Nothing to copy yet", false)
		return nil
	}
	return func() tea.Msg {
		return copiedMsg{err: clipboardWrite(turn.Content)}
	}
}

func (w *Widget) setStatus(text string, isErr bool) {
	w.status = text
	w.statusErr = isErr
}

func (w *Widget) syncTranscript() {
	if n := w.changes.Load(); n != w.seen {
		w.seen = n
		w.refresh()
	}
}

// refresh rebuilds the message list and scrolls to the newest entry
func (w *Widget) refresh() {
	turns := w.ctrl.Transcript()
	inner := w.innerWidth()

	if len(turns) == 0 {
		hint := "Ask us about " + w.ctrl.Brand() + " cleaning services, pricing or subscriptions."
		w.viewport.SetContent(emptyHintStyle.Width(inner).Render(hint))
		return
	}

	bubbleWidth := inner - 4
	var content strings.Builder
	for i, turn := range turns {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(renderTurn(turn, bubbleWidth, inner, w.markdown))
		content.WriteString("\n")
	}

	w.viewport.SetContent(content.String())
	w.viewport.GotoBottom()
}

func renderTurn(turn models.Turn, bubbleWidth, inner int, md render.Options) string {
	if turn.IsUser() {
		label := customerLabel.Render(models.CustomerLabel)
		bubble := customerBubble.Width(bubbleWidth).Render(turn.Content)
		block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
		return lipgloss.PlaceHorizontal(inner, lipgloss.Right, block)
	}

	label := assistantLabel.Render(models.AssistantLabel)
	body := render.MarkdownOrPlain(turn.Content, md.WithWidth(bubbleWidth-4))
	bubble := assistantBubble.Width(bubbleWidth).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, label, bubble)
}

// View renders the toggle badge when closed and the panel when open
func (w Widget) View() string {
	if !w.Open() {
		return toggleStyle.Render(toggleText)
	}

	busy := w.ctrl.Busy()
	inner := w.innerWidth()

	status := onlineStyle.Render("● " + models.WidgetStatus)
	if busy {
		status = w.spinner.View() + typingStyle.Render(models.WidgetTypingText)
	}
	left := titleStyle.Render(models.WidgetTitle) + "  " + status
	right := closeHintStyle.Render("esc ✕")
	header := headerStyle.Width(inner).Render(spread(left, right, inner))

	send := sendEnabled.Render(sendLabel)
	if busy {
		send = sendDisabled.Render(sendLabel)
	}
	inputLine := inputStyle.Width(inner).Render(spread(w.input.View(), send, inner))

	var statusLine string
	switch {
	case w.status != "" && w.statusErr:
		statusLine = statusErrorStyle.Render(w.status)
	case w.status != "":
		statusLine = statusLineStyle.Render(w.status)
	default:
		statusLine = statusLineStyle.Render("enter send • ctrl+y copy • pgup/pgdn scroll")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		w.viewport.View(),
		inputLine,
		lipgloss.NewStyle().MaxWidth(inner).Render(statusLine),
	)
	return panelStyle.Width(w.width - 2).Render(body)
}

// spread places left and right at the edges of a line of the given width
func spread(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// describeError turns a request failure into a short status line
func describeError(err error) string {
	switch {
	case apierrors.IsAuthError(err):
		return "Authentication failed: check the API key"
	case apierrors.IsRateLimitError(err):
		return "Rate limited by the provider, try again later"
	case apierrors.IsTimeoutError(err):
		return "The request timed out"
	case apierrors.IsNetworkError(err):
		return "Network error: check your connection"
	default:
		return "The request failed"
	}
}
