package widget

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	apierrors "github.com/bobee/supportbot/internal/errors"
	"github.com/bobee/supportbot/internal/models"
)

// Exchange is a dispatched submission waiting for its reply
type Exchange struct {
	c        *Controller
	messages []models.Turn
	settled  atomic.Bool
}

// Messages returns the outbound message list: the system turn followed by
// the transcript at dispatch time.
func (e *Exchange) Messages() []models.Turn {
	out := make([]models.Turn, len(e.messages))
	copy(out, e.messages)
	return out
}

// Await issues the completion request and settles the controller. On
// failure the fixed failure turn is appended and returned together with
// the cause. Await may only be called once.
func (e *Exchange) Await(ctx context.Context) (models.Turn, error) {
	if !e.settled.CompareAndSwap(false, true) {
		return models.Turn{}, apierrors.ErrAlreadySettled
	}

	start := time.Now()
	reply, err := e.c.completer.Complete(ctx, e.messages)
	if err != nil {
		e.c.logger.Error("chat completion failed",
			zap.Error(err),
			zap.String("endpoint", apierrors.GetEndpoint(err)),
			zap.Int("status", apierrors.GetHTTPStatus(err)),
			zap.Duration("duration", time.Since(start)),
			zap.Int("messages", len(e.messages)),
		)
		reply = models.NewAssistantTurn(models.FailureMessage)
	} else if reply.Role != models.RoleAssistant {
		reply = models.NewAssistantTurn(reply.Content)
	}

	e.c.settle(reply)
	return reply, err
}
