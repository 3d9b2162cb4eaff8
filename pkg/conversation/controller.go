// Package conversation implements the per-view chat controller: it keeps the
// linear turn history, guards against overlapping completion calls and folds
// each settled call into exactly one assistant turn.
package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/plexbot/pkg/llm"
	"github.com/papercomputeco/plexbot/pkg/perplexity"
	"github.com/papercomputeco/plexbot/pkg/reply"
)

// Completer issues one completion call.
type Completer interface {
	Complete(ctx context.Context, req perplexity.Request) (*perplexity.CompletionResponse, error)
}

// State is a snapshot of a conversation.
type State struct {
	History       []llm.Turn `json:"history"`
	PendingInput  string     `json:"pending_input"`
	Busy          bool       `json:"busy"`
	SelectedModel string     `json:"selected_model"`
}

// Controller owns the state of one chat view. It is safe for concurrent use;
// at most one completion call is in flight at any time.
type Controller struct {
	id        string
	completer Completer
	logger    *zap.Logger
	observers []Observer
	onDelta   func(string)
	now       func() time.Time

	modelSelect bool

	mu            sync.Mutex
	history       []llm.Turn
	pendingInput  string
	busy          bool
	selectedModel string
}

// New creates an idle Controller with an empty history.
func New(completer Completer, opts ...Option) *Controller {
	c := &Controller{
		completer: completer,
		logger:    zap.NewNop(),
		now:       time.Now,
		history:   []llm.Turn{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	return c
}

// ID returns the identifier given with WithID, or a generated one.
func (c *Controller) ID() string {
	return c.id
}

// Submit appends a user turn for text and awaits the assistant reply.
//
// Blank text and submissions while a call is in flight are ignored and
// report false. A failed call appends the fixed error turn; the cause is
// only logged.
func (c *Controller) Submit(ctx context.Context, text string) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	req, ok := c.begin(text)
	if !ok {
		c.logger.Debug("submit ignored while awaiting reply", zap.String("conversation_id", c.id))
		return false, nil
	}

	ex := c.await(ctx, req)
	c.notify(ctx, ex)

	return true, nil
}

// SubmitPending submits the current pending input.
func (c *Controller) SubmitPending(ctx context.Context) (bool, error) {
	c.mu.Lock()
	text := c.pendingInput
	c.mu.Unlock()

	return c.Submit(ctx, text)
}

// begin moves the controller from idle to awaiting and builds the request
// from the history including the new user turn.
func (c *Controller) begin(text string) (perplexity.Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return perplexity.Request{}, false
	}

	c.busy = true
	c.pendingInput = ""
	c.history = append(c.history, llm.NewUserTurn(text, c.now()))

	req := perplexity.Request{
		Messages: llm.Messages(c.history),
		OnDelta:  c.onDelta,
	}
	if c.modelSelect {
		req.Model = c.selectedModel
	}

	return req, true
}

// await runs the completion call outside the lock. The deferred settle
// appends exactly one assistant turn and clears busy, including when the
// completer panics.
func (c *Controller) await(ctx context.Context, req perplexity.Request) (ex Exchange) {
	ex = Exchange{
		ConversationID: c.id,
		Model:          req.Model,
		Messages:       req.Messages,
		StartedAt:      c.now(),
	}
	ex.Turn = llm.NewErrorTurn(ex.StartedAt)

	defer func() {
		c.mu.Lock()
		c.history = append(c.history, ex.Turn)
		ex.History = cloneHistory(c.history)
		c.busy = false
		c.mu.Unlock()
	}()

	resp, err := c.completer.Complete(ctx, req)
	ex.Duration = c.now().Sub(ex.StartedAt)

	if err != nil {
		c.logger.Debug("completion failed",
			zap.String("conversation_id", c.id),
			zap.Int("message_count", len(req.Messages)),
			zap.Error(err),
		)
		ex.Err = err
		ex.Turn = llm.NewErrorTurn(c.now())
		return ex
	}

	ex.Response = resp
	ex.Turn = llm.NewReplyTurn(reply.Format(resp), c.now())

	c.logger.Debug("turn settled",
		zap.String("conversation_id", c.id),
		zap.Int("citations", len(ex.Turn.Reply.Citations)),
		zap.Int("search_results", len(ex.Turn.Reply.SearchResults)),
		zap.Duration("duration", ex.Duration),
	)

	return ex
}

func (c *Controller) notify(ctx context.Context, ex Exchange) {
	for _, o := range c.observers {
		o.TurnSettled(ctx, ex)
	}
}

// SetPendingInput stores the text currently typed but not yet submitted.
func (c *Controller) SetPendingInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingInput = text
}

// SelectModel records the model chosen in the selector. It only changes the
// request model when the controller was created with WithModelSelection(true).
func (c *Controller) SelectModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedModel = model
}

// ModelSelection reports whether the selected model is sent with requests.
func (c *Controller) ModelSelection() bool {
	return c.modelSelect
}

// Busy reports whether a completion call is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// History returns a copy of the turn history.
func (c *Controller) History() []llm.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneHistory(c.history)
}

// State returns a deep copy of the conversation state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		History:       cloneHistory(c.history),
		PendingInput:  c.pendingInput,
		Busy:          c.busy,
		SelectedModel: c.selectedModel,
	}
}

func cloneHistory(history []llm.Turn) []llm.Turn {
	out := make([]llm.Turn, len(history))
	for i, t := range history {
		out[i] = t.Clone()
	}
	return out
}
