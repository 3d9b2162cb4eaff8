package conversation

import (
	"context"
	"time"

	"github.com/papercomputeco/plexbot/pkg/llm"
	"github.com/papercomputeco/plexbot/pkg/perplexity"
)

// Exchange describes one settled completion call.
type Exchange struct {
	ConversationID string

	// Model is the model sent with the request; empty means the client default.
	Model string

	// Messages is the request history, ending with the user turn.
	Messages []llm.Message

	// Turn is the assistant turn appended to the history.
	Turn llm.Turn

	// History is the full history after Turn was appended.
	History []llm.Turn

	// Response is nil when the call failed.
	Response *perplexity.CompletionResponse
	Err      error

	StartedAt time.Time
	Duration  time.Duration
}

// Failed reports whether the call ended in the fixed error turn.
func (e Exchange) Failed() bool {
	return e.Response == nil
}

// Observer is notified after every settled call, outside the controller lock.
type Observer interface {
	TurnSettled(ctx context.Context, ex Exchange)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, ex Exchange)

func (f ObserverFunc) TurnSettled(ctx context.Context, ex Exchange) {
	f(ctx, ex)
}
