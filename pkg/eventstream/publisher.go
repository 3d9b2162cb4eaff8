package eventstream

import (
	"context"
	"errors"
)

var (
	// ErrNilTurnEvent is returned when a publisher is handed a nil event.
	ErrNilTurnEvent = errors.New("nil turn event")

	// ErrMissingConversationID is returned for events that cannot be keyed.
	ErrMissingConversationID = errors.New("turn event has no conversation id")
)

// Publisher sends settled-turn events to a stream backend.
//
// Implementations reject what Validate rejects before touching the backend.
type Publisher interface {
	PublishTurn(ctx context.Context, event *TurnRecordedEvent) error
	Close() error
}

// Validate checks the fields every backend relies on.
func Validate(event *TurnRecordedEvent) error {
	if event == nil {
		return ErrNilTurnEvent
	}
	if event.ConversationID == "" {
		return ErrMissingConversationID
	}
	return nil
}
