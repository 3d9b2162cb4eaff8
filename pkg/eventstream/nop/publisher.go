// Package nop is the publisher used when no broker is configured for the tap.
package nop

import (
	"context"

	"github.com/papercomputeco/plexbot/pkg/eventstream"
)

// Publisher drops valid events.
type Publisher struct{}

func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishTurn drops the event once it passes eventstream.Validate, so the
// tap reports the same errors with or without a broker.
func (p *Publisher) PublishTurn(_ context.Context, event *eventstream.TurnRecordedEvent) error {
	return eventstream.Validate(event)
}

func (p *Publisher) Close() error { return nil }
