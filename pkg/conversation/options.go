package conversation

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Controller created with New.
type Option func(*Controller)

// WithID sets the conversation identifier reported to observers.
func WithID(id string) Option {
	return func(c *Controller) {
		c.id = id
	}
}

// WithLogger sets the logger. Completion failures are logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithModel preselects a model in the selector.
func WithModel(model string) Option {
	return func(c *Controller) {
		c.selectedModel = model
	}
}

// WithModelSelection controls whether the selected model is sent with each
// request. When disabled the client's configured model is always used.
func WithModelSelection(enabled bool) Option {
	return func(c *Controller) {
		c.modelSelect = enabled
	}
}

// WithObserver registers an observer notified after every settled call.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithDeltaHandler receives streamed content fragments as they arrive.
func WithDeltaHandler(fn func(string)) Option {
	return func(c *Controller) {
		c.onDelta = fn
	}
}

// WithClock overrides the time source used to stamp turns.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}
