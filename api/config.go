// Package api provides the HTTP server behind the browser chat.
package api

import (
	"time"

	"github.com/papercomputeco/plexbot/pkg/conversation"
	"github.com/papercomputeco/plexbot/pkg/merkle"
	"github.com/papercomputeco/plexbot/pkg/welcome"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":5173")
	ListenAddr string

	// Models are offered in the model selector.
	Models []string

	// DefaultModel is preselected in every new session.
	DefaultModel string

	// ModelSelect sends the selected model with requests when true.
	ModelSelect bool

	Welcome welcome.Template

	// Observer is attached to every session controller. Optional.
	Observer conversation.Observer

	// Transcripts enables the read-only transcript routes. Optional.
	Transcripts merkle.Storer

	// SessionIdleTimeout evicts sessions that have not been requested for
	// this long. Zero keeps sessions until they are deleted.
	SessionIdleTimeout time.Duration

	// ShutdownTimeout bounds how long Shutdown waits for open requests.
	// Defaults to DefaultShutdownTimeout.
	ShutdownTimeout time.Duration
}

const (
	// DefaultShutdownTimeout is used when Config.ShutdownTimeout is unset.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultSessionIdleTimeout is what the serve command passes when no
	// idle timeout is configured.
	DefaultSessionIdleTimeout = 30 * time.Minute
)
