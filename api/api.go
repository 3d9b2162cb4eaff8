package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/plexbot/pkg/conversation"
	chatweb "github.com/papercomputeco/plexbot/web/chat"
)

// Server serves the chat page and the session API.
type Server struct {
	config    Config
	completer conversation.Completer
	sessions  *Registry
	logger    *zap.Logger
	app       *fiber.App

	stopOnce sync.Once
	stop     chan struct{}
}

// NewServer creates a new API server. Every session shares completer.
func NewServer(config Config, completer conversation.Completer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:    config,
		completer: completer,
		sessions:  NewRegistry(),
		logger:    logger,
		app:       app,
		stop:      make(chan struct{}),
	}

	app.Get("/ping", s.handlePing)

	sessions := app.Group("/api/sessions")
	sessions.Post("/", s.handleCreateSession)
	sessions.Get("/:id", s.handleGetSession)
	sessions.Put("/:id/input", s.handleSetInput)
	sessions.Put("/:id/model", s.handleSelectModel)
	sessions.Post("/:id/messages", s.handleSubmit)
	sessions.Delete("/:id", s.handleDeleteSession)

	if config.Transcripts != nil {
		app.Get("/api/transcripts", s.handleListTranscripts)
		app.Get("/api/transcripts/:hash", s.handleGetTranscript)
	}

	app.Get("/*", adaptor.HTTPHandler(http.FileServer(http.FS(chatweb.FS))))

	if config.SessionIdleTimeout > 0 {
		go s.evictIdle(config.SessionIdleTimeout)
	}

	return s
}

// evictIdle drops abandoned sessions until Shutdown. Views that never sent
// their DELETE (crashed tabs, lost connections) would otherwise stay mounted.
func (s *Server) evictIdle(idle time.Duration) {
	ticker := time.NewTicker(evictInterval(idle))
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			for _, id := range s.sessions.Evict(idle) {
				s.logger.Debug("session evicted", zap.String("session_id", id))
			}
		}
	}
}

func evictInterval(idle time.Duration) time.Duration {
	interval := idle / 4
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting chat server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server, waiting at most
// Config.ShutdownTimeout for open requests.
func (s *Server) Shutdown() error {
	s.stopOnce.Do(func() { close(s.stop) })

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	return s.app.ShutdownWithTimeout(timeout)
}

// Test sends req through the routes without a listener.
func (s *Server) Test(req *http.Request, msTimeout ...int) (*http.Response, error) {
	return s.app.Test(req, msTimeout...)
}

// Sessions exposes the session registry.
func (s *Server) Sessions() *Registry {
	return s.sessions
}
