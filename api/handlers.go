package api

import (
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/plexbot/pkg/conversation"
	"github.com/papercomputeco/plexbot/pkg/llm"
	"github.com/papercomputeco/plexbot/pkg/reply"
	"github.com/papercomputeco/plexbot/pkg/welcome"
)

// SessionResponse is the state of one chat view.
type SessionResponse struct {
	ID               string     `json:"id"`
	Busy             bool       `json:"busy"`
	PendingInput     string     `json:"pending_input"`
	SelectedModel    string     `json:"selected_model"`
	ModelSelect      bool       `json:"model_select"`
	Models           []string   `json:"models"`
	Welcome          string     `json:"welcome"`
	DefaultResponses []string   `json:"default_responses"`
	ErrorMessage     string     `json:"error_message"`
	MaxMessageLength int        `json:"max_message_length"`
	Turns            []TurnView `json:"turns"`

	// Accepted is only set by the submit route.
	Accepted *bool `json:"accepted,omitempty"`
}

// TurnView is a history turn with its server-rendered HTML.
type TurnView struct {
	Role  llm.Role             `json:"role"`
	Text  string               `json:"text,omitempty"`
	Reply *llm.StructuredReply `json:"reply,omitempty"`
	Error bool                 `json:"error,omitempty"`
	HTML  string               `json:"html"`
}

// InputRequest stores pending input.
type InputRequest struct {
	Text string `json:"text"`
}

// ModelRequest changes the selected model.
type ModelRequest struct {
	Model string `json:"model"`
}

// SubmitRequest submits one turn. Model, when set, is selected first.
type SubmitRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleCreateSession mounts a new chat view.
func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	opts := []conversation.Option{
		conversation.WithLogger(s.logger),
		conversation.WithModel(s.config.DefaultModel),
		conversation.WithModelSelection(s.config.ModelSelect),
	}
	if s.config.Observer != nil {
		opts = append(opts, conversation.WithObserver(s.config.Observer))
	}

	ctl := s.sessions.Create(s.completer, opts...)

	s.logger.Debug("session created", zap.String("session_id", ctl.ID()))

	resp, err := s.sessionResponse(ctl)
	if err != nil {
		return s.renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// handleGetSession returns the state of a chat view.
func (s *Server) handleGetSession(c *fiber.Ctx) error {
	ctl, ok := s.sessions.Get(c.Params("id"))
	if !ok {
		return sessionNotFound(c)
	}

	resp, err := s.sessionResponse(ctl)
	if err != nil {
		return s.renderError(c, err)
	}
	return c.JSON(resp)
}

// handleSetInput stores the text currently typed in the view.
func (s *Server) handleSetInput(c *fiber.Ctx) error {
	ctl, ok := s.sessions.Get(c.Params("id"))
	if !ok {
		return sessionNotFound(c)
	}

	var req InputRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	ctl.SetPendingInput(s.config.Welcome.Clamp(req.Text))
	return c.SendStatus(fiber.StatusNoContent)
}

// handleSelectModel changes the model selector.
func (s *Server) handleSelectModel(c *fiber.Ctx) error {
	ctl, ok := s.sessions.Get(c.Params("id"))
	if !ok {
		return sessionNotFound(c)
	}

	var req ModelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	if !s.knownModel(req.Model) {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "unknown model: " + req.Model})
	}

	ctl.SelectModel(req.Model)

	resp, err := s.sessionResponse(ctl)
	if err != nil {
		return s.renderError(c, err)
	}
	return c.JSON(resp)
}

// handleSubmit submits a turn and waits until it settles.
func (s *Server) handleSubmit(c *fiber.Ctx) error {
	ctl, ok := s.sessions.Get(c.Params("id"))
	if !ok {
		return sessionNotFound(c)
	}

	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	if req.Model != "" {
		if !s.knownModel(req.Model) {
			return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "unknown model: " + req.Model})
		}
		ctl.SelectModel(req.Model)
	}

	blank := strings.TrimSpace(req.Text) == ""

	accepted, err := ctl.Submit(c.Context(), req.Text)
	if err != nil {
		s.logger.Debug("submit aborted",
			zap.String("session_id", ctl.ID()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusServiceUnavailable).JSON(llm.ErrorResponse{Error: "request cancelled"})
	}

	resp, err := s.sessionResponse(ctl)
	if err != nil {
		return s.renderError(c, err)
	}
	resp.Accepted = &accepted

	if !accepted && !blank {
		return c.Status(fiber.StatusConflict).JSON(resp)
	}
	return c.JSON(resp)
}

// handleDeleteSession unmounts a chat view and discards its state.
func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	if !s.sessions.Delete(c.Params("id")) {
		return sessionNotFound(c)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) knownModel(model string) bool {
	return slices.Contains(s.config.Models, model)
}

func (s *Server) sessionResponse(ctl *conversation.Controller) (*SessionResponse, error) {
	state := ctl.State()

	turns, err := turnViews(state.History)
	if err != nil {
		return nil, err
	}

	return &SessionResponse{
		ID:               ctl.ID(),
		Busy:             state.Busy,
		PendingInput:     state.PendingInput,
		SelectedModel:    state.SelectedModel,
		ModelSelect:      ctl.ModelSelection(),
		Models:           s.models(),
		Welcome:          s.welcome().WelcomeMessage,
		DefaultResponses: s.defaultResponses(),
		ErrorMessage:     s.welcome().ErrorMessage,
		MaxMessageLength: s.welcome().MaxMessageLength,
		Turns:            turns,
	}, nil
}

func (s *Server) models() []string {
	if s.config.Models == nil {
		return []string{}
	}
	return s.config.Models
}

func (s *Server) defaultResponses() []string {
	if s.config.Welcome.DefaultResponses == nil {
		return []string{}
	}
	return s.config.Welcome.DefaultResponses
}

func (s *Server) welcome() welcome.Template {
	return s.config.Welcome
}

func (s *Server) renderError(c *fiber.Ctx, err error) error {
	s.logger.Error("rendering session failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to render session"})
}

func turnViews(history []llm.Turn) ([]TurnView, error) {
	views := make([]TurnView, 0, len(history))
	for _, t := range history {
		html, err := reply.RenderTurnHTML(t)
		if err != nil {
			return nil, err
		}
		views = append(views, TurnView{
			Role:  t.Role,
			Text:  t.Text,
			Reply: t.Reply,
			Error: t.IsError(),
			HTML:  string(html),
		})
	}
	return views, nil
}

func sessionNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "session not found"})
}
