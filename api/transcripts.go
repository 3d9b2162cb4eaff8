package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/plexbot/pkg/llm"
	"github.com/papercomputeco/plexbot/pkg/merkle"
)

// TranscriptResponse is the recorded conversation ending at a node.
type TranscriptResponse struct {
	// Turns in chronological order (oldest first, up to and including the requested node)
	Turns []TranscriptTurn `json:"turns"`
	// HeadHash is the hash of the node that was requested
	HeadHash string `json:"head_hash"`
	// Depth is the number of turns in the transcript
	Depth int `json:"depth"`
}

// TranscriptTurn is one stored node.
type TranscriptTurn struct {
	Hash       string             `json:"hash"`
	ParentHash *string            `json:"parent_hash,omitempty"`
	Type       string             `json:"type"`
	Role       llm.Role           `json:"role"`
	Content    string             `json:"content"`
	Citations  []string           `json:"citations,omitempty"`
	Results    []llm.SearchResult `json:"search_results,omitempty"`
	Model      string             `json:"model,omitempty"`
	Provider   string             `json:"provider,omitempty"`
}

// handleListTranscripts returns every recorded transcript (one per leaf node).
func (s *Server) handleListTranscripts(c *fiber.Ctx) error {
	ctx := c.Context()

	leaves, err := s.config.Transcripts.Leaves(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to get leaves"})
	}

	transcripts := make([]TranscriptResponse, 0, len(leaves))
	for _, leaf := range leaves {
		t, err := s.buildTranscript(ctx, leaf.Hash)
		if err != nil {
			s.logger.Warn("failed to build transcript for leaf",
				zap.String("hash", leaf.Hash),
				zap.Error(err),
			)
			continue
		}
		transcripts = append(transcripts, *t)
	}

	return c.JSON(map[string]any{
		"count":       len(transcripts),
		"transcripts": transcripts,
	})
}

// handleGetTranscript returns the transcript leading up to a given node.
func (s *Server) handleGetTranscript(c *fiber.Ctx) error {
	hash := c.Params("hash")
	if hash == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "hash parameter required"})
	}

	t, err := s.buildTranscript(c.Context(), hash)
	if err != nil {
		var notFound merkle.ErrNotFound
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "node not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to load transcript"})
	}

	return c.JSON(t)
}

func (s *Server) buildTranscript(ctx context.Context, hash string) (*TranscriptResponse, error) {
	ancestry, err := s.config.Transcripts.Ancestry(ctx, hash)
	if err != nil {
		return nil, err
	}

	turns := make([]TranscriptTurn, len(ancestry))
	for i, node := range ancestry {
		turns[len(ancestry)-1-i] = TranscriptTurn{
			Hash:       node.Hash,
			ParentHash: node.ParentHash,
			Type:       node.Bucket.Type,
			Role:       node.Bucket.Role,
			Content:    node.Bucket.Content,
			Citations:  node.Bucket.Citations,
			Results:    node.Bucket.SearchResults,
			Model:      node.Model,
			Provider:   node.Bucket.Provider,
		}
	}

	return &TranscriptResponse{
		Turns:    turns,
		HeadHash: hash,
		Depth:    len(turns),
	}, nil
}
