package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/papercomputeco/plexbot/pkg/perplexity"
)

// CompletionServer is a fake chat completions endpoint. It answers with
// Response, or with Status when Status is not 2xx, and records every request.
type CompletionServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []perplexity.CompletionRequest

	Status   int
	Response perplexity.CompletionResponse
}

// NewCompletionServer starts a server that answers every call with content.
func NewCompletionServer(content string) *CompletionServer {
	s := &CompletionServer{
		Status: http.StatusOK,
		Response: perplexity.CompletionResponse{
			ID: "test-completion",
			Choices: []perplexity.Choice{{
				Message: &perplexity.ChoiceMessage{Role: "assistant", Content: content},
			}},
		},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *CompletionServer) handle(w http.ResponseWriter, r *http.Request) {
	var req perplexity.CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	status := s.Status
	resp := s.Response
	s.mu.Unlock()

	if status < 200 || status > 299 {
		http.Error(w, "upstream failure", status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// SetStatus changes the status returned by later calls.
func (s *CompletionServer) SetStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = status
}

// Requests returns the requests received so far.
func (s *CompletionServer) Requests() []perplexity.CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]perplexity.CompletionRequest, len(s.requests))
	copy(out, s.requests)
	return out
}
