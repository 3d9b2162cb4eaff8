package chatcmder

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/plexbot/pkg/perplexity"
)

// fakeCompleter answers each call with the next queued answer; an empty
// answer fails the call.
type fakeCompleter struct {
	mu      sync.Mutex
	answers []string
	calls   []perplexity.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req perplexity.Request) (*perplexity.CompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, req)
	if len(f.answers) == 0 {
		return nil, errors.New("no answer queued")
	}

	answer := f.answers[0]
	f.answers = f.answers[1:]
	if answer == "" {
		return nil, errors.New("upstream failure")
	}

	if req.OnDelta != nil {
		req.OnDelta(answer)
	}

	return &perplexity.CompletionResponse{
		Choices:   []perplexity.Choice{{Message: &perplexity.ChoiceMessage{Role: "assistant", Content: answer}}},
		Citations: []string{"https://example.com/" + answer},
	}, nil
}

func (f *fakeCompleter) Calls() []perplexity.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]perplexity.Request(nil), f.calls...)
}
