package conversation_test

import (
	"context"
	"sync"

	"github.com/papercomputeco/plexbot/pkg/perplexity"
)

// fakeCompleter records requests and answers with a canned response.
// When gate is set, Complete blocks until it is closed.
type fakeCompleter struct {
	mu    sync.Mutex
	calls []perplexity.Request

	gate    chan struct{}
	started chan struct{}

	resp      *perplexity.CompletionResponse
	err       error
	panicWith any
}

func newFakeCompleter(content string) *fakeCompleter {
	return &fakeCompleter{
		started: make(chan struct{}, 16),
		resp: &perplexity.CompletionResponse{
			Choices: []perplexity.Choice{{
				Message: &perplexity.ChoiceMessage{Role: "assistant", Content: content},
			}},
		},
	}
}

func (f *fakeCompleter) Complete(_ context.Context, req perplexity.Request) (*perplexity.CompletionResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	gate := f.gate
	f.mu.Unlock()

	f.started <- struct{}{}
	if gate != nil {
		<-gate
	}

	if f.panicWith != nil {
		panic(f.panicWith)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeCompleter) Calls() []perplexity.Request {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]perplexity.Request, len(f.calls))
	copy(out, f.calls)
	return out
}
