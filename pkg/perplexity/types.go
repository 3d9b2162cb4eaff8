package perplexity

import "github.com/papercomputeco/plexbot/pkg/llm"

// ResponseFormat selects the shape of the answer content, e.g. {"type": "text"}.
type ResponseFormat struct {
	Type string `json:"type"`
}

// CompletionRequest is the JSON body posted to the chat completions endpoint.
type CompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []llm.Message   `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
}

// CompletionResponse is the decoded body of a chat completions response.
// Streamed responses are folded into the same shape.
type CompletionResponse struct {
	ID            string             `json:"id,omitempty"`
	Model         string             `json:"model,omitempty"`
	Created       int64              `json:"created,omitempty"`
	Choices       []Choice           `json:"choices"`
	Citations     []string           `json:"citations,omitempty"`
	SearchResults []llm.SearchResult `json:"search_results,omitempty"`
	Usage         *Usage             `json:"usage,omitempty"`
}

// Choice is one completion alternative. Delta is only set on stream chunks.
type Choice struct {
	Index        int            `json:"index"`
	Message      *ChoiceMessage `json:"message,omitempty"`
	Delta        *ChoiceMessage `json:"delta,omitempty"`
	FinishReason string         `json:"finish_reason,omitempty"`
}

type ChoiceMessage struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Content returns choices[0].message.content, or "" when absent.
func (r *CompletionResponse) Content() string {
	if r == nil || len(r.Choices) == 0 || r.Choices[0].Message == nil {
		return ""
	}
	return r.Choices[0].Message.Content
}

// Request is one completion call issued by a conversation.
type Request struct {
	// Model overrides the configured model when non-empty.
	Model string

	Messages []llm.Message

	// OnDelta, when set and streaming is enabled, receives each content
	// fragment as it arrives.
	OnDelta func(string)
}
