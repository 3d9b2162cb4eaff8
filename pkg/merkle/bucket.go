package merkle

import (
	"github.com/papercomputeco/plexbot/pkg/llm"
)

// Bucket types.
const (
	TypeMessage = "message"
	TypeError   = "error"
)

// Bucket is the hashable content of one conversation turn.
type Bucket struct {
	// Type is TypeMessage, or TypeError for the fixed error turn.
	Type string `json:"type"`

	Role llm.Role `json:"role"`

	// Content is the user text, the answer text, or the error text.
	Content string `json:"content"`

	Citations     []string           `json:"citations,omitempty"`
	SearchResults []llm.SearchResult `json:"search_results,omitempty"`

	Provider string `json:"provider"`
}

// BucketFromTurn converts a history turn into its canonical bucket.
func BucketFromTurn(t llm.Turn, provider string) Bucket {
	b := Bucket{
		Type:     TypeMessage,
		Role:     t.Role,
		Content:  t.Text,
		Provider: provider,
	}

	switch {
	case t.Reply != nil:
		b.Content = t.Reply.AnswerText
		if len(t.Reply.Citations) > 0 {
			b.Citations = append([]string(nil), t.Reply.Citations...)
		}
		if len(t.Reply.SearchResults) > 0 {
			b.SearchResults = append([]llm.SearchResult(nil), t.Reply.SearchResults...)
		}
	case t.IsError():
		b.Type = TypeError
	}

	return b
}
