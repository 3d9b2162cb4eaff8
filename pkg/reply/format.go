// Package reply turns completion responses into structured replies and
// renders them for the browser and the terminal.
package reply

import (
	"github.com/papercomputeco/plexbot/pkg/llm"
	"github.com/papercomputeco/plexbot/pkg/perplexity"
)

// Format derives a StructuredReply from a completion response.
// Missing content becomes "No response"; missing lists become empty.
func Format(resp *perplexity.CompletionResponse) llm.StructuredReply {
	out := llm.StructuredReply{
		AnswerText:    resp.Content(),
		Citations:     []string{},
		SearchResults: []llm.SearchResult{},
	}
	if out.AnswerText == "" {
		out.AnswerText = llm.NoResponseText
	}
	if resp == nil {
		return out
	}

	out.Citations = append(out.Citations, resp.Citations...)
	out.SearchResults = append(out.SearchResults, resp.SearchResults...)

	return out
}
