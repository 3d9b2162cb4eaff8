package perplexity

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/papercomputeco/plexbot/pkg/llm"
	"github.com/papercomputeco/plexbot/pkg/sse"
)

// readStream folds a completion event stream into one CompletionResponse.
// Content deltas are concatenated; the last non-empty citations and search
// results win.
func readStream(r io.Reader, onDelta func(string)) (*CompletionResponse, error) {
	reader := sse.NewReader(r)

	out := &CompletionResponse{}
	var content strings.Builder
	var finishReason string

	for {
		ev, err := reader.Next()
		if err != nil {
			return nil, fmt.Errorf("reading stream: %w", err)
		}
		if ev == nil || ev.IsDone() {
			break
		}
		if strings.TrimSpace(ev.Data) == "" {
			continue
		}

		var chunk CompletionResponse
		if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
			return nil, fmt.Errorf("decoding stream chunk: %w", err)
		}

		mergeChunk(out, &chunk)

		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		if choice.FinishReason != "" {
			finishReason = choice.FinishReason
		}

		switch {
		case choice.Delta != nil:
			if choice.Delta.Content == "" {
				continue
			}
			content.WriteString(choice.Delta.Content)
			if onDelta != nil {
				onDelta(choice.Delta.Content)
			}
		case choice.Message != nil:
			// Cumulative message content replaces what was gathered so far.
			prev := content.String()
			content.Reset()
			content.WriteString(choice.Message.Content)
			if onDelta != nil && strings.HasPrefix(choice.Message.Content, prev) {
				if tail := choice.Message.Content[len(prev):]; tail != "" {
					onDelta(tail)
				}
			}
		}
	}

	if content.Len() > 0 || finishReason != "" {
		out.Choices = []Choice{{
			Index:        0,
			Message:      &ChoiceMessage{Role: string(llm.RoleAssistant), Content: content.String()},
			FinishReason: finishReason,
		}}
	}

	return out, nil
}

func mergeChunk(dst, chunk *CompletionResponse) {
	if chunk.ID != "" {
		dst.ID = chunk.ID
	}
	if chunk.Model != "" {
		dst.Model = chunk.Model
	}
	if chunk.Created != 0 {
		dst.Created = chunk.Created
	}
	if len(chunk.Citations) > 0 {
		dst.Citations = chunk.Citations
	}
	if len(chunk.SearchResults) > 0 {
		dst.SearchResults = chunk.SearchResults
	}
	if chunk.Usage != nil {
		dst.Usage = chunk.Usage
	}
}
