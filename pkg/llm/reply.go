package llm

// NoResponseText is the answer text used when a completion carries no content.
const NoResponseText = "No response"

// SearchResult is one search hit attached to a reply. Title and Date are optional.
type SearchResult struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Date  string `json:"date,omitempty"`
}

// Label returns the title when present, otherwise the URL.
func (s SearchResult) Label() string {
	if s.Title != "" {
		return s.Title
	}
	return s.URL
}

// StructuredReply is the normalized view of one completion response.
// Citations and SearchResults are never nil.
type StructuredReply struct {
	AnswerText    string         `json:"answer_text"`
	Citations     []string       `json:"citations"`
	SearchResults []SearchResult `json:"search_results"`
}

// Clone returns a deep copy of the reply.
func (r *StructuredReply) Clone() *StructuredReply {
	if r == nil {
		return nil
	}

	out := &StructuredReply{
		AnswerText:    r.AnswerText,
		Citations:     make([]string, len(r.Citations)),
		SearchResults: make([]SearchResult, len(r.SearchResults)),
	}
	copy(out.Citations, r.Citations)
	copy(out.SearchResults, r.SearchResults)

	return out
}
