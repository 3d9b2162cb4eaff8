package llm

import "time"

// ErrorText is the fixed assistant turn appended when a completion fails.
const ErrorText = "Sorry, there was an error."

// Turn is one entry in a conversation history.
//
// A user turn carries Text. A settled assistant turn carries either Reply
// (success) or the fixed ErrorText with a nil Reply (failure).
type Turn struct {
	Role      Role             `json:"role"`
	Text      string           `json:"text,omitempty"`
	Reply     *StructuredReply `json:"reply,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewUserTurn builds a plain text user turn.
func NewUserTurn(text string, at time.Time) Turn {
	return Turn{Role: RoleUser, Text: text, CreatedAt: at}
}

// NewReplyTurn builds a successful assistant turn.
func NewReplyTurn(reply StructuredReply, at time.Time) Turn {
	return Turn{Role: RoleAssistant, Reply: &reply, CreatedAt: at}
}

// NewErrorTurn builds the fixed assistant error turn.
func NewErrorTurn(at time.Time) Turn {
	return Turn{Role: RoleAssistant, Text: ErrorText, CreatedAt: at}
}

// IsError reports whether the turn is the fixed assistant error turn.
func (t Turn) IsError() bool {
	return t.Role == RoleAssistant && t.Reply == nil && t.Text == ErrorText
}

// Message flattens the turn to its wire shape. Structured assistant turns
// are sent back with empty content.
func (t Turn) Message() Message {
	if t.Reply != nil {
		return NewTextMessage(t.Role, "")
	}
	return NewTextMessage(t.Role, t.Text)
}

// Clone returns a copy of the turn that shares no memory with t.
func (t Turn) Clone() Turn {
	t.Reply = t.Reply.Clone()
	return t
}

// Messages maps a history to the messages sent with the next request.
func Messages(history []Turn) []Message {
	msgs := make([]Message, 0, len(history))
	for _, t := range history {
		msgs = append(msgs, t.Message())
	}
	return msgs
}
