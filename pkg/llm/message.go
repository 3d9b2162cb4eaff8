// Package llm holds the provider-facing data model shared by the plexbot
// front ends: chat turns, structured replies and the minimal wire message.
package llm

// Role is the author of a turn or message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is the minimal {role, content} shape sent to the completions API.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewTextMessage creates a message with the given role and text content.
func NewTextMessage(role Role, text string) Message {
	return Message{
		Role:    role,
		Content: text,
	}
}
