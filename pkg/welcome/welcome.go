// Package welcome holds the initial content shown when a chat view opens.
package welcome

import "github.com/papercomputeco/plexbot/pkg/utils"

// Template is the static content a chat view starts with.
type Template struct {
	WelcomeMessage   string   `json:"welcome_message"`
	DefaultResponses []string `json:"default_responses"`
	ErrorMessage     string   `json:"error_message"`

	// MaxMessageLength caps the input field, in characters.
	MaxMessageLength int `json:"max_message_length"`
}

// Default returns the stock template.
func Default() Template {
	return Template{
		WelcomeMessage: "Welcome to the Perplexity Chatbot! How can I assist you today?",
		DefaultResponses: []string{
			"I'm here to help you with any questions you may have.",
			"Feel free to ask me anything!",
			"Let's get started!",
		},
		ErrorMessage:     "Sorry, I couldn't process your request. Please try again.",
		MaxMessageLength: 500,
	}
}

// Clamp truncates text to MaxMessageLength characters. A non-positive
// limit leaves text unchanged.
func (t Template) Clamp(text string) string {
	return utils.ClampRunes(text, t.MaxMessageLength)
}
