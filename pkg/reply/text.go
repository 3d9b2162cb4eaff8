package reply

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/plexbot/pkg/cliui"
	"github.com/papercomputeco/plexbot/pkg/llm"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	linkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true)
	dateStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// TextOptions controls terminal rendering.
type TextOptions struct {
	// Markdown renders the answer through glamour instead of as plain text.
	Markdown bool

	// Width wraps the answer when greater than zero.
	Width int
}

// RenderText renders a reply for the terminal. Line breaks in the answer
// are preserved.
func RenderText(r llm.StructuredReply, opts TextOptions) string {
	var b strings.Builder

	answer := r.AnswerText
	if opts.Markdown {
		if rendered, err := cliui.RenderMarkdown(answer, opts.Width); err == nil {
			answer = strings.Trim(rendered, "\n")
		}
	} else if opts.Width > 0 {
		answer = lipgloss.NewStyle().Width(opts.Width).Render(answer)
	}
	b.WriteString(answer)

	if len(r.Citations) > 0 {
		b.WriteString("\n\n")
		b.WriteString(headingStyle.Render("Citations:"))
		for i, c := range r.Citations {
			fmt.Fprintf(&b, "\n  %d. %s", i+1, linkStyle.Render(c))
		}
	}

	if len(r.SearchResults) > 0 {
		b.WriteString("\n\n")
		b.WriteString(headingStyle.Render("Search Results:"))
		for _, s := range r.SearchResults {
			fmt.Fprintf(&b, "\n  • %s", linkStyle.Render(s.Label()))
			if s.Title != "" {
				fmt.Fprintf(&b, " %s", dateStyle.Render(s.URL))
			}
			if s.Date != "" {
				fmt.Fprintf(&b, " %s", dateStyle.Render("("+s.Date+")"))
			}
		}
	}

	return b.String()
}

// RenderTurnText renders any history turn for the terminal.
func RenderTurnText(t llm.Turn, opts TextOptions) string {
	if t.Reply != nil {
		return RenderText(*t.Reply, opts)
	}
	return t.Text
}
