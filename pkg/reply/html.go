package reply

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/papercomputeco/plexbot/pkg/llm"
)

var replyTemplate = template.Must(template.New("reply").Parse(
	`<div class="reply">` +
		`<div class="answer" style="white-space: pre-line">{{.AnswerText}}</div>` +
		`{{if .Citations}}<div class="citations"><h4>Citations:</h4><ul>` +
		`{{range .Citations}}<li><a href="{{.}}" target="_blank" rel="noopener noreferrer">{{.}}</a></li>{{end}}` +
		`</ul></div>{{end}}` +
		`{{if .SearchResults}}<div class="search-results"><h4>Search Results:</h4><ul>` +
		`{{range .SearchResults}}<li><a href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.Label}}</a>` +
		`{{if .Date}} <span class="date">({{.Date}})</span>{{end}}</li>{{end}}` +
		`</ul></div>{{end}}` +
		`</div>`,
))

// RenderHTML renders a reply as an HTML fragment. All values are escaped.
func RenderHTML(r llm.StructuredReply) (template.HTML, error) {
	var buf bytes.Buffer
	if err := replyTemplate.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("rendering reply: %w", err)
	}

	// #nosec G203 -- produced by html/template with contextual escaping
	return template.HTML(buf.String()), nil
}

// RenderTurnHTML renders any history turn. Plain text turns are escaped
// and keep their line breaks.
func RenderTurnHTML(t llm.Turn) (template.HTML, error) {
	if t.Reply != nil {
		return RenderHTML(*t.Reply)
	}

	// #nosec G203 -- escaped above
	return template.HTML(`<div class="text" style="white-space: pre-line">` +
		template.HTMLEscapeString(t.Text) + `</div>`), nil
}
