package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/papercomputeco/plexbot/pkg/cliui"
	"github.com/papercomputeco/plexbot/pkg/conversation"
	"github.com/papercomputeco/plexbot/pkg/llm"
	"github.com/papercomputeco/plexbot/pkg/reply"
	"github.com/papercomputeco/plexbot/pkg/welcome"
)

const typingMessage = "Bot is typing..."

// repl is the line based chat used when stdin is not a terminal.
type repl struct {
	ctl    *conversation.Controller
	in     io.Reader
	out    io.Writer
	models []string
	tmpl   welcome.Template
	opts   reply.TextOptions
	stream bool

	// animate draws the typing indicator; set only when out is a terminal.
	animate bool

	// streamed is set once a delta was printed for the current turn.
	streamed bool
	typing   *cliui.Spinner
}

func (r *repl) run(ctx context.Context) error {
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "  %s %s\n", cliui.AssistantPromptStyle.Render("bot>"), r.tmpl.WelcomeMessage)
	r.printModel()
	fmt.Fprintf(r.out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /model <name> to switch, /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(r.in)

	for {
		fmt.Fprint(r.out, cliui.UserPromptStyle.Render("you> "))
		if !scanner.Scan() {
			break
		}

		input := scanner.Text()
		trimmed := strings.TrimSpace(input)

		switch {
		case trimmed == "":
			continue
		case trimmed == "/exit":
			fmt.Fprintln(r.out)
			return nil
		case trimmed == "/model" || strings.HasPrefix(trimmed, "/model "):
			r.selectModel(strings.TrimSpace(strings.TrimPrefix(trimmed, "/model")))
			continue
		}

		if err := r.submit(ctx, r.tmpl.Clamp(input)); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(r.out)
	return nil
}

func (r *repl) submit(ctx context.Context, text string) error {
	r.streamed = false

	// The indicator runs until the reply, or its first delta, replaces it.
	if r.animate {
		r.typing = cliui.StartSpinner(r.out, typingMessage)
	}
	accepted, err := r.ctl.Submit(ctx, text)
	r.stopTyping()
	if err != nil || !accepted {
		return err
	}
	r.printLastTurn()
	return nil
}

func (r *repl) stopTyping() {
	if r.typing != nil {
		r.typing.Stop()
		r.typing = nil
	}
}

// onDelta prints streamed answer fragments as they arrive.
func (r *repl) onDelta(delta string) {
	if !r.streamed {
		r.stopTyping()
		fmt.Fprint(r.out, cliui.AssistantPromptStyle.Render("bot> "))
		r.streamed = true
	}
	fmt.Fprint(r.out, delta)
}

func (r *repl) printLastTurn() {
	history := r.ctl.History()
	t := history[len(history)-1]

	if r.streamed && t.Reply != nil {
		// The answer is already on screen; only the sources follow.
		sources := reply.RenderText(llm.StructuredReply{
			Citations:     t.Reply.Citations,
			SearchResults: t.Reply.SearchResults,
		}, r.opts)
		fmt.Fprintln(r.out)
		if s := strings.TrimLeft(sources, "\n"); s != "" {
			fmt.Fprintf(r.out, "\n%s\n", s)
		}
		fmt.Fprintln(r.out)
		return
	}

	text := reply.RenderTurnText(t, r.opts)
	if t.IsError() {
		text = cliui.FailMark + " " + text
	}
	fmt.Fprintf(r.out, "%s %s\n\n", cliui.AssistantPromptStyle.Render("bot>"), text)
}

func (r *repl) selectModel(name string) {
	if name == "" {
		fmt.Fprintf(r.out, "  %s %s\n\n", cliui.KeyStyle.Render("Models:"), strings.Join(r.models, ", "))
		r.printModel()
		return
	}

	if !slices.Contains(r.models, name) {
		fmt.Fprintf(r.out, "  %s unknown model %q (choose from %s)\n\n", cliui.FailMark, name, strings.Join(r.models, ", "))
		return
	}

	r.ctl.SelectModel(name)
	r.printModel()
}

func (r *repl) printModel() {
	model := r.ctl.State().SelectedModel
	note := ""
	if !r.ctl.ModelSelection() {
		note = " " + cliui.DimStyle.Render("(selection disabled, chat.model_select=false)")
	}
	fmt.Fprintf(r.out, "  %s %s%s\n", cliui.KeyStyle.Render("Model:"), cliui.NameStyle.Render(model), note)
}
