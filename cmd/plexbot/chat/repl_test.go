package chatcmder

import (
	"bytes"
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/plexbot/pkg/conversation"
	"github.com/papercomputeco/plexbot/pkg/llm"
	"github.com/papercomputeco/plexbot/pkg/welcome"
)

var _ = Describe("repl", func() {
	var (
		completer *fakeCompleter
		out       *bytes.Buffer
	)

	newREPL := func(input string, stream bool, opts ...conversation.Option) *repl {
		r := &repl{
			in:     strings.NewReader(input),
			out:    out,
			models: []string{"sonar", "sonar-pro"},
			tmpl:   welcome.Default(),
			stream: stream,
		}
		if stream {
			opts = append(opts, conversation.WithDeltaHandler(r.onDelta))
		}
		r.ctl = conversation.New(completer, append([]conversation.Option{conversation.WithModel("sonar")}, opts...)...)
		return r
	}

	BeforeEach(func() {
		completer = &fakeCompleter{}
		out = &bytes.Buffer{}
	})

	It("prints the welcome message", func() {
		Expect(newREPL("", false).run(context.Background())).To(Succeed())
		Expect(out.String()).To(ContainSubstring(welcome.Default().WelcomeMessage))
	})

	It("submits each line and prints the reply with citations", func() {
		completer.answers = []string{"Paris", "Madrid"}
		r := newREPL("Capital of France?\nAnd Spain?\n/exit\nignored\n", false)

		Expect(r.run(context.Background())).To(Succeed())

		Expect(completer.Calls()).To(HaveLen(2))
		Expect(out.String()).To(ContainSubstring("Paris"))
		Expect(out.String()).To(ContainSubstring("Citations:"))
		Expect(out.String()).To(ContainSubstring("Madrid"))

		history := r.ctl.History()
		Expect(history).To(HaveLen(4))
		Expect(history[0].Role).To(Equal(llm.RoleUser))
		Expect(history[3].Role).To(Equal(llm.RoleAssistant))
	})

	It("skips blank lines", func() {
		r := newREPL("\n   \n", false)
		Expect(r.run(context.Background())).To(Succeed())
		Expect(completer.Calls()).To(BeEmpty())
		Expect(r.ctl.History()).To(BeEmpty())
	})

	It("prints the fixed error turn on failure", func() {
		completer.answers = []string{""}
		r := newREPL("hello\n", false)

		Expect(r.run(context.Background())).To(Succeed())
		Expect(out.String()).To(ContainSubstring(llm.ErrorText))
		Expect(r.ctl.History()[1].IsError()).To(BeTrue())
	})

	It("clamps input to the maximum message length", func() {
		completer.answers = []string{"ok"}
		r := newREPL(strings.Repeat("a", 600)+"\n", false)

		Expect(r.run(context.Background())).To(Succeed())
		Expect(r.ctl.History()[0].Text).To(HaveLen(500))
	})

	DescribeTable("writes only the reply when output is not a terminal",
		func(stream bool) {
			completer.answers = []string{""}
			r := newREPL("hello\n", stream)

			Expect(r.run(context.Background())).To(Succeed())
			Expect(out.String()).To(ContainSubstring(llm.ErrorText))
			Expect(out.String()).NotTo(ContainSubstring(typingMessage))
			Expect(out.String()).NotTo(ContainSubstring("✓"))
			Expect(out.String()).NotTo(ContainSubstring("\x1b[2K"))
		},
		Entry("buffered", false),
		Entry("streaming", true),
	)

	It("clears the typing indicator before a failed reply on a terminal", func() {
		completer.answers = []string{""}
		r := newREPL("hello\n", false)
		r.animate = true

		Expect(r.run(context.Background())).To(Succeed())
		Expect(out.String()).NotTo(ContainSubstring("✓"))
		typing := strings.LastIndex(out.String(), typingMessage)
		cleared := strings.LastIndex(out.String(), "\r\x1b[2K")
		failed := strings.Index(out.String(), llm.ErrorText)
		Expect(typing).To(BeNumerically(">=", 0))
		Expect(cleared).To(BeNumerically(">", typing))
		Expect(failed).To(BeNumerically(">", cleared))
	})

	Describe("/model", func() {
		It("selects a known model", func() {
			completer.answers = []string{"ok"}
			r := newREPL("/model sonar-pro\nhi\n", false, conversation.WithModelSelection(true))

			Expect(r.run(context.Background())).To(Succeed())
			Expect(completer.Calls()[0].Model).To(Equal("sonar-pro"))
		})

		It("rejects an unknown model", func() {
			r := newREPL("/model gpt-4\n", false)

			Expect(r.run(context.Background())).To(Succeed())
			Expect(out.String()).To(ContainSubstring(`unknown model "gpt-4"`))
			Expect(r.ctl.State().SelectedModel).To(Equal("sonar"))
		})

		It("lists models without an argument", func() {
			r := newREPL("/model\n", false)

			Expect(r.run(context.Background())).To(Succeed())
			Expect(out.String()).To(ContainSubstring("sonar, sonar-pro"))
			Expect(out.String()).To(ContainSubstring("selection disabled"))
		})
	})

	Context("when streaming", func() {
		It("prints deltas once followed by the sources", func() {
			completer.answers = []string{"Paris"}
			r := newREPL("hi\n", true)

			Expect(r.run(context.Background())).To(Succeed())
			Expect(strings.Count(out.String(), "Paris")).To(Equal(2)) // answer + citation URL
			Expect(out.String()).To(ContainSubstring("Citations:"))
		})

		It("shows the typing indicator until the first delta", func() {
			completer.answers = []string{"Paris"}
			r := newREPL("hi\n", true)
			r.animate = true

			Expect(r.run(context.Background())).To(Succeed())
			typing := strings.Index(out.String(), typingMessage)
			answer := strings.Index(out.String(), "Paris")
			Expect(typing).To(BeNumerically(">=", 0))
			Expect(answer).To(BeNumerically(">", typing))
		})
	})
})
