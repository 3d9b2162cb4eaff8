package chatcmder

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/plexbot/pkg/cliui"
	"github.com/papercomputeco/plexbot/pkg/conversation"
	"github.com/papercomputeco/plexbot/pkg/llm"
	"github.com/papercomputeco/plexbot/pkg/reply"
	"github.com/papercomputeco/plexbot/pkg/welcome"
)

const (
	headerHeight = 2
	footerHeight = 4
)

// submitResultMsg is sent when a submitted turn has settled.
type submitResultMsg struct {
	accepted bool
	err      error
}

type tuiStyles struct {
	title     lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	errorText lipgloss.Style
	dim       lipgloss.Style
	model     lipgloss.Style
}

func newTUIStyles(r *lipgloss.Renderer) tuiStyles {
	return tuiStyles{
		title:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		user:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		assistant: r.NewStyle().Bold(true).Foreground(lipgloss.Color("213")),
		errorText: r.NewStyle().Foreground(lipgloss.Color("196")),
		dim:       r.NewStyle().Foreground(lipgloss.Color("242")),
		model:     r.NewStyle().Foreground(lipgloss.Color("86")),
	}
}

// model is the full screen chat view. The transcript is always rebuilt
// from the controller state.
type model struct {
	ctx context.Context
	ctl *conversation.Controller

	tmpl   welcome.Template
	models []string
	opts   reply.TextOptions
	styles tuiStyles

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool
	err    error
}

func newModel(tmpl welcome.Template, models []string, opts reply.TextOptions) *model {
	renderer := lipgloss.NewRenderer(os.Stdout)
	renderer.SetColorProfile(termenv.EnvColorProfile())

	styles := newTUIStyles(renderer)

	ti := textinput.New()
	ti.Placeholder = "Type your message..."
	ti.Prompt = "> "
	ti.PromptStyle = styles.user
	ti.CharLimit = tmpl.MaxMessageLength
	ti.Width = 70
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.assistant

	return &model{
		ctx:      context.Background(),
		tmpl:     tmpl,
		models:   models,
		opts:     opts,
		styles:   styles,
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
	}
}

// attach binds the view to a controller and the context submissions run in.
func (m *model) attach(ctx context.Context, ctl *conversation.Controller) {
	if ctx != nil {
		m.ctx = ctx
	}
	m.ctl = ctl
	m.refresh()
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case submitResultMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.ctl != nil && m.ctl.Busy() {
			m.refresh()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "tab":
		m.cycleModel()
		return m, nil

	case "enter":
		return m, m.submit()

	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctl.SetPendingInput(m.input.Value())
	return m, cmd
}

// submit hands the input to the controller. Blank input and input while a
// reply is pending are left in place.
func (m *model) submit() tea.Cmd {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" || m.ctl.Busy() {
		return nil
	}

	m.input.Reset()
	m.err = nil

	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		accepted, err := ctl.Submit(ctx, text)
		return submitResultMsg{accepted: accepted, err: err}
	}
}

func (m *model) cycleModel() {
	if len(m.models) == 0 {
		return
	}

	current := m.ctl.State().SelectedModel
	next := m.models[0]
	for i, name := range m.models {
		if name == current {
			next = m.models[(i+1)%len(m.models)]
			break
		}
	}
	m.ctl.SelectModel(next)
}

func (m *model) resize(width, height int) {
	m.width = width
	m.height = height

	m.viewport.Width = width
	m.viewport.Height = max(height-headerHeight-footerHeight, 1)
	m.input.Width = max(width-4, 10)
	m.opts.Width = max(width-2, 20)
	m.ready = true

	m.refresh()
}

func (m *model) refresh() {
	if m.ctl == nil {
		return
	}
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

func (m *model) transcript() string {
	var b strings.Builder

	b.WriteString(m.styles.assistant.Render("bot> "))
	b.WriteString(m.tmpl.WelcomeMessage)
	b.WriteString("\n\n")

	for _, t := range m.ctl.History() {
		b.WriteString(m.renderTurn(t))
		b.WriteString("\n\n")
	}

	return b.String()
}

func (m *model) renderTurn(t llm.Turn) string {
	if t.Role == llm.RoleUser {
		return m.styles.user.Render("you> ") + t.Text
	}

	text := reply.RenderTurnText(t, m.opts)
	if t.IsError() {
		text = m.styles.errorText.Render(text)
	}
	return m.styles.assistant.Render("bot> ") + text
}

func (m *model) View() string {
	if m.ctl == nil {
		return ""
	}

	state := m.ctl.State()

	modelLine := m.styles.model.Render(state.SelectedModel)
	if !m.ctl.ModelSelection() {
		modelLine += m.styles.dim.Render(" (selection disabled)")
	}
	header := m.styles.title.Render("Perplexity Chatbot") + "  " + modelLine

	status := ""
	switch {
	case state.Busy:
		status = m.spinner.View() + " " + typingMessage
	case m.err != nil:
		status = cliui.FailMark + " " + m.styles.errorText.Render(m.err.Error())
	}

	help := m.styles.dim.Render("enter send • tab model • pgup/pgdn scroll • ctrl+c quit")

	return strings.Join([]string{
		header,
		"",
		m.viewport.View(),
		status,
		m.input.View(),
		"",
		help,
	}, "\n")
}
