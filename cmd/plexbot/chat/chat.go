// Package chatcmder provides the chat command for chatting with Perplexity
// from the terminal.
package chatcmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/papercomputeco/plexbot/cmd/plexbot/cmdutil"
	"github.com/papercomputeco/plexbot/pkg/config"
	"github.com/papercomputeco/plexbot/pkg/conversation"
	"github.com/papercomputeco/plexbot/pkg/dotdir"
	"github.com/papercomputeco/plexbot/pkg/logger"
	"github.com/papercomputeco/plexbot/pkg/reply"
	"github.com/papercomputeco/plexbot/pkg/welcome"
)

type chatCommander struct {
	model       string
	endpoint    string
	stream      bool
	modelSelect bool
	markdown    bool
	tapSQLite   string
	plain       bool

	debug     bool
	configDir string
	cfg       *config.Config
	logger    *zap.Logger

	in  io.Reader
	out io.Writer
}

var chatFlags = []string{
	config.FlagModel,
	config.FlagEndpoint,
	config.FlagStream,
	config.FlagModelSelect,
	config.FlagMarkdown,
	config.FlagTapSQLite,
}

const chatLongDesc string = `Chat with Perplexity in the terminal.

On a terminal a full screen view is started: Enter submits, Tab cycles the
model selector and Ctrl+C quits. With --plain, or when input is not a
terminal, a line based prompt is used instead: /model <name> selects a
model and /exit or Ctrl+D quits.

Examples:
  plexbot chat
  plexbot chat --model sonar-pro --model-select
  echo "What is the capital of France?" | plexbot chat`

const chatShortDesc string = "Chat with Perplexity in the terminal"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutil.LoadConfig(cmd, chatFlags)
			if err != nil {
				return err
			}
			cmder.cfg = cfg
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagEndpoint, &cmder.endpoint)
	config.AddBoolFlag(cmd, config.Flags, config.FlagStream, &cmder.stream)
	config.AddBoolFlag(cmd, config.Flags, config.FlagModelSelect, &cmder.modelSelect)
	config.AddBoolFlag(cmd, config.Flags, config.FlagMarkdown, &cmder.markdown)
	config.AddStringFlag(cmd, config.Flags, config.FlagTapSQLite, &cmder.tapSQLite)
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Use the line based prompt even on a terminal")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	tui := !c.plain && isTerminal(c.in) && isTerminal(c.out)

	closeLog, err := c.setupLogger(tui)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	completer, err := cmdutil.NewCompleter(c.cfg, c.logger)
	if err != nil {
		return err
	}

	observer, closeTap, err := cmdutil.OpenTap(c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeTap(); err != nil {
			c.logger.Warn("closing transcript tap", zap.Error(err))
		}
	}()

	tmpl := welcome.Default()
	textOpts := reply.TextOptions{Markdown: c.cfg.Chat.Markdown}

	if tui {
		return c.runTUI(ctx, completer, observer, tmpl, textOpts)
	}

	r := &repl{
		in:     c.in,
		out:    c.out,
		models: c.cfg.Chat.Models,
		tmpl:   tmpl,
		opts:   textOpts,
		stream: c.cfg.Perplexity.Stream,

		animate: isTerminal(c.out),
	}
	r.ctl = conversation.New(completer, c.controllerOptions(observer, r.onDelta)...)

	return r.run(ctx)
}

func (c *chatCommander) runTUI(
	ctx context.Context,
	completer conversation.Completer,
	observer conversation.Observer,
	tmpl welcome.Template,
	opts reply.TextOptions,
) error {
	m := newModel(tmpl, c.cfg.Chat.Models, opts)
	ctl := conversation.New(completer, c.controllerOptions(observer, nil)...)
	m.attach(ctx, ctl)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("running chat view: %w", err)
	}
	return nil
}

func (c *chatCommander) controllerOptions(observer conversation.Observer, onDelta func(string)) []conversation.Option {
	opts := []conversation.Option{
		conversation.WithID(newConversationID()),
		conversation.WithLogger(c.logger),
		conversation.WithModel(cmdutil.SelectedModel(c.cfg)),
		conversation.WithModelSelection(c.cfg.Chat.ModelSelect),
	}
	if observer != nil {
		opts = append(opts, conversation.WithObserver(observer))
	}
	if onDelta != nil && c.cfg.Perplexity.Stream {
		opts = append(opts, conversation.WithDeltaHandler(onDelta))
	}
	return opts
}

// setupLogger logs to stderr for the line prompt. The full screen view logs
// to a file in the .plexbot directory, or nowhere if none exists.
func (c *chatCommander) setupLogger(tui bool) (func() error, error) {
	noop := func() error { return nil }

	if !tui {
		c.logger = logger.NewLoggerWithWriters(c.debug, os.Stderr)
		return func() error { _ = c.logger.Sync(); return nil }, nil
	}

	dir, err := dotdir.NewManager().Target(c.configDir)
	if err != nil || dir == "" {
		c.logger = zap.NewNop()
		return noop, nil //nolint:nilerr // logging is best effort in the full screen view
	}

	l, closeFn, err := logger.NewFileLogger(c.debug, filepath.Join(dir, dotdir.ChatLogFile))
	if err != nil {
		return nil, err
	}
	c.logger = l
	return closeFn, nil
}

func newConversationID() string {
	return uuid.NewString()
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
