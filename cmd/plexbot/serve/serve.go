// Package servecmder provides the serve command that runs the browser chat.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/plexbot/api"
	"github.com/papercomputeco/plexbot/cmd/plexbot/cmdutil"
	"github.com/papercomputeco/plexbot/pkg/config"
	"github.com/papercomputeco/plexbot/pkg/logger"
	"github.com/papercomputeco/plexbot/pkg/welcome"
)

type ServeCommander struct {
	listen      string
	model       string
	endpoint    string
	stream      bool
	modelSelect bool
	tapSQLite   string
	tapWorkers  uint

	debug  bool
	cfg    *config.Config
	logger *zap.Logger
}

var serveFlags = []string{
	config.FlagListen,
	config.FlagModel,
	config.FlagEndpoint,
	config.FlagStream,
	config.FlagModelSelect,
	config.FlagTapSQLite,
	config.FlagTapWorkers,
}

const serveLongDesc string = `Serve the browser chat.

The chat page and its session API are served on --listen. Each open page
is its own conversation; nothing is persisted unless the transcript tap
is configured (tap.sqlite_path or tap.kafka_brokers).

Examples:
  plexbot serve
  plexbot serve --listen :8080 --model sonar-pro
  plexbot serve --tap-sqlite ./transcripts.db`

const serveShortDesc string = "Serve the browser chat"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutil.LoadConfig(cmd, serveFlags)
			if err != nil {
				return err
			}
			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagEndpoint, &cmder.endpoint)
	config.AddBoolFlag(cmd, config.Flags, config.FlagStream, &cmder.stream)
	config.AddBoolFlag(cmd, config.Flags, config.FlagModelSelect, &cmder.modelSelect)
	config.AddStringFlag(cmd, config.Flags, config.FlagTapSQLite, &cmder.tapSQLite)
	config.AddUintFlag(cmd, config.Flags, config.FlagTapWorkers, &cmder.tapWorkers)

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	server, closeAll, err := c.newServer()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeAll(); err != nil {
			c.logger.Warn("shutdown", zap.Error(err))
		}
	}()

	c.logger.Info("starting plexbot",
		zap.String("listen", c.cfg.Web.Listen),
		zap.String("endpoint", c.cfg.Perplexity.Endpoint),
		zap.String("model", c.cfg.Perplexity.Model),
		zap.Bool("model_select", c.cfg.Chat.ModelSelect),
	)

	// Channel to capture errors from goroutines
	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("chat server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}

// newServer wires the completion client, the optional tap and the chat
// server. closeAll drains the tap.
func (c *ServeCommander) newServer() (*api.Server, func() error, error) {
	completer, err := cmdutil.NewCompleter(c.cfg, c.logger)
	if err != nil {
		return nil, nil, err
	}

	pool, err := cmdutil.OpenTapPool(c.cfg, c.logger)
	if err != nil {
		return nil, nil, err
	}

	apiConfig := api.Config{
		ListenAddr:   c.cfg.Web.Listen,
		Models:       c.cfg.Chat.Models,
		DefaultModel: cmdutil.SelectedModel(c.cfg),
		ModelSelect:  c.cfg.Chat.ModelSelect,
		Welcome:      welcome.Default(),

		SessionIdleTimeout: api.DefaultSessionIdleTimeout,
		ShutdownTimeout:    api.DefaultShutdownTimeout,
	}

	closeAll := func() error { return nil }
	if pool != nil {
		apiConfig.Observer = pool
		// The transcript routes read the store the tap writes; the pool
		// closes it once the queue has drained.
		apiConfig.Transcripts = pool.Storer()
		closeAll = pool.Close
	}

	return api.NewServer(apiConfig, completer, c.logger), closeAll, nil
}
