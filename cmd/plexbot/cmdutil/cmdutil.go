// Package cmdutil holds setup shared by the plexbot commands.
package cmdutil

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/plexbot/pkg/config"
	"github.com/papercomputeco/plexbot/pkg/conversation"
	"github.com/papercomputeco/plexbot/pkg/dotdir"
	"github.com/papercomputeco/plexbot/pkg/perplexity"
	"github.com/papercomputeco/plexbot/pkg/tap"
)

// LoadConfig resolves the layered configuration for cmd and binds the given
// registry flags on top of it. A bare tap.sqlite_path file name is placed in
// the .plexbot directory.
func LoadConfig(cmd *cobra.Command, flagKeys []string) (*config.Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)

	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg.Tap.SQLitePath, err = dotdir.NewManager().Resolve(configDir, cfg.Tap.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("resolving tap.sqlite_path: %w", err)
	}
	return cfg, nil
}

// NewCompleter builds the Perplexity client from configuration.
func NewCompleter(cfg *config.Config, logger *zap.Logger) (*perplexity.Client, error) {
	timeout, err := cfg.Perplexity.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	return perplexity.New(perplexity.Config{
		Endpoint:       cfg.Perplexity.Endpoint,
		APIKey:         cfg.Perplexity.APIKey,
		Model:          cfg.Perplexity.Model,
		ResponseFormat: cfg.Perplexity.Format(),
		Timeout:        timeout,
		Stream:         cfg.Perplexity.Stream,
	}, logger), nil
}

// OpenTap opens the transcript tap. The returned observer is nil when the
// tap is disabled, and close is always safe to call.
func OpenTap(cfg *config.Config, logger *zap.Logger) (conversation.Observer, func() error, error) {
	pool, err := OpenTapPool(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if pool == nil {
		return nil, func() error { return nil }, nil
	}
	return pool, pool.Close, nil
}

// OpenTapPool opens the transcript tap pool, or returns nil when the tap is
// disabled.
func OpenTapPool(cfg *config.Config, logger *zap.Logger) (*tap.Pool, error) {
	pool, err := tap.Open(cfg.Tap, logger)
	if err != nil {
		return nil, fmt.Errorf("opening transcript tap: %w", err)
	}
	if pool == nil {
		return nil, nil
	}

	logger.Info("transcript tap enabled",
		zap.String("sqlite_path", cfg.Tap.SQLitePath),
		zap.Strings("kafka_brokers", cfg.Tap.KafkaBrokers),
		zap.String("kafka_topic", cfg.Tap.KafkaTopic),
	)
	return pool, nil
}

// SelectedModel returns the model preselected in a new chat view: the
// configured model when it is offered, otherwise the first offered model.
func SelectedModel(cfg *config.Config) string {
	for _, m := range cfg.Chat.Models {
		if m == cfg.Perplexity.Model {
			return m
		}
	}
	if len(cfg.Chat.Models) > 0 {
		return cfg.Chat.Models[0]
	}
	return cfg.Perplexity.Model
}
