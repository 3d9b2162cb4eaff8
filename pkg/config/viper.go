package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/plexbot/pkg/dotdir"
)

const envPrefix = "PLEXBOT"

// apiKeyEnvs are consulted in order for perplexity.api_key. The VITE_ name is
// kept so .env files written for the browser build keep working.
var apiKeyEnvs = []string{
	envPrefix + "_PERPLEXITY_API_KEY",
	"PERPLEXITY_API_KEY",
	"VITE_REACT_PERPLEXITY_API_KEY",
}

// InitViper creates and returns a configured *viper.Viper.
// It loads ./.env, sets defaults from NewDefaultConfig(), reads config.toml
// (if found via dotdir resolution), and binds environment variables with
// the PLEXBOT_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (PLEXBOT_WEB_LISTEN, PERPLEXITY_API_KEY, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindArgs := append([]string{"perplexity.api_key"}, apiKeyEnvs...)
	if err := v.BindEnv(bindArgs...); err != nil {
		return nil, fmt.Errorf("binding api key env: %w", err)
	}

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("perplexity.api_key", d.Perplexity.APIKey)
	v.SetDefault("perplexity.endpoint", d.Perplexity.Endpoint)
	v.SetDefault("perplexity.model", d.Perplexity.Model)
	v.SetDefault("perplexity.response_format", d.Perplexity.ResponseFormat)
	v.SetDefault("perplexity.timeout", d.Perplexity.Timeout)
	v.SetDefault("perplexity.stream", d.Perplexity.Stream)

	v.SetDefault("chat.models", d.Chat.Models)
	v.SetDefault("chat.model_select", d.Chat.ModelSelect)
	v.SetDefault("chat.markdown", d.Chat.Markdown)

	v.SetDefault("web.listen", d.Web.Listen)

	v.SetDefault("tap.sqlite_path", d.Tap.SQLitePath)
	v.SetDefault("tap.kafka_brokers", d.Tap.KafkaBrokers)
	v.SetDefault("tap.kafka_topic", d.Tap.KafkaTopic)
	v.SetDefault("tap.workers", d.Tap.Workers)
}

// FromViper builds a Config from the resolved viper values.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Version: v.GetInt("version"),
		Perplexity: PerplexityConfig{
			APIKey:         v.GetString("perplexity.api_key"),
			Endpoint:       v.GetString("perplexity.endpoint"),
			Model:          v.GetString("perplexity.model"),
			ResponseFormat: v.GetString("perplexity.response_format"),
			Timeout:        v.GetString("perplexity.timeout"),
			Stream:         v.GetBool("perplexity.stream"),
		},
		Chat: ChatConfig{
			Models:      SplitList(v.GetStringSlice("chat.models")...),
			ModelSelect: v.GetBool("chat.model_select"),
			Markdown:    v.GetBool("chat.markdown"),
		},
		Web: WebConfig{
			Listen: v.GetString("web.listen"),
		},
		Tap: TapConfig{
			SQLitePath:   v.GetString("tap.sqlite_path"),
			KafkaBrokers: SplitList(v.GetStringSlice("tap.kafka_brokers")...),
			KafkaTopic:   v.GetString("tap.kafka_topic"),
			Workers:      v.GetUint("tap.workers"),
		},
	}

	if err := checkVersion(cfg.Version); err != nil {
		return nil, err
	}
	if _, err := cfg.Perplexity.TimeoutDuration(); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}
