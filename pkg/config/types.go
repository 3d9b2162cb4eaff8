package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent plexbot configuration stored as config.toml
// in the .plexbot/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version    int              `toml:"version"`
	Perplexity PerplexityConfig `toml:"perplexity"`
	Chat       ChatConfig       `toml:"chat"`
	Web        WebConfig        `toml:"web"`
	Tap        TapConfig        `toml:"tap"`
}

// PerplexityConfig holds the completion client settings.
type PerplexityConfig struct {
	APIKey   string `toml:"api_key,omitempty"`
	Endpoint string `toml:"endpoint,omitempty"`
	Model    string `toml:"model,omitempty"`

	// ResponseFormat is sent as response_format.type; "none" omits the field.
	ResponseFormat string `toml:"response_format,omitempty"`

	// Timeout is a Go duration string. Empty means no timeout.
	Timeout string `toml:"timeout,omitempty"`

	Stream bool `toml:"stream,omitempty"`
}

// ChatConfig holds settings shared by the browser and terminal chat views.
type ChatConfig struct {
	Models      []string `toml:"models,omitempty"`
	ModelSelect bool     `toml:"model_select,omitempty"`
	Markdown    bool     `toml:"markdown,omitempty"`
}

// WebConfig holds the browser chat server settings.
type WebConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// TapConfig holds the optional transcript tap settings. The tap is off
// unless a SQLite path or Kafka brokers are set.
type TapConfig struct {
	SQLitePath   string   `toml:"sqlite_path,omitempty"`
	KafkaBrokers []string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string   `toml:"kafka_topic,omitempty"`
	Workers      uint     `toml:"workers,omitempty"`
}

// ResponseFormatNone disables the response_format field.
const ResponseFormatNone = "none"

// TimeoutDuration parses Timeout. An empty value means no timeout.
func (p PerplexityConfig) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(p.Timeout) == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid perplexity.timeout %q: %w", p.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid perplexity.timeout %q: must not be negative", p.Timeout)
	}
	return d, nil
}

// Format returns the response_format type to send, or "" to omit it.
func (p PerplexityConfig) Format() string {
	if strings.EqualFold(p.ResponseFormat, ResponseFormatNone) {
		return ""
	}
	return p.ResponseFormat
}

// Enabled reports whether any tap sink is configured.
func (t TapConfig) Enabled() bool {
	return t.SQLitePath != "" || len(t.KafkaBrokers) > 0
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get    func(c *Config) string
	set    func(c *Config, v string) error
	secret bool
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"perplexity.api_key": {
		get:    func(c *Config) string { return c.Perplexity.APIKey },
		set:    func(c *Config, v string) error { c.Perplexity.APIKey = v; return nil },
		secret: true,
	},
	"perplexity.endpoint": {
		get: func(c *Config) string { return c.Perplexity.Endpoint },
		set: func(c *Config, v string) error { c.Perplexity.Endpoint = v; return nil },
	},
	"perplexity.model": {
		get: func(c *Config) string { return c.Perplexity.Model },
		set: func(c *Config, v string) error { c.Perplexity.Model = v; return nil },
	},
	"perplexity.response_format": {
		get: func(c *Config) string { return c.Perplexity.ResponseFormat },
		set: func(c *Config, v string) error { c.Perplexity.ResponseFormat = v; return nil },
	},
	"perplexity.timeout": {
		get: func(c *Config) string { return c.Perplexity.Timeout },
		set: func(c *Config, v string) error {
			p := PerplexityConfig{Timeout: v}
			if _, err := p.TimeoutDuration(); err != nil {
				return err
			}
			c.Perplexity.Timeout = v
			return nil
		},
	},
	"perplexity.stream": boolKey(func(c *Config) *bool { return &c.Perplexity.Stream }, "perplexity.stream"),
	"chat.models": {
		get: func(c *Config) string { return strings.Join(c.Chat.Models, ",") },
		set: func(c *Config, v string) error { c.Chat.Models = SplitList(v); return nil },
	},
	"chat.model_select": boolKey(func(c *Config) *bool { return &c.Chat.ModelSelect }, "chat.model_select"),
	"chat.markdown":     boolKey(func(c *Config) *bool { return &c.Chat.Markdown }, "chat.markdown"),
	"web.listen": {
		get: func(c *Config) string { return c.Web.Listen },
		set: func(c *Config, v string) error { c.Web.Listen = v; return nil },
	},
	"tap.sqlite_path": {
		get: func(c *Config) string { return c.Tap.SQLitePath },
		set: func(c *Config, v string) error { c.Tap.SQLitePath = v; return nil },
	},
	"tap.kafka_brokers": {
		get: func(c *Config) string { return strings.Join(c.Tap.KafkaBrokers, ",") },
		set: func(c *Config, v string) error { c.Tap.KafkaBrokers = SplitList(v); return nil },
	},
	"tap.kafka_topic": {
		get: func(c *Config) string { return c.Tap.KafkaTopic },
		set: func(c *Config, v string) error { c.Tap.KafkaTopic = v; return nil },
	},
	"tap.workers": {
		get: func(c *Config) string {
			if c.Tap.Workers == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Tap.Workers), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for tap.workers: %w", err)
			}
			c.Tap.Workers = uint(n)
			return nil
		},
	},
}

func boolKey(field func(c *Config) *bool, name string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

// SplitList splits comma or whitespace separated values, dropping empties.
// It returns nil when nothing remains.
func SplitList(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		}) {
			out = append(out, part)
		}
	}
	return out
}
