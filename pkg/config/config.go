package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/plexbot/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// CurrentV is the only config.toml version understood so far.
	CurrentV = 0
)

// keyOrder is the display order of configKeys, grouped by TOML section.
var keyOrder = []string{
	"perplexity.api_key",
	"perplexity.endpoint",
	"perplexity.model",
	"perplexity.response_format",
	"perplexity.timeout",
	"perplexity.stream",
	"chat.models",
	"chat.model_select",
	"chat.markdown",
	"web.listen",
	"tap.sqlite_path",
	"tap.kafka_brokers",
	"tap.kafka_topic",
	"tap.workers",
}

// Configer reads and writes config.toml in a resolved .plexbot/ directory.
type Configer struct {
	path string
}

// NewConfiger resolves the .plexbot/ directory (see dotdir.Manager.Target)
// and points at its config.toml, which need not exist yet.
func NewConfiger(override string) (*Configer, error) {
	path, err := dotdir.NewManager().Path(override, configFile)
	if err != nil {
		return nil, err
	}
	return &Configer{path: path}, nil
}

// ValidConfigKeys returns every supported key in section order.
func ValidConfigKeys() []string {
	return slices.Clone(keyOrder)
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

// IsSecretKey reports whether the key holds a credential that must be masked
// when displayed.
func IsSecretKey(key string) bool {
	return configKeys[key].secret
}

// GetTarget returns the config.toml path.
func (c *Configer) GetTarget() string {
	return c.path
}

// LoadConfig reads config.toml. A missing file yields NewDefaultConfig and
// unset fields fall back to their defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	data, err := os.ReadFile(c.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return NewDefaultConfig(), nil
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// SaveConfig writes cfg to config.toml, readable by the owner only since it
// may hold the api key.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(c.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// SetConfigValue validates value for key and persists it.
func (c *Configer) SetConfigValue(key, value string) error {
	info, err := lookupKey(key)
	if err != nil {
		return err
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}
	if err := info.set(cfg, value); err != nil {
		return err
	}
	return c.SaveConfig(cfg)
}

// GetConfigValue returns the string form of key as currently configured.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, err := lookupKey(key)
	if err != nil {
		return "", err
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}
	return info.get(cfg), nil
}

// ParseConfigTOML decodes config.toml bytes and checks the version.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}
	if err := checkVersion(cfg.Version); err != nil {
		return nil, err
	}
	return cfg, nil
}

func checkVersion(v int) error {
	if v != CurrentV {
		return fmt.Errorf("unsupported config version %d (expected %d)", v, CurrentV)
	}
	return nil
}

func lookupKey(key string) (configKeyInfo, error) {
	info, ok := configKeys[key]
	if !ok {
		return configKeyInfo{}, fmt.Errorf("unknown config key: %q", key)
	}
	return info, nil
}

// applyDefaults fills fields that must never be empty. Booleans, the api key,
// the timeout and the tap sinks are left as configured.
func applyDefaults(cfg *Config) {
	d := NewDefaultConfig()

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&cfg.Perplexity.Endpoint, d.Perplexity.Endpoint)
	fill(&cfg.Perplexity.Model, d.Perplexity.Model)
	fill(&cfg.Perplexity.ResponseFormat, d.Perplexity.ResponseFormat)
	fill(&cfg.Web.Listen, d.Web.Listen)
	fill(&cfg.Tap.KafkaTopic, d.Tap.KafkaTopic)

	if len(cfg.Chat.Models) == 0 {
		cfg.Chat.Models = d.Chat.Models
	}
	if cfg.Tap.Workers == 0 {
		cfg.Tap.Workers = d.Tap.Workers
	}
}
