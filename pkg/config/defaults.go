package config

const (
	defaultEndpoint       = "https://api.perplexity.ai/chat/completions"
	defaultModel          = "sonar"
	defaultResponseFormat = "text"

	defaultWebListen = ":5173"

	defaultKafkaTopic = "plexbot.turns"
	defaultTapWorkers = 2
)

var defaultModels = []string{"sonar", "sonar-pro"}

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Perplexity: PerplexityConfig{
			Endpoint:       defaultEndpoint,
			Model:          defaultModel,
			ResponseFormat: defaultResponseFormat,
		},
		Chat: ChatConfig{
			Models: append([]string(nil), defaultModels...),
		},
		Web: WebConfig{
			Listen: defaultWebListen,
		},
		Tap: TapConfig{
			KafkaTopic: defaultKafkaTopic,
			Workers:    defaultTapWorkers,
		},
	}
}
