package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline, so the same logical flag
// (e.g. --model on both "plexbot chat" and "plexbot serve") cannot drift.
type Flag struct {
	// Name is the long flag name (e.g. "model").
	Name string

	// Shorthand is the one-letter short flag (e.g. "m"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "perplexity.model").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddBoolFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagModel       = "model"
	FlagEndpoint    = "endpoint"
	FlagStream      = "stream"
	FlagModelSelect = "model-select"
	FlagMarkdown    = "markdown"
	FlagListen      = "listen"
	FlagTapSQLite   = "tap-sqlite"
	FlagTapWorkers  = "tap-workers"
)

// Flags is the registry shared by every plexbot command.
var Flags = FlagSet{
	FlagModel:       {Name: "model", Shorthand: "m", ViperKey: "perplexity.model", Description: "Default Perplexity model"},
	FlagEndpoint:    {Name: "endpoint", ViperKey: "perplexity.endpoint", Description: "Chat completions endpoint URL"},
	FlagStream:      {Name: "stream", ViperKey: "perplexity.stream", Description: "Request streamed completions"},
	FlagModelSelect: {Name: "model-select", ViperKey: "chat.model_select", Description: "Send the model chosen in the selector"},
	FlagMarkdown:    {Name: "markdown", ViperKey: "chat.markdown", Description: "Render answers as markdown in the terminal"},
	FlagListen:      {Name: "listen", Shorthand: "l", ViperKey: "web.listen", Description: "Address for the browser chat server to listen on"},
	FlagTapSQLite:   {Name: "tap-sqlite", ViperKey: "tap.sqlite_path", Description: "Record transcripts to this SQLite database"},
	FlagTapWorkers:  {Name: "tap-workers", ViperKey: "tap.workers", Description: "Number of transcript tap workers"},
}

// AddStringFlag registers a string flag on cmd from the registry entry key.
// Its default is the config default for the entry's viper key.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	if def, defaults, ok := lookupFlag(fs, key); ok {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaults.GetString(def.ViperKey), def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the registry entry key.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	if def, defaults, ok := lookupFlag(fs, key); ok {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaults.GetBool(def.ViperKey), def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the registry entry key.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, key string, target *uint) {
	if def, defaults, ok := lookupFlag(fs, key); ok {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaults.GetUint(def.ViperKey), def.Description)
	}
}

// BindRegisteredFlags connects flags already registered on cmd to their viper
// keys so a flag set on the command line wins over env, file and default.
// Keys missing from fs or from cmd are skipped.
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, keys []string) {
	for _, key := range keys {
		def, ok := fs[key]
		if !ok {
			continue
		}
		if f := cmd.Flags().Lookup(def.Name); f != nil {
			_ = v.BindPFlag(def.ViperKey, f)
		}
	}
}

// lookupFlag returns the registry entry for key together with a viper
// holding the config defaults.
func lookupFlag(fs FlagSet, key string) (Flag, *viper.Viper, bool) {
	def, ok := fs[key]
	if !ok {
		return Flag{}, nil, false
	}

	defaults := viper.New()
	setViperDefaults(defaults)
	return def, defaults, true
}
