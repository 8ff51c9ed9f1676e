package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --model
// on both "sparrow chat" and "sparrow history").
type Flag struct {
	// Name is the long flag name (e.g. "model").
	Name string

	// Shorthand is the one-letter short flag (e.g. "m"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "model.primary").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagBackend   = "backend"
	FlagCommand   = "ollama-command"
	FlagUpstream  = "upstream"
	FlagModel     = "model"
	FlagFallback  = "fallback"
	FlagTimeout   = "timeout"
	FlagSignature = "signature"
	FlagListLimit = "list-limit"
	FlagReadLimit = "read-limit"
	FlagSQLite    = "sqlite"
	FlagLogFile   = "log-file"
)

// Flags is the registry shared by every sparrow command.
var Flags = FlagSet{
	FlagBackend: {
		Name:        "backend",
		Shorthand:   "b",
		ViperKey:    "model.backend",
		Description: "Model backend: process (ollama CLI) or http (Ollama API)",
	},
	FlagCommand: {
		Name:        "ollama-command",
		ViperKey:    "model.command",
		Description: "Runtime binary used by the process backend",
	},
	FlagUpstream: {
		Name:        "upstream",
		Shorthand:   "u",
		ViperKey:    "model.upstream",
		Description: "Ollama API URL used by the http backend",
	},
	FlagModel: {
		Name:        "model",
		Shorthand:   "m",
		ViperKey:    "model.primary",
		Description: "Model name",
	},
	FlagFallback: {
		Name:        "fallback",
		ViperKey:    "model.fallback",
		Description: "Model used when the primary model is unavailable",
	},
	FlagTimeout: {
		Name:        "timeout",
		Shorthand:   "t",
		ViperKey:    "model.timeout_seconds",
		Description: "Seconds to wait for a model response",
	},
	FlagSignature: {
		Name:        "signature",
		ViperKey:    "persona.signature",
		Description: "Persona marker every response must start with",
	},
	FlagListLimit: {
		Name:        "list-limit",
		ViperKey:    "tools.list_limit",
		Description: "Maximum entries shown by /ls",
	},
	FlagReadLimit: {
		Name:        "read-limit",
		ViperKey:    "tools.read_limit",
		Description: "Maximum bytes shown by /cat",
	},
	FlagSQLite: {
		Name:        "sqlite",
		Shorthand:   "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to the SQLite audit database (default: in-memory)",
	},
	FlagLogFile: {
		Name:        "log-file",
		ViperKey:    "logging.file",
		Description: "Also write JSON logs to this file",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
