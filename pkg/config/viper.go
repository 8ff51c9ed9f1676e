package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/sparrow/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the SPARROW_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (SPARROW_MODEL_PRIMARY, SPARROW_PERSONA_SIGNATURE, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
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

	v.SetEnvPrefix("SPARROW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materialises the effective configuration held by v.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Version: v.GetInt("version"),
		Model: ModelConfig{
			Backend:        v.GetString("model.backend"),
			Command:        v.GetString("model.command"),
			Upstream:       v.GetString("model.upstream"),
			Primary:        v.GetString("model.primary"),
			Fallback:       v.GetString("model.fallback"),
			TimeoutSeconds: v.GetUint("model.timeout_seconds"),
		},
		Persona: PersonaConfig{
			Signature: v.GetString("persona.signature"),
		},
		Tools: ToolsConfig{
			ListLimit: v.GetUint("tools.list_limit"),
			ReadLimit: v.GetUint("tools.read_limit"),
		},
		Storage: StorageConfig{
			SQLitePath: v.GetString("storage.sqlite_path"),
		},
		Logging: LoggingConfig{
			File: v.GetString("logging.file"),
			JSON: v.GetBool("logging.json"),
		},
	}
	applyDefaults(cfg)
	return cfg
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Model
	v.SetDefault("model.backend", d.Model.Backend)
	v.SetDefault("model.command", d.Model.Command)
	v.SetDefault("model.upstream", d.Model.Upstream)
	v.SetDefault("model.primary", d.Model.Primary)
	v.SetDefault("model.fallback", d.Model.Fallback)
	v.SetDefault("model.timeout_seconds", d.Model.TimeoutSeconds)

	// Persona
	v.SetDefault("persona.signature", d.Persona.Signature)

	// Tools
	v.SetDefault("tools.list_limit", d.Tools.ListLimit)
	v.SetDefault("tools.read_limit", d.Tools.ReadLimit)

	// Storage
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)

	// Logging
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.json", d.Logging.JSON)
}
