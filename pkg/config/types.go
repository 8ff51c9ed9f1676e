package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent sparrow configuration stored as config.toml
// in the .sparrow/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Model   ModelConfig   `toml:"model"`
	Persona PersonaConfig `toml:"persona"`
	Tools   ToolsConfig   `toml:"tools"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
}

// ModelConfig selects the inference backend and models.
type ModelConfig struct {
	// Backend is "process" (runs the ollama CLI) or "http" (Ollama HTTP API).
	Backend string `toml:"backend,omitempty"`

	// Command is the runtime binary used by the process backend.
	Command string `toml:"command,omitempty"`

	// Upstream is the base URL used by the http backend.
	Upstream string `toml:"upstream,omitempty"`

	Primary        string `toml:"primary,omitempty"`
	Fallback       string `toml:"fallback,omitempty"`
	TimeoutSeconds uint   `toml:"timeout_seconds,omitempty"`
}

// PersonaConfig holds the persona marker.
type PersonaConfig struct {
	Signature string `toml:"signature,omitempty"`
}

// ToolsConfig holds limits for the local tools.
type ToolsConfig struct {
	ListLimit uint `toml:"list_limit,omitempty"`
	ReadLimit uint `toml:"read_limit,omitempty"`
}

// StorageConfig holds audit storage settings. An empty SQLitePath keeps the
// audit trail in memory.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// LoggingConfig holds settings for the optional log file.
type LoggingConfig struct {
	File string `toml:"file,omitempty"`
	JSON bool   `toml:"json,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func getUint(n uint) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(n), 10)
}

func setUint(key string, target *uint) func(c *Config, v string) error {
	return func(_ *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		*target = uint(n)
		return nil
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"model.backend": {
		get: func(c *Config) string { return c.Model.Backend },
		set: func(c *Config, v string) error {
			switch v {
			case BackendProcess, BackendHTTP:
				c.Model.Backend = v
				return nil
			default:
				return fmt.Errorf("invalid value for model.backend: %q (expected %s or %s)", v, BackendProcess, BackendHTTP)
			}
		},
	},
	"model.command": {
		get: func(c *Config) string { return c.Model.Command },
		set: func(c *Config, v string) error { c.Model.Command = v; return nil },
	},
	"model.upstream": {
		get: func(c *Config) string { return c.Model.Upstream },
		set: func(c *Config, v string) error { c.Model.Upstream = v; return nil },
	},
	"model.primary": {
		get: func(c *Config) string { return c.Model.Primary },
		set: func(c *Config, v string) error { c.Model.Primary = v; return nil },
	},
	"model.fallback": {
		get: func(c *Config) string { return c.Model.Fallback },
		set: func(c *Config, v string) error { c.Model.Fallback = v; return nil },
	},
	"model.timeout_seconds": {
		get: func(c *Config) string { return getUint(c.Model.TimeoutSeconds) },
		set: func(c *Config, v string) error {
			return setUint("model.timeout_seconds", &c.Model.TimeoutSeconds)(c, v)
		},
	},
	"persona.signature": {
		get: func(c *Config) string { return c.Persona.Signature },
		set: func(c *Config, v string) error {
			if v == "" {
				return fmt.Errorf("invalid value for persona.signature: must not be empty")
			}
			c.Persona.Signature = v
			return nil
		},
	},
	"tools.list_limit": {
		get: func(c *Config) string { return getUint(c.Tools.ListLimit) },
		set: func(c *Config, v string) error {
			return setUint("tools.list_limit", &c.Tools.ListLimit)(c, v)
		},
	},
	"tools.read_limit": {
		get: func(c *Config) string { return getUint(c.Tools.ReadLimit) },
		set: func(c *Config, v string) error {
			return setUint("tools.read_limit", &c.Tools.ReadLimit)(c, v)
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"logging.file": {
		get: func(c *Config) string { return c.Logging.File },
		set: func(c *Config, v string) error { c.Logging.File = v; return nil },
	},
	"logging.json": {
		get: func(c *Config) string { return strconv.FormatBool(c.Logging.JSON) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for logging.json: %w", err)
			}
			c.Logging.JSON = b
			return nil
		},
	},
}

// orderedKeys lists every key in TOML section order.
var orderedKeys = []string{
	"model.backend",
	"model.command",
	"model.upstream",
	"model.primary",
	"model.fallback",
	"model.timeout_seconds",
	"persona.signature",
	"tools.list_limit",
	"tools.read_limit",
	"storage.sqlite_path",
	"logging.file",
	"logging.json",
}
