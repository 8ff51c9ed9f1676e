package config

import (
	"time"

	"github.com/papercomputeco/sparrow/pkg/gateway"
	"github.com/papercomputeco/sparrow/pkg/signature"
	"github.com/papercomputeco/sparrow/pkg/tools"
)

// Model backends.
const (
	BackendProcess = "process"
	BackendHTTP    = "http"
)

const (
	defaultBackend  = BackendProcess
	defaultPrimary  = "sparrow:latest"
	defaultFallback = "qwen2.5:0.5b"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Model: ModelConfig{
			Backend:        defaultBackend,
			Command:        gateway.DefaultCommand,
			Upstream:       gateway.DefaultUpstream,
			Primary:        defaultPrimary,
			Fallback:       defaultFallback,
			TimeoutSeconds: uint(gateway.DefaultTimeout / time.Second),
		},
		Persona: PersonaConfig{
			Signature: signature.Default,
		},
		Tools: ToolsConfig{
			ListLimit: tools.DefaultListLimit,
			ReadLimit: tools.DefaultReadLimit,
		},
	}
}

// Timeout is the model timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Model.TimeoutSeconds) * time.Second
}
