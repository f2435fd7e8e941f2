package app

import (
	"github.com/raysh454/guardscan/internal/genai"
	"github.com/raysh454/guardscan/internal/reputation"
)

// Config contains the runtime configuration consumed by the orchestrator and
// the capability clients constructed around it.
type Config struct {
	// StorageRoot is the base path where the insights database lives.
	StorageRoot string

	// Reputation configures the threat-intelligence provider client.
	Reputation reputation.Config

	// GenAI configures the generative-text client.
	GenAI genai.Config
}

// DefaultConfig returns a Config populated with sensible development defaults.
func DefaultConfig() *Config {
	return &Config{
		StorageRoot: "~/.config/guardscan",
		Reputation:  reputation.DefaultConfig(),
		GenAI:       genai.DefaultConfig(),
	}
}
