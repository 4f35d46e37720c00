// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

type Config struct {
	// Completion endpoint configuration. BaseURL points at any
	// OpenAI-compatible server, typically a local Ollama instance.
	BaseURL string
	Model   string
	APIKey  string

	// Every completion call runs under this deadline.
	Timeout time.Duration

	// Model parameters
	Temperature float32
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("LLM_BASE_URL is required")
	}
	if c.Model == "" {
		return fmt.Errorf("LLM_MODEL is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "http://localhost:11434/v1",
		Model:       "llama3:8b",
		APIKey:      "ollama", // local servers ignore the key but the client requires one
		Timeout:     2 * time.Minute,
		Temperature: 0.7,
	}
}
