// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Provider identifiers accepted by Config.Provider.
const (
	// ProviderOpenAI selects an OpenAI-compatible embedding API
	// (OpenAI itself, Ollama, LocalAI, vLLM, etc).
	ProviderOpenAI = "openai"

	// ProviderGoogleAI selects the Google AI (Gemini) embedding API.
	ProviderGoogleAI = "googleai"
)

// Config holds configuration for embedding service providers.
type Config struct {
	// Provider selects the embedding backend. Must be one of the
	// Provider* constants. Default: ProviderOpenAI.
	Provider string

	// Host is the base URL for the embedding service API. Only used by
	// OpenAI-compatible providers; the Google AI SDK manages its own
	// endpoint. Example: "http://localhost:11434/v1" for a local server.
	Host string

	// Model is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small", "text-embedding-004"
	Model string

	// APIKey authenticates against the provider. Optional for local
	// OpenAI-compatible services, required for Google AI.
	APIKey string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider sets the embedding backend.
func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithHost sets the embedding service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIKey sets the provider API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// DefaultConfig returns a Config with sensible defaults for a local
// OpenAI-compatible service.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Host:     "http://localhost:11434/v1",
		Model:    "embeddinggemma",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//   cfg := NewConfig(
//       WithHost("http://localhost:11434/v1"),
//       WithModel("text-embedding-3-small"),
//   )
//
// Example for Google AI:
//   cfg := NewConfig(
//       WithProvider(ProviderGoogleAI),
//       WithModel("text-embedding-004"),
//       WithAPIKey(key),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// For OpenAI-compatible providers it adds the /v1 suffix to the host if
// missing, which most such APIs (Ollama, LocalAI, vLLM, etc) require.
// Hosts for other providers pass through untouched.
func (c *Config) Normalize() {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Provider == ProviderOpenAI && c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		// Remove trailing slash if present before adding /v1
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	// Normalize first to ensure hosts are in correct format
	c.Normalize()

	switch c.Provider {
	case ProviderOpenAI:
		if c.Host == "" {
			return errors.New("ai config: Host is required for the openai provider")
		}
	case ProviderGoogleAI:
		if c.APIKey == "" {
			return errors.New("ai config: APIKey is required for the googleai provider")
		}
	default:
		return fmt.Errorf("ai config: unknown provider %q", c.Provider)
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	return nil
}
