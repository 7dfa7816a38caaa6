// Package config provides configuration management for the relay server.
// It handles loading and parsing YAML configuration files, applies
// environment variable overrides, and provides structured access to
// application settings including server port, upstream endpoint, API keys,
// sampling defaults, and reasoning display behavior.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the application's configuration, loaded once at startup
// from a YAML file with environment variable overrides. It is never mutated
// after Load returns.
type Config struct {
	// Port is the network port on which the API server will listen.
	Port int `yaml:"port"`

	// UpstreamBaseURL is the base URL of the upstream inference provider,
	// e.g. "https://integrate.api.nvidia.com/v1".
	UpstreamBaseURL string `yaml:"upstream-base-url"`

	// UpstreamAPIKey is the bearer token sent with every upstream request.
	UpstreamAPIKey string `yaml:"upstream-api-key"`

	// APIKeys is a list of keys for authenticating clients to this relay.
	// An empty list allows all requests.
	APIKeys []string `yaml:"api-keys"`

	// Debug enables or disables debug-level logging.
	Debug bool `yaml:"debug"`

	// LoggingToFile redirects logs from stdout to rotating files.
	LoggingToFile bool `yaml:"logging-to-file"`

	// ReasoningDisplay controls whether upstream reasoning content is
	// rewritten into the message text wrapped in marker tags. When false,
	// reasoning fields are stripped from relayed responses.
	ReasoningDisplay bool `yaml:"reasoning-display"`

	// ThinkingMode asks the upstream provider to generate reasoning
	// content alongside the final answer.
	ThinkingMode bool `yaml:"thinking-mode"`

	// DefaultTemperature is applied to requests that omit temperature.
	DefaultTemperature float64 `yaml:"default-temperature"`

	// DefaultMaxTokens is applied to requests that omit max_tokens.
	DefaultMaxTokens int `yaml:"default-max-tokens"`

	// LargeModel is the provider model used for large-tier resolution.
	LargeModel string `yaml:"large-model"`

	// MidModel is the provider model used for mid-tier resolution.
	MidModel string `yaml:"mid-model"`

	// SmallModel is the provider model used for small-tier resolution and
	// as the final fallback.
	SmallModel string `yaml:"small-model"`

	// Models defines the static mapping from client-facing model names to
	// provider model names. When empty, a built-in table derived from the
	// tier models is used.
	Models []ModelMapping `yaml:"models"`
}

// ModelMapping maps a client-facing model name to the provider model name
// substituted before forwarding.
type ModelMapping struct {
	// Alias is the model name clients send in requests.
	Alias string `yaml:"alias"`

	// Name is the actual model name used by the upstream provider.
	Name string `yaml:"name"`
}

// DefaultConfig returns the built-in configuration used when no config file
// is present. The tier models follow the provider's llama-3.1 catalog.
func DefaultConfig() *Config {
	return &Config{
		Port:               8317,
		UpstreamBaseURL:    "https://integrate.api.nvidia.com/v1",
		ReasoningDisplay:   true,
		ThinkingMode:       true,
		DefaultTemperature: 0.6,
		DefaultMaxTokens:   8192,
		LargeModel:         "meta/llama-3.1-405b-instruct",
		MidModel:           "meta/llama-3.1-70b-instruct",
		SmallModel:         "meta/llama-3.1-8b-instruct",
	}
}

// Load reads a YAML configuration file from the given path, unmarshals it
// over the built-in defaults, applies environment variable overrides, and
// returns it. A missing file is not an error: defaults plus environment
// variables are enough to run the relay.
//
// Parameters:
//   - configFile: The path to the YAML configuration file
//
// Returns:
//   - *Config: The loaded configuration
//   - error: An error if the configuration could not be loaded
func Load(configFile string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(configFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		if err = yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvOverrides()

	if config.UpstreamBaseURL == "" {
		return nil, fmt.Errorf("upstream-base-url must be set")
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides on top of the
// file-derived configuration. The environment always wins.
func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			c.Port = n
		}
	}
	if baseURL := os.Getenv("UPSTREAM_BASE_URL"); baseURL != "" {
		c.UpstreamBaseURL = baseURL
	}
	if apiKey := os.Getenv("UPSTREAM_API_KEY"); apiKey != "" {
		c.UpstreamAPIKey = apiKey
	}
}
