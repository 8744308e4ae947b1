// Package config holds process settings loaded from the environment and the
// on-disk team/agent enablement document.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Settings are the environment-driven knobs. Priority: process env > .env
// file > defaults.
type Settings struct {
	OllamaAPIKey string `envconfig:"OLLAMA_API_KEY"`

	CloudModel   string `envconfig:"OLLAMA_CLOUD_MODEL" default:"gpt-oss:20b"`
	CloudBaseURL string `envconfig:"OLLAMA_CLOUD_BASE_URL" default:"https://ollama.com"`
	LocalModel   string `envconfig:"OLLAMA_LOCAL_MODEL" default:"llama3.1:latest"`
	LocalBaseURL string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`

	Temperature float64 `envconfig:"DEFAULT_TEMPERATURE" default:"0.5"`
	MaxTokens   int     `envconfig:"DEFAULT_MAX_TOKENS" default:"8000"`

	SearchDelaySeconds  int `envconfig:"SEARCH_DELAY_SECONDS" default:"1"`
	SearchRetryAttempts int `envconfig:"SEARCH_RETRY_ATTEMPTS" default:"3"`
	MaxSearchResults    int `envconfig:"DUCKDUCKGO_MAX_RESULTS" default:"5"`

	InterTeamDelaySeconds int    `envconfig:"INTER_TEAM_DELAY_SECONDS" default:"10"`
	MemoryDir             string `envconfig:"MEMORY_DIR" default:"./memory_db"`
	OutputDir             string `envconfig:"OUTPUT_DIR" default:"./team_outputs"`
	AgentConfigPath       string `envconfig:"AGENT_CONFIG_PATH" default:"./agent_config.json"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"consultcrew.runs"`
}

// LoadSettings reads a .env file if present, then the process environment.
func LoadSettings() (*Settings, error) {
	_ = godotenv.Load()

	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &s, nil
}

// SearchDelay returns the web-search pacing interval.
func (s *Settings) SearchDelay() time.Duration {
	return time.Duration(s.SearchDelaySeconds) * time.Second
}

// InterTeamDelay returns the pause inserted between team executions.
func (s *Settings) InterTeamDelay() time.Duration {
	return time.Duration(s.InterTeamDelaySeconds) * time.Second
}

// CloudConfigured reports whether the hosted endpoint can be used.
func (s *Settings) CloudConfigured() bool {
	return s.OllamaAPIKey != ""
}
