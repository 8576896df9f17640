// Package config loads the credentials and settings the agent needs at
// startup from the environment, with an optional .env file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the agent binary needs to run.
type Config struct {
	ListenAddress string

	DeepgramAPIKey string

	GroqAPIKey string
	GroqModel  string

	OpenAIAPIKey string
	OpenAIModel  string

	Voice        string
	SystemPrompt string
}

// ConfigurationError aggregates every missing credential so a broken
// deployment fails once with the complete list.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

// Load reads the environment, falling back to a .env file when one is
// present. It fails when no speech credentials or no language model
// credentials are available.
func Load() (Config, error) {
	godotenv.Load()

	config := Config{
		ListenAddress:  envOr("LISTEN_ADDRESS", ":8080"),
		DeepgramAPIKey: os.Getenv("DEEPGRAM_API_KEY"),
		GroqAPIKey:     os.Getenv("GROQ_API_KEY"),
		GroqModel:      os.Getenv("GROQ_MODEL"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    os.Getenv("OPENAI_MODEL"),
		Voice:          os.Getenv("VOICE"),
		SystemPrompt:   os.Getenv("SYSTEM_PROMPT"),
	}

	var missing []string
	if config.DeepgramAPIKey == "" {
		missing = append(missing, "DEEPGRAM_API_KEY")
	}
	if config.GroqAPIKey == "" && config.OpenAIAPIKey == "" {
		missing = append(missing, "GROQ_API_KEY or OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return Config{}, &ConfigurationError{Missing: missing}
	}

	return config, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
