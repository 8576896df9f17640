package config

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadAggregatesMissingCredentials(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error when no credentials are set")
	}

	var configErr *ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected a ConfigurationError, got %v", err)
	}
	if len(configErr.Missing) != 2 {
		t.Errorf("expected both credential groups reported, got %v", configErr.Missing)
	}
	if !strings.Contains(err.Error(), "DEEPGRAM_API_KEY") {
		t.Errorf("expected DEEPGRAM_API_KEY in error, got %q", err.Error())
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "dg-key")
	t.Setenv("GROQ_API_KEY", "gsk-key")
	t.Setenv("LISTEN_ADDRESS", "")

	config, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.ListenAddress != ":8080" {
		t.Errorf("expected default listen address, got %q", config.ListenAddress)
	}
}

func TestLoadAcceptsEitherModelProvider(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "dg-key")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-key")

	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
