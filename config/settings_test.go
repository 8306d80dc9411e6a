package config

import (
	"testing"
	"time"
)

func TestNewDefaultsToOllama(t *testing.T) {
	settings, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "ollama" {
		t.Errorf("expected provider 'ollama', got %q", settings.LLM.Provider)
	}
	if settings.Agent.MaxTurns != 10 {
		t.Errorf("expected default max turns 10, got %d", settings.Agent.MaxTurns)
	}
	if settings.Agent.WaitMin != 1*time.Second || settings.Agent.WaitMax != 60*time.Second {
		t.Errorf("unexpected wait bounds: %s..%s", settings.Agent.WaitMin, settings.Agent.WaitMax)
	}
	if settings.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", settings.Server.Port)
	}
}

func TestNewWithAlias(t *testing.T) {
	settings, err := New("claude")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "anthropic" {
		t.Errorf("expected provider 'anthropic' (normalized from 'claude'), got %q", settings.LLM.Provider)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("unknown_provider")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("AGENT_MAX_TURNS", "3")
	t.Setenv("AGENT_WAIT_MAX_SECONDS", "120")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("OLLAMA_MODEL", "llama3.2")

	settings, err := New("ollama")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.Agent.MaxTurns != 3 {
		t.Errorf("expected max turns 3, got %d", settings.Agent.MaxTurns)
	}
	if settings.Agent.WaitMax != 120*time.Second {
		t.Errorf("expected wait max 120s, got %s", settings.Agent.WaitMax)
	}
	if settings.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", settings.Server.Port)
	}
	if settings.LLM.Model != "llama3.2" {
		t.Errorf("expected model override, got %q", settings.LLM.Model)
	}
}

func TestNewRejectsInvertedWaitBounds(t *testing.T) {
	t.Setenv("AGENT_WAIT_MIN_SECONDS", "30")
	t.Setenv("AGENT_WAIT_MAX_SECONDS", "5")

	if _, err := New("ollama"); err == nil {
		t.Error("expected error for wait max below wait min")
	}
}

func TestAPIKeyForProviderWithKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	key, err := APIKeyFor("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "test-key" {
		t.Errorf("expected 'test-key', got %q", key)
	}
}

func TestAPIKeyForMissing(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := APIKeyFor("openai")
	if err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestAPIKeyForLocalProvider(t *testing.T) {
	key, err := APIKeyFor("ollama")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "" {
		t.Errorf("expected empty key for local provider, got %q", key)
	}
}

func TestModelFor(t *testing.T) {
	model, err := ModelFor("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model == "" {
		t.Error("expected non-empty model")
	}
}

func TestNewWithInvalidEnvVar(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "not-a-number")

	_, err := New("openai")
	if err == nil {
		t.Error("expected error for invalid LLM_MAX_TOKENS")
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for unknown provider")
		}
	}()
	MustNew("unknown_provider")
}

func TestServerAddr(t *testing.T) {
	c := ServerConfig{Host: "127.0.0.1", Port: 8000}
	if c.Addr() != "127.0.0.1:8000" {
		t.Errorf("unexpected addr %q", c.Addr())
	}
}
