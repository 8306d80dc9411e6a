// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific configuration lookup

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings holds all application configuration.
type Settings struct {
	LLM      LLMConfig
	Agent    AgentConfig
	Server   ServerConfig
	Storage  StorageConfig
	LogLevel string
}

// LLMConfig holds model gateway configuration.
type LLMConfig struct {
	Provider    string
	Model       string
	BaseURL     string
	MaxTokens   uint32
	Temperature float64
}

// AgentConfig holds turn-loop configuration.
type AgentConfig struct {
	MaxTurns  int
	WaitMin   time.Duration
	WaitMax   time.Duration
	QueueSize int
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string
	Port int
}

// StorageConfig holds transcript persistence configuration.
type StorageConfig struct {
	// Path to the SQLite database file. Empty means in-memory only.
	Path string
}

// providerInfo holds configuration for a specific model provider.
type providerInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
}

// Supported providers and their configuration. Ollama runs locally and
// needs no API key.
var providers = map[string]providerInfo{
	"ollama":    {"OLLAMA_MODEL", "gemma3:12b", ""},
	"openai":    {"OPENAI_MODEL", "gpt-4o", "OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_MODEL", "claude-sonnet-4-20250514", "ANTHROPIC_API_KEY"},
	"gemini":    {"GEMINI_MODEL", "gemini-2.5-flash", "GEMINI_API_KEY"},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
	"local":  "ollama",
}

// New creates settings for the specified provider, loading values from
// environment variables. An empty provider selects the local Ollama backend.
// Returns an error if the provider is unknown or environment variables
// contain invalid values.
func New(provider string) (Settings, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return Settings{}, err
	}

	maxTokens, err := getEnvUint32("LLM_MAX_TOKENS", 4096)
	if err != nil {
		return Settings{}, err
	}

	temperature, err := getEnvFloat64("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return Settings{}, err
	}

	maxTurns, err := getEnvInt("AGENT_MAX_TURNS", 10)
	if err != nil {
		return Settings{}, err
	}

	waitMin, err := getEnvSeconds("AGENT_WAIT_MIN_SECONDS", 1*time.Second)
	if err != nil {
		return Settings{}, err
	}

	waitMax, err := getEnvSeconds("AGENT_WAIT_MAX_SECONDS", 60*time.Second)
	if err != nil {
		return Settings{}, err
	}
	if waitMax < waitMin {
		return Settings{}, fmt.Errorf("AGENT_WAIT_MAX_SECONDS (%s) below AGENT_WAIT_MIN_SECONDS (%s)", waitMax, waitMin)
	}

	queueSize, err := getEnvInt("AGENT_QUEUE_SIZE", 64)
	if err != nil {
		return Settings{}, err
	}

	port, err := getEnvInt("SERVER_PORT", 8000)
	if err != nil {
		return Settings{}, err
	}

	host := os.Getenv("SERVER_HOST")
	if host == "" {
		host = "0.0.0.0"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	// Get model from environment or use default
	model := os.Getenv(info.modelEnv)
	if model == "" {
		model = info.defaultModel
	}

	return Settings{
		LLM: LLMConfig{
			Provider:    provider,
			Model:       model,
			BaseURL:     os.Getenv("OLLAMA_BASE_URL"),
			MaxTokens:   maxTokens,
			Temperature: temperature,
		},
		Agent: AgentConfig{
			MaxTurns:  maxTurns,
			WaitMin:   waitMin,
			WaitMax:   waitMax,
			QueueSize: queueSize,
		},
		Server: ServerConfig{
			Host: host,
			Port: port,
		},
		Storage: StorageConfig{
			Path: os.Getenv("STORAGE_PATH"),
		},
		LogLevel: logLevel,
	}, nil
}

// MustNew creates settings for the specified provider.
// Panics if the provider is unknown or environment variables are invalid.
// Use this only when configuration errors should be fatal.
func MustNew(provider string) Settings {
	settings, err := New(provider)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// Addr returns the host:port the server should bind to.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// normalizeProvider converts provider aliases to canonical names.
func normalizeProvider(provider string) string {
	provider = strings.ToLower(provider)
	if provider == "" {
		return "ollama"
	}
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
// Local providers need no key and return an empty string.
func APIKeyFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}
	if info.apiKeyEnv == "" {
		return "", nil
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}
	return key, nil
}

// ModelFor returns the model for a provider, checking environment first.
func ModelFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	if val := os.Getenv(info.modelEnv); val != "" {
		return val, nil
	}
	return info.defaultModel, nil
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	return result
}

// Environment variable helpers with proper error handling

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}

func getEnvSeconds(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return time.Duration(f * float64(time.Second)), nil
}
