// LLM Provider Factory - creates providers by name.
//
// Quick Start:
//
//	// Local Ollama with defaults
//	p, err := llm.NewProvider(llm.ProviderOllama, llm.Options{})
//
//	// Hosted provider, API key from environment
//	p, err := llm.NewProvider(llm.ProviderAnthropic, llm.Options{Model: "claude-sonnet-4-20250514"})

package llm

import (
	"fmt"
	"os"
	"strings"
)

// Default models per provider.
const (
	ModelOllamaDefault    = "gemma3:12b"
	ModelOpenAIDefault    = "gpt-4o"
	ModelAnthropicDefault = "claude-sonnet-4-20250514"
	ModelGeminiDefault    = "gemini-2.5-flash"
)

// ProviderType represents supported LLM providers.
type ProviderType int

const (
	// ProviderOllama is a local Ollama server (default backend).
	ProviderOllama ProviderType = iota
	// ProviderOpenAI is the OpenAI provider (GPT models).
	ProviderOpenAI
	// ProviderAnthropic is the Anthropic provider (Claude models).
	ProviderAnthropic
	// ProviderGemini is the Google Gemini provider.
	ProviderGemini
)

// String returns the string representation of the provider type.
func (p ProviderType) String() string {
	switch p {
	case ProviderOllama:
		return "ollama"
	case ProviderOpenAI:
		return "openai"
	case ProviderAnthropic:
		return "anthropic"
	case ProviderGemini:
		return "gemini"
	default:
		return "unknown"
	}
}

// EnvVar returns the environment variable name for this provider's API key.
// Ollama needs no key and returns "".
func (p ProviderType) EnvVar() string {
	switch p {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// DefaultModel returns the default model for this provider.
func (p ProviderType) DefaultModel() string {
	switch p {
	case ProviderOllama:
		return ModelOllamaDefault
	case ProviderOpenAI:
		return ModelOpenAIDefault
	case ProviderAnthropic:
		return ModelAnthropicDefault
	case ProviderGemini:
		return ModelGeminiDefault
	default:
		return ""
	}
}

// ParseProviderType parses a provider from string (case-insensitive).
func ParseProviderType(s string) (ProviderType, error) {
	switch strings.ToLower(s) {
	case "", "ollama", "local":
		return ProviderOllama, nil
	case "openai", "gpt":
		return ProviderOpenAI, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	case "gemini", "google":
		return ProviderGemini, nil
	default:
		return 0, fmt.Errorf("unknown provider: %s", s)
	}
}

// Options configures provider creation. Zero values pick sensible defaults:
// the provider's default model, API key from the environment, the local
// Ollama base URL.
type Options struct {
	APIKey      string
	Model       string
	BaseURL     string // Ollama only
	MaxTokens   uint32
	Temperature float32
}

// NewProvider creates a provider of the given type.
func NewProvider(providerType ProviderType, opts Options) (Provider, error) {
	model := opts.Model
	if model == "" {
		model = providerType.DefaultModel()
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	if providerType == ProviderOllama {
		return NewOllamaProvider(opts.BaseURL, model, maxTokens, opts.Temperature), nil
	}

	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(providerType.EnvVar())
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s not set", providerType.EnvVar())
	}

	switch providerType {
	case ProviderOpenAI:
		return NewOpenAIProvider(apiKey, model, maxTokens, opts.Temperature), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey, model, maxTokens, opts.Temperature), nil
	case ProviderGemini:
		return NewGeminiProvider(apiKey, model, maxTokens, opts.Temperature), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %v", providerType)
	}
}
