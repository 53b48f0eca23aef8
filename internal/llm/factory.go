package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/lightship/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name disables narratives and returns nil, nil.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "anthropic", "claude":
		return NewAnthropicProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts the LLM section of the config file, borrowing proxy settings from the HTTP section
func ConfigFromModel(llmConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	return Config{
		Provider:      llmConfig.Provider,
		Model:         llmConfig.Model,
		APIKey:        llmConfig.APIKey,
		BaseURL:       llmConfig.BaseURL,
		Timeout:       llmConfig.Timeout,
		StrictSources: llmConfig.StrictSources,
		MaxTokens:     llmConfig.MaxTokens,
		HTTPProxy:     httpConfig.HTTPProxy,
		HTTPSProxy:    httpConfig.HTTPSProxy,
		NoProxy:       httpConfig.NoProxy,
	}
}
