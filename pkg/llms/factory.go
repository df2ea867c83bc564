package llms

import (
	"fmt"
	"strings"

	"github.com/projectforge/aipg/pkg/core"
)

// NewLLM creates a new LLM instance based on the provided model ID.
// Ollama models use the "ollama:<model_name>" form; other IDs map to their
// hosted provider directly.
func NewLLM(apiKey string, modelID core.ModelID) (core.LLM, error) {
	switch {
	case strings.HasPrefix(string(modelID), "claude-"):
		return NewAnthropicLLM(apiKey, modelID)
	case strings.HasPrefix(string(modelID), "gemini-"):
		return NewGeminiLLM(apiKey, modelID)
	case strings.HasPrefix(string(modelID), "ollama:"):
		parts := strings.SplitN(string(modelID), ":", 2)
		if len(parts) != 2 || parts[1] == "" {
			return nil, fmt.Errorf("invalid Ollama model ID format. Use 'ollama:<model_name>'")
		}
		return NewOllamaLLM("", parts[1])
	default:
		return nil, fmt.Errorf("unsupported model ID: %s", modelID)
	}
}

// NewLLMForProvider builds the model for the given model ID and rejects it
// when it does not belong to the named provider. An empty provider skips the
// check.
func NewLLMForProvider(provider, apiKey string, modelID core.ModelID) (core.LLM, error) {
	llm, err := NewLLM(apiKey, modelID)
	if err != nil {
		return nil, err
	}
	if provider != "" && llm.ProviderName() != provider {
		return nil, fmt.Errorf("model %s belongs to provider %s, not %s",
			modelID, llm.ProviderName(), provider)
	}
	return llm, nil
}
