package core

import (
	"context"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/projectforge/aipg/pkg/errors"
)

type TokenInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type LLMResponse struct {
	Content  string
	Usage    *TokenInfo
	Metadata map[string]interface{}
}

type Capability string

const (
	CapabilityCompletion Capability = "completion"
	CapabilityChat       Capability = "chat"
	CapabilityJSON       Capability = "json"
)

// LLM represents an interface for language models.
type LLM interface {
	// Generate produces text completions based on the given prompt
	Generate(ctx context.Context, prompt string, options ...GenerateOption) (*LLMResponse, error)

	// GenerateWithJSON produces structured JSON output based on the given prompt
	GenerateWithJSON(ctx context.Context, prompt string, options ...GenerateOption) (map[string]interface{}, error)

	ProviderName() string
	ModelID() string
	Capabilities() []Capability
}

// GenerateOption represents an option for text generation.
type GenerateOption func(*GenerateOptions)

// GenerateOptions holds configuration for text generation.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	Stop        []string
}

// NewGenerateOptions creates a new GenerateOptions with default values.
func NewGenerateOptions() *GenerateOptions {
	return &GenerateOptions{
		MaxTokens:   8192,
		Temperature: 0.5,
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = t
	}
}

// WithTopP sets the nucleus sampling probability.
func WithTopP(p float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.TopP = p
	}
}

// WithStopSequences sets the stop sequences.
func WithStopSequences(sequences ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Stop = sequences
	}
}

type EndpointConfig struct {
	BaseURL    string            // Base API URL
	Path       string            // Specific endpoint path
	Headers    map[string]string // Common headers
	TimeoutSec int               // Request timeout in seconds
}

// ValidateEndpointConfig normalizes an endpoint config, applying the default
// timeout. A nil config is valid.
func ValidateEndpointConfig(cfg *EndpointConfig) error {
	if cfg == nil {
		return nil
	}

	if cfg.BaseURL == "" {
		return errors.New(errors.InvalidInput, "base URL required in endpoint configuration")
	}

	if cfg.TimeoutSec <= 0 {
		cfg.TimeoutSec = 60
	}

	return nil
}

// BaseLLM provides a base implementation of the LLM interface. The embedded
// HTTP client carries the endpoint timeout so no provider call can block a
// generation session forever.
type BaseLLM struct {
	providerName string
	modelID      ModelID
	capabilities []Capability

	endpoint *EndpointConfig // Optional endpoint configuration
	client   *http.Client    // Common HTTP client
}

func NewBaseLLM(providerName string, modelID ModelID, capabilities []Capability, endpoint *EndpointConfig) *BaseLLM {
	var timeout time.Duration
	if endpoint != nil && endpoint.TimeoutSec > 0 {
		timeout = time.Duration(endpoint.TimeoutSec) * time.Second
	} else {
		timeout = 60 * time.Second
	}

	return &BaseLLM{
		providerName: providerName,
		modelID:      modelID,
		capabilities: capabilities,
		endpoint:     endpoint,
		client:       &http.Client{Timeout: timeout},
	}
}

// ProviderName implements LLM interface.
func (b *BaseLLM) ProviderName() string {
	return b.providerName
}

// ModelID implements LLM interface.
func (b *BaseLLM) ModelID() string {
	return string(b.modelID)
}

// Capabilities implements LLM interface.
func (b *BaseLLM) Capabilities() []Capability {
	return b.capabilities
}

// GetEndpointConfig returns the current endpoint configuration.
func (b *BaseLLM) GetEndpointConfig() *EndpointConfig {
	return b.endpoint
}

// GetHTTPClient returns the HTTP client.
func (b *BaseLLM) GetHTTPClient() *http.Client {
	return b.client
}

// ModelID represents the available model IDs.
type ModelID string

const (
	// Anthropic models.
	ModelAnthropicHaiku  ModelID = ModelID(anthropic.ModelClaude_3_Haiku_20240307)
	ModelAnthropicSonnet ModelID = ModelID(anthropic.ModelClaudeSonnet4_5_20250929)
	ModelAnthropicOpus   ModelID = ModelID(anthropic.ModelClaudeOpus4_1_20250805)

	// Google Gemini models.
	ModelGoogleGeminiFlash     ModelID = "gemini-2.5-flash"
	ModelGoogleGeminiPro       ModelID = "gemini-2.5-pro"
	ModelGoogleGeminiFlashLite ModelID = "gemini-2.5-flash-lite"
	ModelGoogleGemini20Flash   ModelID = "gemini-2.0-flash"
)

var ProviderModels = map[string][]ModelID{
	"anthropic": {ModelAnthropicSonnet, ModelAnthropicHaiku, ModelAnthropicOpus},
	"google": {
		ModelGoogleGeminiFlash, ModelGoogleGeminiPro,
		ModelGoogleGeminiFlashLite, ModelGoogleGemini20Flash,
	},
	"ollama": {},
}
