// Package ai asks a language model how well a marketplace listing matches
// what a user is looking for.
package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Provider names accepted in configuration.
const (
	ProviderOpenAI    = "openai"
	ProviderDeepSeek  = "deepseek"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

// GenerateRequest defines the input for a model call.
type GenerateRequest struct {
	Prompt      string
	SystemMsg   string
	Temperature float64
	MaxTokens   int
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// GenerateResponse holds the result of a model call.
type GenerateResponse struct {
	Content string
	Model   string
	Usage   TokenUsage
}

// Backend generates text from a prompt.
type Backend interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	Name() string
}

// Config selects and configures a backend.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

type backendOptions struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// Option configures a backend.
type Option func(*backendOptions)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(o *backendOptions) {
		o.apiKey = strings.TrimSpace(key)
	}
}

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(o *backendOptions) {
		o.model = model
	}
}

// WithBaseURL overrides the provider's API endpoint.
func WithBaseURL(u string) Option {
	return func(o *backendOptions) {
		o.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *backendOptions) {
		o.client = c
	}
}

func newBackendOptions(model, baseURL, apiKey string, opts []Option) *backendOptions {
	o := &backendOptions{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewBackend builds the backend described by cfg.
func NewBackend(cfg Config, opts ...Option) (Backend, error) {
	if cfg.APIKey != "" {
		opts = append([]Option{WithAPIKey(cfg.APIKey)}, opts...)
	}
	if cfg.Model != "" {
		opts = append([]Option{WithModel(cfg.Model)}, opts...)
	}
	if cfg.BaseURL != "" {
		opts = append([]Option{WithBaseURL(cfg.BaseURL)}, opts...)
	}
	if cfg.Timeout > 0 {
		opts = append([]Option{WithHTTPClient(&http.Client{Timeout: cfg.Timeout})}, opts...)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI, "":
		return NewOpenAI(opts...), nil
	case ProviderDeepSeek:
		return NewDeepSeek(opts...), nil
	case ProviderOllama:
		return NewOllama(opts...), nil
	case ProviderAnthropic:
		return NewAnthropic(opts...), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q (one of %s, %s, %s, %s)",
			cfg.Provider, ProviderOpenAI, ProviderDeepSeek, ProviderOllama, ProviderAnthropic)
	}
}

// Providers lists the accepted provider names.
func Providers() []string {
	return []string{ProviderAnthropic, ProviderDeepSeek, ProviderOllama, ProviderOpenAI}
}
