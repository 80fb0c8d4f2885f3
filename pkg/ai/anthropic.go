package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
)

const (
	defaultAnthropicURL     = "https://api.anthropic.com"
	defaultAnthropicModel   = "claude-haiku-4-20250514"
	defaultAnthropicVersion = "2023-06-01"
	defaultAnthropicTokens  = 256
)

// Anthropic implements Backend using the Anthropic Messages API.
type Anthropic struct {
	o *backendOptions
}

// NewAnthropic creates an Anthropic backend. The API key defaults to the
// ANTHROPIC_API_KEY environment variable.
func NewAnthropic(opts ...Option) *Anthropic {
	return &Anthropic{
		o: newBackendOptions(defaultAnthropicModel, defaultAnthropicURL, os.Getenv("ANTHROPIC_API_KEY"), opts),
	}
}

// Name returns the backend name.
func (*Anthropic) Name() string {
	return ProviderAnthropic
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// anthropicErrorMessage reads {"error":{"type":..,"message":..}} bodies.
func anthropicErrorMessage(body []byte) string {
	var e struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil || e.Error.Message == "" {
		return ""
	}
	return e.Error.Type + ": " + e.Error.Message
}

// Generate calls the Messages API.
func (b *Anthropic) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	if b.o.apiKey == "" {
		return GenerateResponse{}, errors.New("anthropic api key is not set")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicTokens
	}

	header := http.Header{}
	header.Set("x-api-key", b.o.apiKey)
	header.Set("anthropic-version", defaultAnthropicVersion)

	var resp anthropicResponse
	err := postJSON(ctx, b.o, ProviderAnthropic, "/v1/messages", header, anthropicRequest{
		Model:       b.o.model,
		MaxTokens:   maxTokens,
		System:      req.SystemMsg,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: temperature(req.Temperature),
	}, &resp, anthropicErrorMessage)
	if err != nil {
		return GenerateResponse{}, err
	}

	for _, c := range resp.Content {
		if c.Type == "text" || c.Type == "" {
			return GenerateResponse{
				Content: c.Text,
				Model:   resp.Model,
				Usage:   usage(resp.Usage.InputTokens, resp.Usage.OutputTokens),
			}, nil
		}
	}
	return GenerateResponse{}, errors.New("empty response from anthropic")
}
