package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
)

const (
	defaultOpenAIURL     = "https://api.openai.com"
	defaultOpenAIModel   = "gpt-4o"
	defaultDeepSeekURL   = "https://api.deepseek.com"
	defaultDeepSeekModel = "deepseek-chat"
)

// OpenAI implements Backend using the chat completions API. It also serves
// compatible providers such as DeepSeek, vLLM or LM Studio.
type OpenAI struct {
	name string
	o    *backendOptions
}

// NewOpenAI creates an OpenAI backend. The API key defaults to the
// OPENAI_API_KEY environment variable.
func NewOpenAI(opts ...Option) *OpenAI {
	return &OpenAI{
		name: ProviderOpenAI,
		o:    newBackendOptions(defaultOpenAIModel, defaultOpenAIURL, os.Getenv("OPENAI_API_KEY"), opts),
	}
}

// NewDeepSeek creates an OpenAI compatible backend for DeepSeek. The API key
// defaults to the DEEPSEEK_API_KEY environment variable.
func NewDeepSeek(opts ...Option) *OpenAI {
	return &OpenAI{
		name: ProviderDeepSeek,
		o:    newBackendOptions(defaultDeepSeekModel, defaultDeepSeekURL, os.Getenv("DEEPSEEK_API_KEY"), opts),
	}
}

// Name returns the backend name.
func (b *OpenAI) Name() string {
	return b.name
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// openAIErrorMessage reads {"error":{"message":..}} bodies.
func openAIErrorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Error.Message
}

// Generate calls the /v1/chat/completions endpoint.
func (b *OpenAI) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	messages := make([]chatMessage, 0, 2)
	if req.SystemMsg != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemMsg})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	header := http.Header{}
	if b.o.apiKey != "" {
		header.Set("Authorization", "Bearer "+b.o.apiKey)
	}

	var resp chatCompletionResponse
	err := postJSON(ctx, b.o, b.name, "/v1/chat/completions", header, chatCompletionRequest{
		Model:       b.o.model,
		Messages:    messages,
		Temperature: temperature(req.Temperature),
		MaxTokens:   req.MaxTokens,
	}, &resp, openAIErrorMessage)
	if err != nil {
		return GenerateResponse{}, err
	}
	if len(resp.Choices) == 0 {
		return GenerateResponse{}, errors.New("empty choices from " + b.name)
	}

	u := usage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	if resp.Usage.TotalTokens > 0 {
		u.TotalTokens = resp.Usage.TotalTokens
	}
	return GenerateResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage:   u,
	}, nil
}
