package ai

import (
	"context"
	"encoding/json"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "deepseek-r1:14b"
)

// Ollama implements Backend using a local Ollama server.
type Ollama struct {
	o *backendOptions
}

// NewOllama creates an Ollama backend.
func NewOllama(opts ...Option) *Ollama {
	return &Ollama{o: newBackendOptions(defaultOllamaModel, defaultOllamaURL, "", opts)}
}

// Name returns the backend name.
func (*Ollama) Name() string {
	return ProviderOllama
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Generate calls the /api/generate endpoint without streaming.
func (b *Ollama) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	in := ollamaRequest{Model: b.o.model, Prompt: req.Prompt, System: req.SystemMsg}
	if req.Temperature > 0 {
		in.Options = map[string]any{"temperature": req.Temperature}
	}
	if req.MaxTokens > 0 {
		if in.Options == nil {
			in.Options = map[string]any{}
		}
		in.Options["num_predict"] = req.MaxTokens
	}

	var resp ollamaResponse
	err := postJSON(ctx, b.o, ProviderOllama, "/api/generate", nil, in, &resp, func(body []byte) string {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &e)
		return e.Error
	})
	if err != nil {
		return GenerateResponse{}, err
	}

	return GenerateResponse{
		Content: resp.Response,
		Model:   resp.Model,
		Usage:   usage(resp.PromptEvalCount, resp.EvalCount),
	}, nil
}
