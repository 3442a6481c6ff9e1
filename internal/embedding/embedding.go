// Package embedding maps text to fixed-length float vectors via an
// external provider. It is a front-end collaborator: the engine only ever
// receives the resulting vectors and never calls a provider itself.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Provider generates embedding vectors from text.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dims() int
}

// Settings selects and configures a provider.
type Settings struct {
	// Provider is "ollama", "openai", "hash", or "" (disabled).
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Dims     int    `yaml:"dims"`
}

// New creates a provider from settings. Returns nil when embeddings are
// disabled.
func New(s Settings) (Provider, error) {
	switch s.Provider {
	case "ollama":
		return newOllama(s), nil
	case "openai":
		return newOpenAI(s), nil
	case "hash":
		return NewHash(s.Dims), nil
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", s.Provider)
	}
}

// --- Ollama provider ---

type ollamaProvider struct {
	baseURL string
	model   string
	dims    int
	client  *http.Client
}

func newOllama(s Settings) *ollamaProvider {
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := s.Model
	if model == "" {
		model = "nomic-embed-text"
	}
	dims := s.Dims
	if dims == 0 {
		dims = 768 // nomic-embed-text
	}
	return &ollamaProvider{
		baseURL: baseURL,
		model:   model,
		dims:    dims,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (p *ollamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	body, _ := json.Marshal(ollamaRequest{Model: p.model, Prompt: text})
	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(b))
	}

	var result ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Embedding, nil
}

func (p *ollamaProvider) Dims() int { return p.dims }

// --- OpenAI-compatible provider ---

type openaiProvider struct {
	baseURL string
	apiKey  string
	model   string
	dims    int
	client  *http.Client
}

func newOpenAI(s Settings) *openaiProvider {
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := s.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	dims := s.Dims
	if dims == 0 {
		dims = 1536
	}
	return &openaiProvider{
		baseURL: baseURL,
		apiKey:  s.APIKey,
		model:   model,
		dims:    dims,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type openaiRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type openaiResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *openaiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	body, _ := json.Marshal(openaiRequest{Input: text, Model: p.model})
	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai error %d: %s", resp.StatusCode, string(b))
	}

	var result openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return result.Data[0].Embedding, nil
}

func (p *openaiProvider) Dims() int { return p.dims }
