package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaClient implements Handle against the Ollama chat API. It covers both
// the local daemon and the cloud endpoint; the only differences are the base
// URL and whether a bearer token is sent.
type OllamaClient struct {
	apiKey       string
	apiBase      string
	defaultModel string
	temperature  float64
	maxTokens    int
	httpClient   *http.Client
}

// NewOllamaClient creates a client for a local Ollama daemon.
func NewOllamaClient(apiBase, defaultModel string, temperature float64, maxTokens int) *OllamaClient {
	if apiBase == "" {
		apiBase = "http://localhost:11434"
	}
	if defaultModel == "" {
		defaultModel = "llama3.1:latest"
	}
	return &OllamaClient{
		apiBase:      strings.TrimSuffix(apiBase, "/"),
		defaultModel: defaultModel,
		temperature:  temperature,
		maxTokens:    maxTokens,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

// NewOllamaCloudClient creates a client for the Ollama cloud endpoint.
func NewOllamaCloudClient(apiKey, apiBase, defaultModel string, temperature float64, maxTokens int) *OllamaClient {
	if apiBase == "" {
		apiBase = "https://ollama.com"
	}
	if defaultModel == "" {
		defaultModel = "gpt-oss:20b"
	}
	c := NewOllamaClient(apiBase, defaultModel, temperature, maxTokens)
	c.apiKey = apiKey
	return c
}

// DefaultModel returns the configured default model.
func (c *OllamaClient) DefaultModel() string {
	return c.defaultModel
}

// Call sends a chat completion request and returns the response text.
func (c *OllamaClient) Call(ctx context.Context, messages []Message) (string, error) {
	body := map[string]any{
		"model":    c.defaultModel,
		"messages": messages,
		"stream":   false,
		"options": map[string]any{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiBase+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp ollamaChatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	return apiResp.Message.Content, nil
}

// Embed generates an embedding vector for the given input text.
func (c *OllamaClient) Embed(ctx context.Context, input string) ([]float32, error) {
	body := map[string]any{
		"model": c.defaultModel,
		"input": input,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiBase+"/api/embed", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute embedding request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var embResp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("parse embedding response: %w", err)
	}

	if len(embResp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embedding data in response")
	}

	return embResp.Embeddings[0], nil
}

type ollamaChatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}
