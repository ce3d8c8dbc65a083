package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"google.golang.org/genai"

	"docrag/models"
)

// maxEmbedInputChars caps the text submitted to the embedding service.
// Embedding endpoints have input-size limits and longer text should have
// been chunked already.
const maxEmbedInputChars = 6000

// Embedder converts text into a fixed-length vector. Implementations wrap
// an external embedding service and must honor ctx cancellation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// OllamaEmbedder generates embeddings through a local Ollama instance.
type OllamaEmbedder struct {
	httpClient *http.Client
	baseURL    string
	model      string
	timeout    time.Duration
}

// NewOllamaEmbedder creates an Ollama embedding client with a per-call timeout.
func NewOllamaEmbedder(client *http.Client, baseURL, model string, timeout time.Duration) *OllamaEmbedder {
	if client == nil {
		client = &http.Client{}
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &OllamaEmbedder{httpClient: client, baseURL: baseURL, model: model, timeout: timeout}
}

// Embed implements Embedder.
func (o *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	reqBody, err := json.Marshal(ollamaEmbedRequest{Model: o.model, Prompt: truncateForEmbedding(text)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embeddings", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, &models.EmbeddingServiceError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &models.EmbeddingServiceError{Status: resp.StatusCode, Body: string(bodyBytes)}
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &models.EmbeddingServiceError{Err: fmt.Errorf("failed to decode ollama response: %w", err)}
	}
	if len(out.Embedding) == 0 {
		return nil, &models.EmbeddingServiceError{Err: fmt.Errorf("ollama returned an empty embedding")}
	}
	return out.Embedding, nil
}

// GeminiEmbedder generates embeddings through the Gemini API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates a Gemini embedding client.
func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	return &GeminiEmbedder{client: client, model: model}
}

// Embed implements Embedder.
func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	result, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(truncateForEmbedding(text)), nil)
	if err != nil {
		return nil, &models.EmbeddingServiceError{Err: err}
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, &models.EmbeddingServiceError{Err: fmt.Errorf("gemini returned an empty embedding")}
	}
	return result.Embeddings[0].Values, nil
}

func truncateForEmbedding(text string) string {
	if len(text) > maxEmbedInputChars {
		return text[:maxEmbedInputChars]
	}
	return text
}
