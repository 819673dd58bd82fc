package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// HTTPEmbedder generates embeddings via an OpenAI-compatible
// /v1/embeddings endpoint.
type HTTPEmbedder struct {
	apiKey     string
	model      string
	endpoint   string
	dimensions int
	client     *http.Client
	limiter    *rate.Limiter
}

type embedRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embedResponse struct {
	Data []embedding `json:"data"`
}

type embedding struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// NewHTTPEmbedder creates an HTTPEmbedder for the given endpoint and model.
// dimensions is forwarded to the API when > 0 so the service truncates to the
// deployment's fixed width.
func NewHTTPEmbedder(endpoint, apiKey, model string, dimensions int) *HTTPEmbedder {
	return &HTTPEmbedder{
		apiKey:     apiKey,
		model:      model,
		endpoint:   endpoint,
		dimensions: dimensions,
		client:     &http.Client{Timeout: 60 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(750*time.Millisecond), 1), // ~80 RPM
	}
}

// Available returns true if the embedder is configured with an endpoint.
func (e *HTTPEmbedder) Available() bool {
	return e.endpoint != ""
}

// Embed generates a vector embedding for the given text.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embed: rate limiter: %w", err)
	}

	reqBody := embedRequest{
		Model:      e.model,
		Input:      []string{text},
		Dimensions: e.dimensions,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("embed: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("embed: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embed: service returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("embed: decode response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("embed: service returned no embeddings")
	}
	return parsed.Data[0].Embedding, nil
}
