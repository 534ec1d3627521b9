package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/front-desk-ai/rag-orchestrator/internal/circuitbreaker"
)

// HTTPProvider calls an out-of-process embedding service over HTTP. It is
// one concrete Provider; any other transport (gRPC, a vendor SDK) can
// implement the same interface without touching the caching Service above.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	model   string
	http    *circuitbreaker.HTTPWrapper
}

func NewHTTPProvider(baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) *HTTPProvider {
	if model == "" {
		model = "text-embedding-frontdesk-512"
	}
	client := &http.Client{Timeout: timeout}
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		http:    circuitbreaker.NewHTTPWrapper(client, "embedding-provider", "embeddings", logger),
	}
}

type embedRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (p *HTTPProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(embedRequest{Input: text, Model: p.model})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding provider returned status %d", resp.StatusCode)
	}

	var er embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(er.Embedding) == 0 {
		return nil, fmt.Errorf("embedding provider returned empty vector")
	}
	return er.Embedding, nil
}
