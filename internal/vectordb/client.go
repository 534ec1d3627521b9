package vectordb

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

// Client is a minimal HTTP client for a Qdrant-style vector index,
// implementing Index.
type Client struct {
	cfg  Config
	http *circuitbreaker.HTTPWrapper
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Dim == 0 {
		cfg.Dim = 512
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5
	}
	httpClient := &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second}
	return &Client{
		cfg:  cfg,
		http: circuitbreaker.NewHTTPWrapper(httpClient, "vector-index", "vectordb", logger),
	}
}

type upsertRequest struct {
	Points []Point `json:"points"`
}

// Upsert inserts or overwrites points in the configured collection.
func (c *Client) Upsert(ctx context.Context, points []Point) error {
	url := fmt.Sprintf("%s/collections/%s/points", c.cfg.URL, c.cfg.CollectionName)
	buf, err := json.Marshal(upsertRequest{Points: points})
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPut, url, buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("vector index upsert status %d", resp.StatusCode)
	}
	return nil
}

type searchRequest struct {
	Vector         []float32 `json:"vector"`
	Limit          int       `json:"limit"`
	ScoreThreshold float64   `json:"score_threshold,omitempty"`
	WithPayload    bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []SearchResult `json:"result"`
}

// Search runs an ANN query, returning up to topN hits at or above
// scoreCutoff using cosine distance.
func (c *Client) Search(ctx context.Context, vector []float32, topN int, scoreCutoff float64) ([]SearchResult, error) {
	url := fmt.Sprintf("%s/collections/%s/points/search", c.cfg.URL, c.cfg.CollectionName)
	buf, err := json.Marshal(searchRequest{
		Vector:         vector,
		Limit:          topN,
		ScoreThreshold: scoreCutoff,
		WithPayload:    true,
	})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, url, buf)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vector index search status %d", resp.StatusCode)
	}
	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, err
	}
	return sr.Result, nil
}

// Reset drops and recreates the collection. Per §9, the KV store caches
// downstream of this are left to expire naturally rather than being
// invalidated here -- stale answers can persist until their TTL.
func (c *Client) Reset(ctx context.Context) error {
	deleteURL := fmt.Sprintf("%s/collections/%s", c.cfg.URL, c.cfg.CollectionName)
	if resp, err := c.do(ctx, http.MethodDelete, deleteURL, nil); err == nil {
		resp.Body.Close()
	}

	createURL := fmt.Sprintf("%s/collections/%s", c.cfg.URL, c.cfg.CollectionName)
	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     c.cfg.Dim,
			"distance": "Cosine",
		},
	}
	buf, _ := json.Marshal(body)
	resp, err := c.do(ctx, http.MethodPut, createURL, buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("vector index collection create status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Api-Key", c.cfg.APIKey)
	}
	return c.http.Do(req)
}
