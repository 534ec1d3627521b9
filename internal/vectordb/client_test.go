package vectordb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSearchParsesHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/frontdesk_chunks/points/search", r.URL.Path)
		var body searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 8, body.Limit)

		_ = json.NewEncoder(w).Encode(searchResponse{Result: []SearchResult{
			{ID: "pt-1", Score: 0.83, Payload: map[string]interface{}{"doc_id": "pol-1"}},
		}})
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, CollectionName: "frontdesk_chunks"}, nil)
	hits, err := c.Search(context.Background(), []float32{0.1, 0.2, 0.3}, 8, 0.2)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "pt-1", hits[0].ID)
	assert.Equal(t, "pol-1", hits[0].Payload["doc_id"])
}

func TestClientUpsertFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, CollectionName: "frontdesk_chunks"}, nil)
	err := c.Upsert(context.Background(), []Point{{ID: "a", Vector: []float32{0.1}}})
	assert.Error(t, err)
}

func TestClientResetRecreatesCollection(t *testing.T) {
	var sawDelete, sawCreate bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			sawDelete = true
		case http.MethodPut:
			sawCreate = true
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, CollectionName: "frontdesk_chunks", Dim: 512}, nil)
	require.NoError(t, c.Reset(context.Background()))
	assert.True(t, sawDelete)
	assert.True(t, sawCreate)
}
