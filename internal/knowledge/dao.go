package knowledge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/front-desk-ai/rag-orchestrator/internal/embeddings"
	"github.com/front-desk-ai/rag-orchestrator/internal/kvstore"
	"github.com/front-desk-ai/rag-orchestrator/internal/lexical"
	"github.com/front-desk-ai/rag-orchestrator/internal/vectordb"
)

const (
	retrievalN  = 8
	denseCutoff = 0.2
	queryTTL    = 30 * time.Second
)

// DAO is the Knowledge DAO: it owns the lexical index and the in-memory
// chunk registry, and drives the vector index, embedding service, and
// KV cache to answer search and ingest requests.
//
// Ingest holds an exclusive lock for the duration of the rebuild; search
// holds a shared lock. This is the single-writer/many-reader discipline
// §5 requires so retrieval never observes a half-rebuilt lexical index.
type DAO struct {
	mu sync.RWMutex

	lexical    *lexical.Index
	vector     vectordb.Index
	embed      *embeddings.Service
	kv         kvstore.Store
	chunkStore map[string]Chunk
	logger     *zap.Logger
}

func NewDAO(vector vectordb.Index, embed *embeddings.Service, kv kvstore.Store, logger *zap.Logger) *DAO {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DAO{
		lexical:    lexical.NewIndex(),
		vector:     vector,
		embed:      embed,
		kv:         kv,
		chunkStore: make(map[string]Chunk),
		logger:     logger,
	}
}

// Upsert chunks and ingests documents, returning the total chunk count
// written. Per §4.7 this is not transactional across the lexical index
// and vector DB: a failure partway through leaves them inconsistent and
// the caller must retry or call Reset.
func (d *DAO) Upsert(ctx context.Context, docs []Document) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lexical.Build(nil)
	d.chunkStore = make(map[string]Chunk)

	total := 0
	for _, doc := range docs {
		chunks := chunkDocument(doc)
		if len(chunks) == 0 {
			continue
		}

		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		vecs, errs := d.embed.EmbedBatch(ctx, texts)
		for _, e := range errs {
			if e != nil {
				return total, e
			}
		}

		points := make([]vectordb.Point, len(chunks))
		for i, c := range chunks {
			points[i] = vectordb.Point{
				ID:     c.PointID,
				Vector: vecs[i],
				Payload: map[string]interface{}{
					"text":        c.Text,
					"doc_id":      c.DocID,
					"chunk_index": c.ChunkIndex,
					"tags":        c.Tags,
				},
			}
		}
		if err := d.vector.Upsert(ctx, points); err != nil {
			return total, err
		}

		for _, c := range chunks {
			d.chunkStore[c.PointID] = c
		}
		total += len(chunks)
	}

	lexDocs := make([]lexical.Doc, 0, len(d.chunkStore))
	for id, c := range d.chunkStore {
		lexDocs = append(lexDocs, lexical.Doc{ID: id, Text: c.Text})
	}
	d.lexical.Build(lexDocs)

	return total, nil
}

// Reset drops and recreates the vector collection and clears the
// lexical index. Per §9's open question, caches are left to expire
// naturally rather than being explicitly invalidated here -- the same
// choice already made at the vector index layer (vectordb.Client.Reset).
func (d *DAO) Reset(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.vector.Reset(ctx); err != nil {
		return err
	}
	d.lexical.Build(nil)
	d.chunkStore = make(map[string]Chunk)
	return nil
}

// Search runs the hybrid retrieval pipeline (§4.1) and returns up to k
// ranked hits, populating the query cache best-effort.
func (d *DAO) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	key := queryCacheKey(query)
	if raw, ok := d.kv.Get(ctx, key); ok {
		var cached []Hit
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	var wg sync.WaitGroup
	var lexResults []lexical.Result
	var denseResults []vectordb.SearchResult
	var denseErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		lexResults = d.lexical.Search(query, retrievalN)
	}()
	go func() {
		defer wg.Done()
		vec, err := d.embed.Embed(ctx, query)
		if err != nil {
			d.logger.Debug("query embedding failed, dense branch degraded", zap.Error(err))
			denseErr = err
			return
		}
		hits, err := d.vector.Search(ctx, vec, retrievalN, denseCutoff)
		if err != nil {
			d.logger.Debug("vector index search failed, dense branch degraded", zap.Error(err))
			denseErr = err
			return
		}
		denseResults = hits
	}()
	wg.Wait()
	_ = denseErr

	lexHits := make([]lexicalHit, 0, len(lexResults))
	for _, r := range lexResults {
		if c, ok := d.chunkStore[r.ID]; ok {
			lexHits = append(lexHits, lexicalHit{chunk: c})
		}
	}
	denseHits := make([]denseHit, 0, len(denseResults))
	for _, r := range denseResults {
		if c, ok := d.chunkStore[r.ID]; ok {
			denseHits = append(denseHits, denseHit{chunk: c})
		}
	}

	fused := fuseRRF(lexHits, denseHits)
	if len(fused) > retrievalN {
		fused = fused[:retrievalN]
	}

	selected := selectMMR(fused, k)

	d.cacheStoreAsync(key, selected)
	return selected, nil
}

func (d *DAO) cacheStoreAsync(key string, hits []Hit) {
	buf, err := json.Marshal(hits)
	if err != nil {
		return
	}
	d.kv.SetAsync(key, buf, queryTTL)
}

// queryCacheKey derives the query: namespace key. Unlike emb: and
// knowledge:, this namespace is NOT truncated at 100 chars per §4.6.
func queryCacheKey(query string) string {
	return "query:" + base64.StdEncoding.EncodeToString([]byte(query))
}
