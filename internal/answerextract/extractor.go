package answerextract

import (
	"context"

	"github.com/front-desk-ai/rag-orchestrator/internal/embeddings"
)

// Extractor picks the single best sentence from a chunk for a query.
type Extractor struct {
	embed *embeddings.Service
}

func NewExtractor(embed *embeddings.Service) *Extractor {
	return &Extractor{embed: embed}
}

// Extract implements §4.2. Segmentation failures degrade gracefully:
// zero valid sentences returns chunkText unchanged, and a single valid
// sentence is returned directly without spending an embedding call on
// scoring a field of one. A failed embedding call for any one sentence
// (or the query) degrades that sentence's cosine term to 0 rather than
// aborting the whole extraction -- the bm25_local term still ranks it.
func (e *Extractor) Extract(ctx context.Context, query, chunkText string) (string, error) {
	sentences := segmentSentences(chunkText)
	if len(sentences) == 0 {
		return chunkText, nil
	}
	if len(sentences) == 1 {
		return sentences[0], nil
	}

	batch := make([]string, 0, len(sentences)+1)
	batch = append(batch, query)
	batch = append(batch, sentences...)
	vecs, _ := e.embed.EmbedBatch(ctx, batch)
	queryVec := vecs[0]

	best := 0
	bestScore := -1.0
	for i, s := range sentences {
		score := sentenceScore(queryVec, vecs[i+1], query, s)
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return sentences[best], nil
}
