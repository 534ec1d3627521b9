// Package lexical is the in-process BM25 term index used as the sparse
// half of the Knowledge DAO's hybrid retrieval. It is rebuilt wholesale on
// every ingest rather than updated incrementally -- the corpus here is a
// handful of office policy documents, not a web-scale collection, so a
// full rebuild is cheap and removes any risk of the index and the chunk
// store drifting apart.
package lexical

import (
	"math"
	"strings"
	"sync"
)

// BM25 tuning constants fixed by the retrieval spec.
const (
	k1 = 1.2
	b  = 0.75
)

// Doc is one chunk's text as seen by the index. Keeping this a narrow,
// index-local type (rather than importing the knowledge package's Chunk)
// avoids a dependency cycle: knowledge depends on lexical, not vice versa.
type Doc struct {
	ID   string
	Text string
}

// Result is a single scored hit.
type Result struct {
	ID    string
	Score float64
}

type indexedDoc struct {
	id  string
	tf  map[string]int
	len int
}

// Index is an Okapi BM25 index over a fixed set of documents. The zero
// value is a valid, empty index. Safe for concurrent Search calls; Build
// takes an exclusive lock and swaps the index contents atomically.
type Index struct {
	mu     sync.RWMutex
	docs   []indexedDoc
	idf    map[string]float64
	avgLen float64
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{idf: make(map[string]float64)}
}

// Tokenize splits on ASCII whitespace and lowercases. This matches the
// retrieval spec exactly: no stemming, no punctuation stripping.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(f))
	}
	return out
}

// Build replaces the index contents with a fresh index over docs. Any
// document already present is discarded even if its ID repeats; rebuild
// is always a full replace, never a merge.
func (idx *Index) Build(docs []Doc) {
	indexed := make([]indexedDoc, 0, len(docs))
	df := make(map[string]int)
	totalLen := 0

	for _, d := range docs {
		terms := Tokenize(d.Text)
		tf := make(map[string]int)
		for _, term := range terms {
			tf[term]++
		}
		indexed = append(indexed, indexedDoc{id: d.ID, tf: tf, len: len(terms)})
		totalLen += len(terms)
		for term := range tf {
			df[term]++
		}
	}

	n := len(indexed)
	var avgLen float64
	if n > 0 {
		avgLen = float64(totalLen) / float64(n)
	}

	idfs := make(map[string]float64, len(df))
	for term, docFreq := range df {
		idfs[term] = math.Log(float64(n+1)/float64(docFreq+1)) + 1.0
	}

	idx.mu.Lock()
	idx.docs = indexed
	idx.idf = idfs
	idx.avgLen = avgLen
	idx.mu.Unlock()
}

// Search scores every document against query and returns the topN with a
// score strictly greater than zero, highest first. Ties break on ID so
// results are deterministic given an identical index and query.
func (idx *Index) Search(query string, topN int) []Result {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.docs) == 0 {
		return nil
	}
	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	results := make([]Result, 0, len(idx.docs))
	for _, doc := range idx.docs {
		score := idx.score(terms, doc)
		if score > 0 {
			results = append(results, Result{ID: doc.id, Score: score})
		}
	}

	sortResults(results)
	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results
}

func (idx *Index) score(queryTerms []string, doc indexedDoc) float64 {
	dl := float64(doc.len)
	var score float64

	seen := make(map[string]bool, len(queryTerms))
	for _, term := range queryTerms {
		if seen[term] {
			continue
		}
		seen[term] = true

		tf, ok := doc.tf[term]
		if !ok {
			continue
		}
		termIDF, ok := idx.idf[term]
		if !ok {
			continue
		}

		tfFloat := float64(tf)
		numerator := tfFloat * (k1 + 1)
		denominator := tfFloat + k1*(1-b+b*dl/idx.avgLen)
		score += termIDF * (numerator / denominator)
	}
	return score
}

func sortResults(r []Result) {
	// Small N (tens to low hundreds of chunks) -- insertion sort keeps this
	// dependency-free and the tie-break on ID explicit.
	for i := 1; i < len(r); i++ {
		for j := i; j > 0; j-- {
			if less(r[j], r[j-1]) {
				r[j], r[j-1] = r[j-1], r[j]
			} else {
				break
			}
		}
	}
}

func less(a, b Result) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ID < b.ID
}
