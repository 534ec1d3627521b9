package answerextract

import (
	"math"

	"github.com/front-desk-ai/rag-orchestrator/internal/lexical"
)

// Local rescoring weights and the fixed BM25 parameters used for the
// sentence-level lexical component. There is no idf factor here: every
// matched query term weighs the same, so this BM25 variant is a
// normalized term-frequency signal, not a full ranking function. avgLen
// is a fixed assumption
// rather than a corpus statistic, since sentences aren't a stable
// corpus the way chunks are.
const (
	cosineWeight = 0.7
	bm25Weight   = 0.3
	localAvgLen  = 20.0
	localK1      = 1.2
	localB       = 0.75
)

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// bm25Local scores a sentence against a query using the BM25 shape with
// no idf factor (each distinct matched term contributes its saturated tf
// alone) and document length normalized against localAvgLen.
func bm25Local(query, sentence string) float64 {
	qTerms := lexical.Tokenize(query)
	sTerms := lexical.Tokenize(sentence)
	if len(qTerms) == 0 || len(sTerms) == 0 {
		return 0
	}

	tf := make(map[string]int, len(sTerms))
	for _, t := range sTerms {
		tf[t]++
	}
	dl := float64(len(sTerms))

	var score float64
	seen := make(map[string]bool, len(qTerms))
	for _, t := range qTerms {
		if seen[t] {
			continue
		}
		seen[t] = true
		count, ok := tf[t]
		if !ok {
			continue
		}
		f := float64(count)
		numerator := f * (localK1 + 1)
		denominator := f + localK1*(1-localB+localB*dl/localAvgLen)
		score += numerator / denominator
	}
	return score
}

func sentenceScore(queryVec, sentenceVec []float32, query, sentence string) float64 {
	return cosineWeight*cosine(queryVec, sentenceVec) + bm25Weight*bm25Local(query, sentence)
}
