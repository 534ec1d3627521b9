package knowledge

import "github.com/front-desk-ai/rag-orchestrator/internal/lexical"

// mmrLambda balances relevance against diversity in selectMMR.
const mmrLambda = 0.5

// selectMMR greedily picks up to k hits from candidates (the top-8 fused
// results) maximizing λ·rel(c) − (1−λ)·maxₛ sim(c, s) over already-chosen
// s, seeded with the single most relevant candidate. sim is Jaccard
// similarity over lowercased whitespace-tokenized word sets.
func selectMMR(candidates []Hit, k int) []Hit {
	if len(candidates) == 0 || k <= 0 {
		return nil
	}

	tokens := make([][]string, len(candidates))
	for i, c := range candidates {
		tokens[i] = lexical.Tokenize(c.Chunk.Text)
	}

	selected := []int{0}
	for len(selected) < k && len(selected) < len(candidates) {
		best := -1
		var bestScore float64
		for i := range candidates {
			if contains(selected, i) {
				continue
			}
			maxSim := 0.0
			for _, s := range selected {
				sim := jaccard(tokens[i], tokens[s])
				if sim > maxSim {
					maxSim = sim
				}
			}
			score := mmrLambda*candidates[i].Score - (1-mmrLambda)*maxSim
			if best == -1 || score > bestScore {
				best = i
				bestScore = score
			}
		}
		selected = append(selected, best)
	}

	out := make([]Hit, 0, len(selected))
	for _, i := range selected {
		out = append(out, candidates[i])
	}
	return out
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// jaccard computes set similarity over two word-token slices.
//
// Example: jaccard(["a","b"], ["b","c"]) => 1/3
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	setA := make(map[string]bool, len(a))
	for _, w := range a {
		setA[w] = true
	}
	setB := make(map[string]bool, len(b))
	for _, w := range b {
		setB[w] = true
	}

	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
