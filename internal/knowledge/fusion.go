package knowledge

import "sort"

// rrfK is the Reciprocal Rank Fusion rank-smoothing constant.
const rrfK = 60

// sourceRanks holds, for one candidate chunk, its 0-based rank within
// each retrieval source that returned it. A rank of -1 means the
// candidate was absent from that source.
type sourceRanks struct {
	pointID    string
	lexicalIdx int
	denseIdx   int
}

// fuseRRF combines lexical and dense rankings with Reciprocal Rank
// Fusion: score(c) = Σ 1/(k + rank_s(c) + 1) over sources s where c
// appeared. Ties break first by lexical rank (candidates absent from
// the lexical list sort after those present), then by point_id.
func fuseRRF(lexical []lexicalHit, dense []denseHit) []Hit {
	ranks := make(map[string]*sourceRanks)
	order := make([]string, 0, len(lexical)+len(dense))

	for i, h := range lexical {
		r, ok := ranks[h.chunk.PointID]
		if !ok {
			r = &sourceRanks{pointID: h.chunk.PointID, lexicalIdx: -1, denseIdx: -1}
			ranks[h.chunk.PointID] = r
			order = append(order, h.chunk.PointID)
		}
		r.lexicalIdx = i
	}
	for i, h := range dense {
		r, ok := ranks[h.chunk.PointID]
		if !ok {
			r = &sourceRanks{pointID: h.chunk.PointID, lexicalIdx: -1, denseIdx: -1}
			ranks[h.chunk.PointID] = r
			order = append(order, h.chunk.PointID)
		}
		r.denseIdx = i
	}

	chunkByID := make(map[string]Chunk, len(order))
	for _, h := range lexical {
		chunkByID[h.chunk.PointID] = h.chunk
	}
	for _, h := range dense {
		chunkByID[h.chunk.PointID] = h.chunk
	}

	fused := make([]Hit, 0, len(order))
	for _, id := range order {
		r := ranks[id]
		var score float64
		if r.lexicalIdx >= 0 {
			score += 1.0 / float64(rrfK+r.lexicalIdx+1)
		}
		if r.denseIdx >= 0 {
			score += 1.0 / float64(rrfK+r.denseIdx+1)
		}
		fused = append(fused, Hit{Chunk: chunkByID[id], Score: score})
	}

	sort.SliceStable(fused, func(i, j int) bool {
		a, b := fused[i], fused[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		ra, rb := ranks[a.Chunk.PointID], ranks[b.Chunk.PointID]
		la, lb := lexicalSortRank(ra.lexicalIdx), lexicalSortRank(rb.lexicalIdx)
		if la != lb {
			return la < lb
		}
		return a.Chunk.PointID < b.Chunk.PointID
	})

	return fused
}

// lexicalSortRank maps "absent from lexical source" (-1) to a value that
// sorts after every real rank, per the tie-break rule in §4.1 step 3.
func lexicalSortRank(idx int) int {
	if idx < 0 {
		return int(^uint(0) >> 1) // max int
	}
	return idx
}

type lexicalHit struct {
	chunk Chunk
}

type denseHit struct {
	chunk Chunk
}
