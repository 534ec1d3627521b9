package knowledge

import (
	"strings"

	"github.com/google/uuid"
)

// approxCharsPerToken approximates a token as 4 characters, per spec §3.
const approxCharsPerToken = 4

// maxChunkChars is the soft 512-token chunk cap expressed in characters.
const maxChunkChars = 512 * approxCharsPerToken

// chunkDocument splits a Document into ordered Chunks by a whitespace
// tokenizer with a soft 512-approximate-token cap. A chunk never exceeds
// the cap except when a single word alone would (that word becomes its
// own chunk rather than being split mid-word).
func chunkDocument(doc Document) []Chunk {
	words := strings.Fields(doc.Text)
	if len(words) == 0 {
		return nil
	}

	var texts []string
	var cur []string
	curLen := 0
	for _, w := range words {
		wLen := len(w) + 1 // +1 for the joining space
		if curLen+wLen > maxChunkChars && len(cur) > 0 {
			texts = append(texts, strings.Join(cur, " "))
			cur = cur[:0]
			curLen = 0
		}
		cur = append(cur, w)
		curLen += wLen
	}
	if len(cur) > 0 {
		texts = append(texts, strings.Join(cur, " "))
	}

	chunks := make([]Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, Chunk{
			PointID:    uuid.NewString(),
			DocID:      doc.ID,
			ChunkIndex: i,
			Text:       text,
			Tags:       doc.Tags,
		})
	}
	return chunks
}
