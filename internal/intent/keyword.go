package intent

import "strings"

// scheduleKeywords and knowledgeKeywords are the exact keyword sets
// from §4.3. Order doesn't matter for matching, but is kept stable here
// for readability.
var scheduleKeywords = []string{
	"book", "schedule", "appointment", "reschedule", "change", "move",
	"make it", "change to", "rebook", "slot",
}

var knowledgeKeywords = []string{
	"what", "where", "how", "when", "why", "tell me", "policy", "parking",
	"hours", "insurance", "prepare", "bring", "access", "grace", "late",
	"cancellation", "location", "office",
}

// KeywordBackend is the fallback Backend used when the trained
// classifier is unavailable. Unlike the trained backend, an unmatched
// message leaves both labels false (unclear) -- there is no top-1
// forcing here, since there's no ranked score to take a top of.
type KeywordBackend struct{}

func NewKeywordBackend() *KeywordBackend { return &KeywordBackend{} }

func (KeywordBackend) Predict(message string) Vector {
	lower := strings.ToLower(message)

	schedule := containsAny(lower, scheduleKeywords)
	knowledge := !schedule && containsAny(lower, knowledgeKeywords)

	return Vector{Schedule: schedule, Knowledge: knowledge}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
