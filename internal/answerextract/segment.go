// Package answerextract rescoring takes the top-1 retrieved chunk and
// picks the single best-matching sentence for a query, rather than
// returning the whole chunk verbatim.
package answerextract

import (
	"regexp"
	"strings"
)

var (
	bannerRe       = regexp.MustCompile(`===[^=]+===`)
	sentenceBreak  = regexp.MustCompile(`[.!?]\s+[A-Z]`)
	fallbackPeriod = ". "
)

const (
	minSentenceChars = 10
	maxSentenceChars = 500
	longSentenceCut  = 200
)

// segmentSentences implements §4.2 step 1. Order is preserved; later
// duplicates of an already-seen sentence (after trimming) are dropped.
func segmentSentences(text string) []string {
	text = bannerRe.ReplaceAllString(text, " ")

	var raw []string
	for _, line := range strings.Split(text, "\n\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		raw = append(raw, splitOnSentenceBoundary(line)...)
	}

	var expanded []string
	for _, s := range raw {
		if len(s) > longSentenceCut || !endsWithTerminator(s) {
			expanded = append(expanded, splitAndReterminate(s)...)
		} else {
			expanded = append(expanded, s)
		}
	}

	seen := make(map[string]bool, len(expanded))
	out := make([]string, 0, len(expanded))
	for _, s := range expanded {
		s = strings.TrimSpace(s)
		if len(s) <= minSentenceChars {
			continue
		}
		if len(s) > maxSentenceChars {
			continue
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// splitOnSentenceBoundary splits line on [.!?] followed by whitespace
// followed by a capital letter, keeping the terminator with the left
// sentence and the capital letter with the right one.
func splitOnSentenceBoundary(line string) []string {
	locs := sentenceBreak.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return []string{line}
	}

	var parts []string
	start := 0
	for _, loc := range locs {
		// loc covers "X  C" where X is the terminator and C the capital
		// letter; the split point is right after the terminator char.
		splitAt := loc[0] + 1
		parts = append(parts, line[start:splitAt])
		start = splitAt
	}
	parts = append(parts, line[start:])
	return parts
}

func endsWithTerminator(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

// splitAndReterminate re-splits an over-long or unterminated fragment on
// ". " and re-appends a period to every resulting piece.
func splitAndReterminate(s string) []string {
	pieces := strings.Split(s, fallbackPeriod)
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !endsWithTerminator(p) {
			p += "."
		}
		out = append(out, p)
	}
	return out
}
