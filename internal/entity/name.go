package entity

import (
	"regexp"
	"strings"
)

// structuralWords are verbs the scheduling grammar itself uses, never
// patient names. Pattern 3 below (capitalized word immediately followed
// by "for") otherwise self-matches on "Book for tomorrow" -- the
// command verb "Book" sits exactly where a name would -- which would
// wrongly extract a name where §8 scenario 6 expects none.
var structuralWords = map[string]bool{"book": true, "schedule": true}

// nameRegexes are tried in order per §4.4; the first match wins. Only
// the first pattern is case-insensitive on its keyword (book/schedule)
// per the spec; the captured name itself still requires a capital
// first letter in all three, since [A-Z] is unaffected by the (?i) on
// Go's RE2 engine only when scoped -- here we scope (?i) to the keyword
// alternation alone so the capture group stays case-sensitive.
var nameRegexes = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:(?i:book|schedule))\s+([A-Z][a-z]+)\b`),
	regexp.MustCompile(`\b(?:for|patient)\s+([A-Z][a-z]+)\b`),
	regexp.MustCompile(`\b([A-Z][a-z]+)\s+(?:tomorrow|today|next|at|for)\b`),
}

// Tagger is the capability interface an NLP person-tagger backend would
// implement, left pluggable per §4.4's "first try an English NLP
// tagger's person detection". No such tagger exists in this
// repository's dependency set; NewExtractor wires no Tagger by default,
// so ExtractName always falls through to the regex chain.
type Tagger interface {
	Person(text string) (string, bool)
}

// ExtractName finds a person name, preferring tagger over the regex
// chain when a tagger is supplied.
func ExtractName(text string, tagger Tagger) (string, bool) {
	if tagger != nil {
		if name, ok := tagger.Person(text); ok {
			return name, true
		}
	}
	for _, re := range nameRegexes {
		if m := re.FindStringSubmatch(text); m != nil && !structuralWords[strings.ToLower(m[1])] {
			return m[1], true
		}
	}
	return "", false
}
