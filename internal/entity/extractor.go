package entity

import "time"

// Entities bundles the three independent extraction results for one
// message. Each field is the zero value when not found; callers check
// presence via the accompanying bool return of the single-field
// extractors, or IsZero() for Time.
type Entities struct {
	Time     time.Time
	HasTime  bool
	Name     string
	HasName  bool
	Location string
}

// Extractor runs all three extractors against a fixed clock and
// optional NLP tagger.
type Extractor struct {
	Clock  func() time.Time
	Tagger Tagger
}

func NewExtractor() *Extractor {
	return &Extractor{Clock: time.Now}
}

func (e *Extractor) Extract(text string) Entities {
	now := time.Now()
	if e.Clock != nil {
		now = e.Clock()
	}
	t, hasTime := ExtractTime(text, now)
	name, hasName := ExtractName(text, e.Tagger)
	return Entities{
		Time:     t,
		HasTime:  hasTime,
		Name:     name,
		HasName:  hasName,
		Location: ExtractLocation(text),
	}
}
