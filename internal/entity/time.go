// Package entity extracts time, person-name, and location mentions from
// free-form scheduling text (§4.4). No natural-language date/time or
// person-tagger library appears anywhere in the example corpus this
// repository was grounded on, so both extractors below are hand-rolled
// against the spec's own rules rather than delegated to a third-party
// parser; see DESIGN.md for the full justification.
package entity

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dayPhraseRe = regexp.MustCompile(`(?i)\b(today|tomorrow)\b`)
	clockHHMMRe = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	clockHourRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(am|pm)\b`)
)

const (
	defaultHour = 9
	defaultMin  = 0
)

// ExtractTime resolves a natural-language time phrase to an absolute
// instant, returned in UTC. now is the server clock the resolution is
// anchored against (§4.4: "ambiguous inputs... resolve against the
// server clock"). Returns false if the text names neither a day nor a
// clock time.
func ExtractTime(text string, now time.Time) (time.Time, bool) {
	dayOffset, haveDay := parseDayPhrase(text)
	hour, minute, haveClock := parseClockTime(text)

	if !haveDay && !haveClock {
		return time.Time{}, false
	}

	if !haveClock {
		hour, minute = defaultHour, defaultMin
	}

	var target time.Time
	if haveDay {
		target = time.Date(now.Year(), now.Month(), now.Day()+dayOffset, hour, minute, 0, 0, now.Location())
	} else {
		// No day phrase, only a clock time ("Make it 11:00"): resolve to
		// the next occurrence of that time -- today if it hasn't passed
		// yet, else tomorrow.
		candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if candidate.Before(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		target = candidate
	}
	return target.UTC(), true
}

func parseDayPhrase(text string) (offset int, ok bool) {
	m := dayPhraseRe.FindString(text)
	switch strings.ToLower(m) {
	case "today":
		return 0, true
	case "tomorrow":
		return 1, true
	default:
		return 0, false
	}
}

func parseClockTime(text string) (hour, minute int, ok bool) {
	if m := clockHHMMRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		h = applyMeridiem(h, m[3])
		return h, min, true
	}
	if m := clockHourRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		h = applyMeridiem(h, m[2])
		return h, 0, true
	}
	return 0, 0, false
}

// applyMeridiem folds an am/pm marker into a 24-hour hour value. An
// hour given without a marker is taken as already in 24-hour form.
func applyMeridiem(hour int, meridiem string) int {
	switch strings.ToLower(meridiem) {
	case "am":
		if hour == 12 {
			return 0
		}
		return hour
	case "pm":
		if hour == 12 {
			return 12
		}
		return hour + 12
	default:
		return hour
	}
}
