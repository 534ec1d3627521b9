package entity

import "strings"

// knownLocations is the ordered list from §4.4; the first substring
// match wins, and an unmatched message defaults to Midtown.
var knownLocations = []string{
	"midtown", "uptown", "downtown", "brooklyn", "queens", "bronx", "manhattan",
}

var displayName = map[string]string{
	"midtown":   "Midtown",
	"uptown":    "Uptown",
	"downtown":  "Downtown",
	"brooklyn":  "Brooklyn",
	"queens":    "Queens",
	"bronx":     "Bronx",
	"manhattan": "Manhattan",
}

// ExtractLocation returns the first known location substring found in
// text (case-insensitive), or "Midtown" if none matches.
func ExtractLocation(text string) string {
	lower := strings.ToLower(text)
	for _, loc := range knownLocations {
		if strings.Contains(lower, loc) {
			return displayName[loc]
		}
	}
	return "Midtown"
}
