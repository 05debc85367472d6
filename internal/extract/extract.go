// Package extract finds place-name candidates in free-text briefs.
//
// Extraction is deliberately conservative: a false positive costs a
// geocoding call and can surface a nonsense draft, while a false negative
// is usually recovered by a redundant mention elsewhere in the brief.
package extract

import (
	"regexp"
	"strings"

	"github.com/levonter/corridor/internal/gazetteer"
)

// prepositions are the locative words that license an ambiguous gazetteer
// match and anchor the capitalized-span scan.
var prepositions = map[string]bool{
	"in": true, "at": true, "near": true, "from": true, "to": true,
	"around": true, "outside": true, "across": true, "struck": true,
}

// adminSuffixes are trailing administrative qualifiers stripped from
// captured spans before lookup ("Duk County" -> "Duk").
var adminSuffixes = map[string]bool{
	"province": true, "county": true, "district": true, "region": true,
	"center": true, "centre": true, "state": true, "payam": true,
	"town": true, "city": true, "village": true, "area": true,
}

// stopwords reject captured spans that are capitalized but not places:
// directional and status adjectives, weekday and month names, and the
// generic nouns that commonly open a sentence after a preposition.
var stopwords = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
	"northern": true, "southern": true, "eastern": true, "western": true,
	"central": true, "upper": true, "lower": true, "new": true, "old": true,
	"the": true, "several": true, "many": true, "all": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
	"river": true, "road": true, "camp": true, "hospital": true,
	"market": true, "airport": true, "base": true, "forces": true,
	"opposition": true, "government": true, "army": true, "un": true,
}

// spanRE captures `<preposition> <Capitalized word sequence of 1-4 tokens>`.
var spanRE = regexp.MustCompile(
	`\b((?i:in|at|near|from|to|around|outside|across|struck))\b[ \t]+` +
		`((?:\p{Lu}[\p{L}'’-]*)(?:[ \t]+\p{Lu}[\p{L}'’-]*){0,3})`)

var clauseBoundaryRE = regexp.MustCompile(`[.;!,\n]`)

// Extractor scans brief text for place-name candidates against a gazetteer.
type Extractor struct {
	gaz      *gazetteer.Table
	patterns []*regexp.Regexp // word-boundary matchers, aligned with gaz.Names()
}

// New compiles a word-boundary matcher per gazetteer entry.
func New(gaz *gazetteer.Table) *Extractor {
	e := &Extractor{gaz: gaz}
	for _, name := range gaz.Names() {
		e.patterns = append(e.patterns,
			regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(name)+`\b`))
	}
	return e
}

// Extract returns the deduplicated place-name candidates found in text.
// Candidates keep the casing of their first occurrence; order follows
// discovery order (gazetteer matches first, then pattern-scanned spans).
func (e *Extractor) Extract(text string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(candidate string) {
		key := gazetteer.Normalize(candidate)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(candidate))
	}

	names := e.gaz.Names()
	for i, re := range e.patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if e.gaz.IsAmbiguous(names[i]) && !precededByPreposition(text, loc[0]) {
				continue
			}
			add(text[loc[0]:loc[1]])
		}
	}

	for _, m := range spanRE.FindAllStringSubmatch(text, -1) {
		span := stripAdminSuffix(m[2])
		if span == "" || stopwords[strings.ToLower(span)] {
			continue
		}
		add(span)
	}
	return out
}

// precededByPreposition reports whether a locative preposition occurs
// between the start of the current clause and the match position.
func precededByPreposition(text string, pos int) bool {
	start := 0
	if idx := clauseBoundaryRE.FindAllStringIndex(text[:pos], -1); len(idx) > 0 {
		start = idx[len(idx)-1][1]
	}
	for _, word := range strings.Fields(text[start:pos]) {
		if prepositions[strings.ToLower(strings.Trim(word, `"'()`))] {
			return true
		}
	}
	return false
}

// stripAdminSuffix drops trailing administrative qualifiers from a span.
// A span made up entirely of qualifiers strips to empty and is rejected.
func stripAdminSuffix(span string) string {
	words := strings.Fields(span)
	for len(words) > 0 && adminSuffixes[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}
