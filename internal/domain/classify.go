package domain

import (
	"regexp"
	"strings"
)

// Classification is the result of scanning one sentence-like segment.
type Classification struct {
	Category Category
	Severity Severity
	Date     string // ISO date token found in the segment, empty if none
}

// keywordRule pairs a label with the substrings that select it. Rules are
// evaluated in slice order and the first match wins, so the ordering below
// is part of the contract: more specific hazards come before generic ones.
type keywordRule[T ~string] struct {
	label    T
	keywords []string
}

var categoryRules = []keywordRule[Category]{
	{CategoryBombardment, []string{"bombard", "shelling", "airstrike", "air strike", "artillery", "missile", "rocket", "explosion", "blast"}},
	{CategoryLooting, []string{"loot", "pillag", "ransack", "stolen", "theft"}},
	{CategoryAccessDenial, []string{"access denied", "denied access", "checkpoint", "roadblock", "road block", "convoy stopped", "refused passage", "blocked"}},
	{CategoryControlChange, []string{"captured", "recaptured", "seized", "took control", "changed hands", "fell to"}},
	{CategoryHealth, []string{"cholera", "measles", "outbreak", "epidemic", "disease", "malnutrition", "clinic", "hospital"}},
	{CategoryDisplacement, []string{"displaced", "fled", "evacuat", "refugee", "idp"}},
	{CategoryFlood, []string{"flood", "inundat", "river burst", "washed away"}},
	{CategoryEarthquake, []string{"earthquake", "quake", "tremor", "aftershock", "seismic"}},
}

var severityRules = []keywordRule[Severity]{
	{SeverityCritical, []string{"massacre", "mass casualt", "catastrophic", "critical"}},
	{SeverityHigh, []string{"heavy", "killed", "dead", "fatal", "severe", "outbreak", "major", "wounded"}},
	{SeverityMedium, []string{"moderate", "sporadic", "intermittent", "damage"}},
	{SeverityLow, []string{"minor", "isolated", "calm", "quiet"}},
}

var isoDateRE = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)

func matchFirst[T ~string](rules []keywordRule[T], lower string, fallback T) T {
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.label
			}
		}
	}
	return fallback
}

// Classify assigns a category, severity, and optional ISO date to a text
// segment. Matching is case-insensitive substring search; defaults are
// displacement (the most generic humanitarian category) and medium.
func Classify(segment string) Classification {
	lower := strings.ToLower(segment)
	return Classification{
		Category: matchFirst(categoryRules, lower, CategoryDisplacement),
		Severity: matchFirst(severityRules, lower, SeverityMedium),
		Date:     isoDateRE.FindString(segment),
	}
}
