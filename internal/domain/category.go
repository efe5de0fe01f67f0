package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CategoryCount is one display group's bucket in an aggregation run.
type CategoryCount struct {
	Group string `json:"group"`
	Count int    `json:"count"`
}

// Totals is the overall/serious split for an aggregation run.
type Totals struct {
	Total   int `json:"total"`
	Serious int `json:"serious"`
}

// categorySpec is a display group plus its severity flag.
type categorySpec struct {
	group   string
	serious bool
}

// categoryGroups maps the street-level categories the source publishes to
// coarse display groups. Process-wide constant, never mutated at runtime.
var categoryGroups = map[string]categorySpec{
	"anti-social-behaviour":        {"Anti-Social Behaviour", false},
	"bicycle-theft":                {"Theft", false},
	"burglary":                     {"Burglary", true},
	"criminal-damage-arson":        {"Criminal Damage", false},
	"drugs":                        {"Drugs", false},
	"other-theft":                  {"Theft", false},
	"possession-of-weapons":        {"Weapons", true},
	"public-order":                 {"Public Order", false},
	"robbery":                      {"Robbery", true},
	"shoplifting":                  {"Shoplifting", false},
	"theft-from-the-person":        {"Theft", false},
	"vehicle-crime":                {"Vehicle Crime", false},
	"violent-crime":                {"Violence", true},
	"violence-and-sexual-offences": {"Violence", true},
	"other-crime":                  {"Other", false},
	UnknownCategory:                {"Unknown", false},
}

// seriousGroups is the fallback severity rule: a category outside the
// taxonomy is serious when its derived display name lands in this set.
// Deliberately independent of the mapping table above.
var seriousGroups = map[string]struct{}{
	"Violence": {},
	"Robbery":  {},
	"Burglary": {},
	"Weapons":  {},
}

// DisplayGroup resolves a raw source category to its display group and
// severity. Unmapped categories fall back to a title-cased rendering of the
// raw token, with severity decided by the serious-groups set.
func DisplayGroup(rawCategory string) (string, bool) {
	if spec, ok := categoryGroups[rawCategory]; ok {
		return spec.group, spec.serious
	}
	group := fallbackGroupName(rawCategory)
	return group, IsSeriousGroup(group)
}

// fallbackGroupName turns a raw token like "bogus-made-up" into "Bogus Made Up".
func fallbackGroupName(raw string) string {
	cleaned := strings.NewReplacer("-", " ", "_", " ").Replace(raw)
	return cases.Title(language.BritishEnglish).String(strings.TrimSpace(cleaned))
}

// IsSeriousGroup reports whether a display group is in the fixed serious set.
func IsSeriousGroup(group string) bool {
	_, ok := seriousGroups[group]
	return ok
}

// GroupCounts buckets records by display group, sorted by count descending.
// Ties keep first-seen bucket order (stable sort on count only), so output is
// deterministic for a given record order.
func GroupCounts(incidents []Incident) []CategoryCount {
	index := make(map[string]int)
	counts := make([]CategoryCount, 0)
	for _, inc := range incidents {
		group, _ := DisplayGroup(inc.Category)
		i, ok := index[group]
		if !ok {
			i = len(counts)
			index[group] = i
			counts = append(counts, CategoryCount{Group: group})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// TotalAndSerious derives the overall/serious split for a merged record list.
func TotalAndSerious(incidents []Incident) Totals {
	totals := Totals{Total: len(incidents)}
	for _, inc := range incidents {
		if _, serious := DisplayGroup(inc.Category); serious {
			totals.Serious++
		}
	}
	return totals
}
