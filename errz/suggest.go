package errz

import (
	"sort"
	"strings"
)

const (
	maxSuggestions = 3
	maxDistance    = 3
)

// Suggest returns up to three candidates close to target by edit
// distance, closest first. Short names tolerate fewer edits.
func Suggest(target string, candidates []string) []string {
	if target == "" {
		return nil
	}
	limit := maxDistance
	switch n := len([]rune(target)); {
	case n <= 3:
		limit = 1
	case n <= 5:
		limit = 2
	}
	type match struct {
		name string
		dist int
	}
	lower := strings.ToLower(target)
	var matches []match
	for _, c := range candidates {
		if c == "" || c == target {
			continue
		}
		if d := editDistance(lower, strings.ToLower(c)); d <= limit {
			matches = append(matches, match{c, d})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}

// FormatSuggestions renders names as a "did you mean" hint, or "" when
// there are none.
func FormatSuggestions(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return "did you mean '" + names[0] + "'?"
	default:
		return "did you mean one of '" + strings.Join(names, "', '") + "'?"
	}
}

// editDistance is the Levenshtein distance over runes.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
}
