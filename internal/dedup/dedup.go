// Package dedup removes URL-duplicate and fuzzy-title-duplicate articles
// from a collected list, in two ordered passes over a deterministic sort.
package dedup

import (
	"regexp"
	"sort"
	"strings"

	"newsnexus/internal/domain/entity"
)

// DefaultFuzzyThreshold is the normalized-token Jaccard similarity at or
// above which two titles are considered duplicates.
const DefaultFuzzyThreshold = 0.85

var trailingPunct = regexp.MustCompile(`[\s.,;:!?'"-]+$`)
var whitespace = regexp.MustCompile(`\s+`)

// NormalizeTitle lower-cases, collapses whitespace, and strips trailing
// punctuation from a title for comparison purposes.
func NormalizeTitle(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	t = whitespace.ReplaceAllString(t, " ")
	t = trailingPunct.ReplaceAllString(t, "")
	return t
}

// SortForDedup stable-sorts articles by (published_at desc, source_priority
// asc, url asc), making the "first-seen" order reproducible across
// nondeterministic parallel fetches.
func SortForDedup(articles []entity.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		if a.SourcePriority != b.SourcePriority {
			return a.SourcePriority < b.SourcePriority
		}
		return a.URL < b.URL
	})
}

// Dedup runs the URL-exact pass followed by the title-exact and
// fuzzy-title passes, in that order, preserving first-seen order from the
// deterministic sort callers are expected to have applied via
// SortForDedup.
func Dedup(articles []entity.Article, fuzzyThreshold float64) []entity.Article {
	if fuzzyThreshold <= 0 {
		fuzzyThreshold = DefaultFuzzyThreshold
	}

	byURL := dedupByURL(articles)
	return dedupByTitle(byURL, fuzzyThreshold)
}

func dedupByURL(articles []entity.Article) []entity.Article {
	seen := make(map[string]bool, len(articles))
	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		canon, err := entity.CanonicalizeURL(a.URL)
		if err != nil {
			canon = a.URL
		}
		if seen[canon] {
			continue
		}
		seen[canon] = true
		out = append(out, a)
	}
	return out
}

// acceptedTitle tracks one surviving article alongside the token set used
// to test later candidates for fuzzy similarity.
type acceptedTitle struct {
	article entity.Article
	tokens  map[string]bool
}

func dedupByTitle(articles []entity.Article, fuzzyThreshold float64) []entity.Article {
	exactSeen := make(map[string]int) // normalized title -> index in keep
	var keep []acceptedTitle

	for _, a := range articles {
		norm := NormalizeTitle(a.Title)
		tokens := tokenSet(norm)

		if idx, ok := exactSeen[norm]; ok {
			keep[idx].replaceIfBetter(a)
			continue
		}

		fuzzyIdx := -1
		for i, k := range keep {
			if jaccard(tokens, k.tokens) >= fuzzyThreshold {
				fuzzyIdx = i
				break
			}
		}
		if fuzzyIdx >= 0 {
			keep[fuzzyIdx].replaceIfBetter(a)
			continue
		}

		exactSeen[norm] = len(keep)
		keep = append(keep, acceptedTitle{article: a, tokens: tokens})
	}

	out := make([]entity.Article, len(keep))
	for i, k := range keep {
		out[i] = k.article
	}
	return out
}

// replaceIfBetter retains the earlier article unless the new one carries a
// strictly higher quality score, matching the "retain the earlier one; if
// both have scores, retain the higher score" rule.
func (k *acceptedTitle) replaceIfBetter(candidate entity.Article) {
	if candidate.Scored && k.article.Scored && candidate.QualityScore > k.article.QualityScore {
		k.article = candidate
	}
}

func tokenSet(normalized string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(normalized) {
		tokens[tok] = true
	}
	return tokens
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
