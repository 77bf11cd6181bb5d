// Package filter applies the date, topic, and location filters to a
// deduplicated article list. Filters are AND-composed; substring matching
// is forbidden in favor of Unicode-aware word-boundary matching.
package filter

import (
	"strings"
	"time"
	"unicode"

	"newsnexus/internal/domain/entity"
	"newsnexus/internal/topicdict"
)

// Params controls which filters apply. A zero-value LastNDays of 0 with
// RequireDate false means the date filter is skipped entirely.
type Params struct {
	Now         time.Time
	LastNDays   int
	RequireDate bool // caller specified a date window; articles without a date are dropped
	Topic       string
	Location    string
}

// Apply runs every configured filter over articles, returning only those
// that pass all of them.
func Apply(articles []entity.Article, p Params) []entity.Article {
	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		if !passesDate(a, p) {
			continue
		}
		if !passesTopic(a, p.Topic) {
			continue
		}
		if !passesLocation(a, p.Location) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func passesDate(a entity.Article, p Params) bool {
	if p.LastNDays <= 0 {
		return true
	}
	if !a.HasPublished {
		return !p.RequireDate
	}
	ageDays := int(p.Now.Sub(a.PublishedAt).Hours() / 24)
	return ageDays <= p.LastNDays
}

func passesTopic(a entity.Article, topic string) bool {
	if strings.TrimSpace(topic) == "" {
		return true
	}
	haystack := searchableText(a)
	for _, kw := range topicdict.Lookup(topic) {
		if wordBoundaryMatch(haystack, kw) {
			return true
		}
	}
	return false
}

func passesLocation(a entity.Article, location string) bool {
	if strings.TrimSpace(location) == "" {
		return true
	}
	return wordBoundaryMatch(searchableText(a), strings.ToLower(strings.TrimSpace(location)))
}

// searchableText joins title, summary, and tags with single spaces into one
// lower-cased haystack for keyword matching; whitespace inside the fields
// is left as it is.
func searchableText(a entity.Article) string {
	parts := []string{a.Title, a.Summary}
	parts = append(parts, a.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

// wordBoundaryMatch reports whether keyword occurs in haystack with
// non-letter/digit runes (or string edges) on both sides — i.e. a true
// word or phrase match, never a substring match. This check is
// Unicode-aware: it consults unicode.IsLetter/IsDigit rather than the
// ASCII-only \b boundary regexp provides.
func wordBoundaryMatch(haystack, keyword string) bool {
	if keyword == "" {
		return false
	}
	runes := []rune(haystack)
	kw := []rune(keyword)
	n, m := len(runes), len(kw)
	if m == 0 || m > n {
		return false
	}
	for i := 0; i+m <= n; i++ {
		if !runesEqual(runes[i:i+m], kw) {
			continue
		}
		if i > 0 && isWordRune(runes[i-1]) {
			continue
		}
		if i+m < n && isWordRune(runes[i+m]) {
			continue
		}
		return true
	}
	return false
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
