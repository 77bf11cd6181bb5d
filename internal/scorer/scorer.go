// Package scorer computes the 0-100 quality score used to rank and filter
// articles: informativeness, source rank, keyword richness, recency, and a
// flat penalty for low-quality phrasing patterns.
package scorer

import (
	"regexp"
	"strings"
	"time"

	"newsnexus/internal/domain/entity"
)

// DefaultMinQualityScore is the score below which the filter drops an
// article when quality filtering is enabled.
const DefaultMinQualityScore = 35.0

const informativenessCap = 600.0

var numericToken = regexp.MustCompile(`\$?\d+(\.\d+)?[%BMK]?`)

var keywordDictionaries = [][]string{
	{"ai", "artificial intelligence", "machine learning", "model", "algorithm"},
	{"tech", "technology", "software", "platform", "device"},
	{"business", "market", "revenue", "investment", "industry"},
}

var lowQualityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(optimistic|pessimistic)\s+about\b`),
	regexp.MustCompile(`(?i)\beyes\s+(on|for)\b`),
	regexp.MustCompile(`(?i)\b(may|could|might)\s+be\b`),
	regexp.MustCompile(`(?i)\byou\s+won'?t\s+believe\b`),
	regexp.MustCompile(`(?i)\bthis\s+one\s+(trick|weird\s+trick)\b`),
}

// Score computes the article's quality score and returns it clamped to
// [0,100]. It does not mutate the article.
func Score(a entity.Article, now time.Time) float64 {
	score := informativeness(a) + sourceRank(a.SourcePriority) + keywordRichness(a) + recency(a, now)
	if hasLowQualityPattern(a) {
		score -= 15
	}
	return clamp(score, 0, 100)
}

// ScoreAll scores every article in place.
func ScoreAll(articles []entity.Article, now time.Time) {
	for i := range articles {
		articles[i].QualityScore = Score(articles[i], now)
		articles[i].Scored = true
	}
}

func informativeness(a entity.Article) float64 {
	length := float64(len([]rune(a.Summary)))
	points := (length / informativenessCap) * 40
	if points > 40 {
		points = 40
	}
	bonus := 0.0
	if numericToken.MatchString(a.Summary) {
		bonus = 10
	}
	total := points + bonus
	if total > 40 {
		total = 40
	}
	return total
}

func sourceRank(priority int) float64 {
	switch {
	case priority >= 1 && priority <= 3:
		return 20
	case priority >= 4 && priority <= 6:
		return 15
	case priority >= 7 && priority <= 9:
		return 10
	case priority >= 10 && priority <= 12:
		return 5
	default:
		return 0
	}
}

func keywordRichness(a entity.Article) float64 {
	haystack := strings.ToLower(a.Title + " " + a.Summary)
	matches := 0
	for _, dict := range keywordDictionaries {
		for _, kw := range dict {
			if strings.Contains(haystack, kw) {
				matches++
				break
			}
		}
	}
	switch {
	case matches >= 3:
		return 30
	case matches == 2:
		return 20
	case matches == 1:
		return 10
	default:
		return 0
	}
}

func recency(a entity.Article, now time.Time) float64 {
	if !a.HasPublished {
		return 0
	}
	age := now.Sub(a.PublishedAt)
	switch {
	case age < 6*time.Hour:
		return 10
	case age < 24*time.Hour:
		return 7
	case age < 48*time.Hour:
		return 5
	case age < 72*time.Hour:
		return 3
	default:
		return 0
	}
}

func hasLowQualityPattern(a entity.Article) bool {
	text := a.Title + " " + a.Summary
	for _, pat := range lowQualityPatterns {
		if pat.MatchString(text) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
