// Package ladder implements §4.F: the priority-tiered fallback ladder that
// drives a single site's sources from tier 1 (official RSS) down to tier 4
// (scraper), escalating only when a tier fails to clear the minimum
// article threshold.
package ladder

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"newsnexus/internal/dedup"
	"newsnexus/internal/domain/entity"
	"newsnexus/internal/fetcher"
	"newsnexus/internal/qualitygate"
)

// MinThreshold is the minimum surviving article count a tier must reach to
// satisfy the ladder without escalating (MIN_ARTICLES_THRESHOLD).
const MinThreshold = 5

// TierDeadline bounds how long a tier's parallel fetches are given before
// their results are abandoned.
const TierDeadline = 10 * time.Second

// MaxTierConcurrency bounds the worker pool fanning out within a tier.
const MaxTierConcurrency = 8

// Outcome classifies how the ladder's overall run for one site ended.
type Outcome string

const (
	// OutcomeSatisfied means some tier reached MinThreshold.
	OutcomeSatisfied Outcome = "satisfied"
	// OutcomeDegraded means no tier reached the threshold but some
	// articles were collected.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeUnavailable means every tier returned nothing.
	OutcomeUnavailable Outcome = "unavailable"
)

// Result is what Run produced for one site.
type Result struct {
	Articles   []entity.Article
	SourceUsed string // e.g. "tier 2 [google_news]"
	Outcome    Outcome
	Message    string // populated on Degraded/Unavailable: tiers tried and counts
}

// Ladder runs the fallback ladder over one site at a time, reusing a
// shared Fetcher for every source it dispatches.
type Ladder struct {
	fetcher *fetcher.Fetcher
}

// New builds a Ladder around the given Fetcher.
func New(f *fetcher.Fetcher) *Ladder {
	return &Ladder{fetcher: f}
}

// BreakerStates reports the shared Fetcher's per-source-type circuit
// breaker states, for health_check.
func (l *Ladder) BreakerStates() map[string]string {
	return l.fetcher.BreakerStates()
}

// Run drives site's sources tier by tier until one satisfies MinThreshold,
// or every tier has been tried. now is the reference time for the quality
// gate's freshness check and is threaded through for deterministic tests.
func (l *Ladder) Run(ctx context.Context, site entity.Site, lastNDays int, now time.Time) Result {
	byTier := site.SourcesByTier()
	tiers := make([]int, 0, len(byTier))
	for t := range byTier {
		tiers = append(tiers, t)
	}
	sort.Ints(tiers)

	var best []entity.Article
	var bestTier int
	var bestTypes []entity.SourceType
	var triedSummary []string

	for _, tier := range tiers {
		sources := byTier[tier]
		collected := l.runTier(ctx, site, sources, lastNDays, now)
		collected = dedupWithinTier(collected)

		types := sourceTypes(sources)
		triedSummary = append(triedSummary, fmt.Sprintf("tier %d [%s]: %d", tier, joinTypes(types), len(collected)))

		if len(collected) > len(best) {
			best = collected
			bestTier = tier
			bestTypes = types
		}
		if len(collected) >= MinThreshold {
			return Result{
				Articles:   collected,
				SourceUsed: fmt.Sprintf("tier %d [%s]", tier, joinTypes(types)),
				Outcome:    OutcomeSatisfied,
			}
		}
	}

	if len(best) == 0 {
		return Result{
			Outcome: OutcomeUnavailable,
			Message: "no tier produced articles: " + strings.Join(triedSummary, "; "),
		}
	}
	return Result{
		Articles:   best,
		SourceUsed: fmt.Sprintf("tier %d [%s]", bestTier, joinTypes(bestTypes)),
		Outcome:    OutcomeDegraded,
		Message:    "no tier reached the minimum threshold: " + strings.Join(triedSummary, "; "),
	}
}

// runTier fetches every source in one tier in parallel, applying the
// quality gate to google_news results, and returns every surviving
// article regardless of which source produced it.
func (l *Ladder) runTier(ctx context.Context, site entity.Site, sources []entity.Source, lastNDays int, now time.Time) []entity.Article {
	tierCtx, cancel := context.WithTimeout(ctx, TierDeadline)
	defer cancel()

	eg, egCtx := errgroup.WithContext(tierCtx)
	eg.SetLimit(MaxTierConcurrency)

	results := make([][]entity.Article, len(sources))
	for i, src := range sources {
		i, src := i, src
		eg.Go(func() error {
			res := l.fetcher.Fetch(egCtx, site, src)
			if res.Outcome != fetcher.OutcomeOK {
				return nil
			}
			articles := res.Articles
			if src.Type == entity.GoogleNews {
				gateResult := qualitygate.Apply(egCtx, l.fetcher.HTTPClient(), articles, lastNDays, now)
				if gateResult.Rejected {
					return nil
				}
				articles = gateResult.Articles
			}
			results[i] = articles
			return nil
		})
	}
	_ = eg.Wait() // per-source errors never abort the tier; nil is always returned

	var all []entity.Article
	for _, r := range results {
		all = append(all, r...)
	}
	return all
}

func dedupWithinTier(articles []entity.Article) []entity.Article {
	sorted := make([]entity.Article, len(articles))
	copy(sorted, articles)
	dedup.SortForDedup(sorted)
	return dedup.Dedup(sorted, dedup.DefaultFuzzyThreshold)
}

func sourceTypes(sources []entity.Source) []entity.SourceType {
	seen := make(map[entity.SourceType]bool)
	var out []entity.SourceType
	for _, s := range sources {
		if !seen[s.Type] {
			seen[s.Type] = true
			out = append(out, s.Type)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func joinTypes(types []entity.SourceType) string {
	strs := make([]string, len(types))
	for i, t := range types {
		strs[i] = string(t)
	}
	return strings.Join(strs, ", ")
}
