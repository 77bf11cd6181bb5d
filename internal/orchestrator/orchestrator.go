// Package orchestrator implements the single-domain aggregation flow and
// the top-news fan-out (§4.K) on top of the fallback ladder, filter,
// dedup, scorer, and diversity packages.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"newsnexus/internal/apperr"
	"newsnexus/internal/dedup"
	"newsnexus/internal/diversity"
	"newsnexus/internal/domain/entity"
	"newsnexus/internal/domainmatch"
	"newsnexus/internal/filter"
	"newsnexus/internal/ladder"
	"newsnexus/internal/scorer"
)

// TopNewsSiteLimit caps how many prioritized sites feed the default
// top-news selection (TOP_NEWS_SITE_LIMIT).
const TopNewsSiteLimit = 12

// DeepSearchSupplement is how many additional next-priority sites the
// deep-search extension pulls in when the first pass underfills count.
const DeepSearchSupplement = 8

// MaxSiteConcurrency bounds the top-news per-site fan-out worker pool.
const MaxSiteConcurrency = 8

// SiteDeadline bounds a single site's ladder run within the fan-out.
const SiteDeadline = 10 * time.Second

// Orchestrator drives both the single-domain and top-news flows; it wraps
// a Ladder and holds the full site configuration for deep-search and
// priority selection.
type Orchestrator struct {
	ladder *ladder.Ladder
	sites  []entity.Site
}

// New builds an Orchestrator over the given Ladder and site configuration.
func New(l *ladder.Ladder, sites []entity.Site) *Orchestrator {
	return &Orchestrator{ladder: l, sites: sites}
}

// BreakerStates reports the underlying Fetcher's per-source-type circuit
// breaker states, for health_check.
func (o *Orchestrator) BreakerStates() map[string]string {
	return o.ladder.BreakerStates()
}

// ArticlesResult is what a single-domain aggregation run produced.
type ArticlesResult struct {
	Articles   []entity.Article
	SourceUsed string
	Message    string
	Degraded   bool
}

// Params controls a single-domain or top-news run's filters.
type Params struct {
	Topic       string
	Location    string
	LastNDays   int
	RequireDate bool // caller explicitly specified a date window; undated articles are dropped
	Count       int
	Now         time.Time
}

// siteByDomain finds the configured Site with an exact canonical domain
// match, or false if none is configured.
func (o *Orchestrator) siteByDomain(domain string) (entity.Site, bool) {
	for _, s := range o.sites {
		if s.Domain == domain {
			return s, true
		}
	}
	return entity.Site{}, false
}

// GetArticles runs the single-domain flow: F (ladder) -> H (filter) -> G
// (dedup) -> I (score) -> sort -> cap, per §2's control-flow summary.
func (o *Orchestrator) GetArticles(ctx context.Context, domain string, p Params) (ArticlesResult, error) {
	site, ok := o.siteByDomain(domain)
	if !ok {
		return ArticlesResult{}, apperr.New(apperr.NoMatch, fmt.Sprintf("no configured site for domain %q", domain))
	}

	ladderResult := o.ladder.Run(ctx, site, p.LastNDays, p.Now)
	if ladderResult.Outcome == ladder.OutcomeUnavailable {
		msg := ladderResult.Message
		if msg == "" {
			msg = "every tier failed to produce articles"
		}
		return ArticlesResult{SourceUsed: ladderResult.SourceUsed, Message: msg}, apperr.New(apperr.UpstreamUnavailable, msg)
	}

	articles := finishPipeline(ladderResult.Articles, p)

	return ArticlesResult{
		Articles:   capArticles(articles, p.Count),
		SourceUsed: ladderResult.SourceUsed,
		Message:    ladderResult.Message,
		Degraded:   ladderResult.Outcome == ladder.OutcomeDegraded,
	}, nil
}

// finishPipeline applies H, G, I and the final sort, matching the
// control-flow order stated in §2 (filter before the final dedup/score
// pass; the ladder already deduped within each tier to measure threshold
// correctly).
func finishPipeline(articles []entity.Article, p Params) []entity.Article {
	filtered := filter.Apply(articles, filter.Params{
		Now:         p.Now,
		LastNDays:   p.LastNDays,
		RequireDate: p.RequireDate,
		Topic:       p.Topic,
		Location:    p.Location,
	})

	sorted := make([]entity.Article, len(filtered))
	copy(sorted, filtered)
	dedup.SortForDedup(sorted)
	deduped := dedup.Dedup(sorted, dedup.DefaultFuzzyThreshold)

	scorer.ScoreAll(deduped, p.Now)
	sortByPublishedDesc(deduped)
	return deduped
}

// sortByPublishedDesc orders by published_at desc, tie-broken by quality
// score desc then URL asc, per §8 property 3.
func sortByPublishedDesc(articles []entity.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		if a.QualityScore != b.QualityScore {
			return a.QualityScore > b.QualityScore
		}
		return a.URL < b.URL
	})
}

func capArticles(articles []entity.Article, count int) []entity.Article {
	if count <= 0 || len(articles) <= count {
		return articles
	}
	return articles[:count]
}

// TopNewsParams extends Params with the top-news-only inputs.
type TopNewsParams struct {
	Params
	Domains             []string
	MinQualityScore     float64
	EnableQualityFilter bool
}

// TopNewsResult is what a top-news fan-out run produced.
type TopNewsResult struct {
	Articles      []entity.Article
	SourcesUsed   []string
	TotalArticles int
	FilteredOut   int
}

// TopNews implements §4.K: resolve sites, fan the ladder out across them
// in parallel, merge, filter, score, diversify, and cap.
func (o *Orchestrator) TopNews(ctx context.Context, p TopNewsParams) (TopNewsResult, []string, error) {
	var sites []entity.Site
	var unmatched []string
	deepSearchEligible := len(p.Domains) == 0

	if len(p.Domains) > 0 {
		matches, um := domainmatch.Resolve(p.Domains, o.sites)
		unmatched = um
		if len(matches) == 0 {
			return TopNewsResult{}, unmatched, apperr.New(apperr.NoMatch, fmt.Sprintf("no configured site matched tokens: %v", unmatched))
		}
		for _, m := range matches {
			sites = append(sites, m.Site)
		}
	} else {
		sites = topPrioritySites(o.sites, TopNewsSiteLimit)
	}

	articles, sourcesUsed := o.runSitesInParallel(ctx, sites, p.Params)

	result := o.combineTopNews(articles, p)

	if deepSearchEligible && len(result.Articles) < p.Count {
		supplement := nextPrioritySites(o.sites, sites, DeepSearchSupplement)
		if len(supplement) > 0 {
			moreArticles, moreSources := o.runSitesInParallel(ctx, supplement, p.Params)
			articles = append(articles, moreArticles...)
			sourcesUsed = append(sourcesUsed, moreSources...)
			result = o.combineTopNews(articles, p)
		}
	}

	result.SourcesUsed = sourcesUsed
	return result, unmatched, nil
}

// runSitesInParallel drives the ladder over every site concurrently
// (worker pool <=8, per-site deadline 10s) and returns the concatenation
// of every site's surviving articles plus each site's sourceUsed note.
func (o *Orchestrator) runSitesInParallel(ctx context.Context, sites []entity.Site, p Params) ([]entity.Article, []string) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(MaxSiteConcurrency)

	articlesPerSite := make([][]entity.Article, len(sites))
	sourcesPerSite := make([]string, len(sites))

	for i, site := range sites {
		i, site := i, site
		eg.Go(func() error {
			siteCtx, cancel := context.WithTimeout(egCtx, SiteDeadline)
			defer cancel()
			res := o.ladder.Run(siteCtx, site, p.LastNDays, p.Now)
			for j := range res.Articles {
				if res.Articles[j].SourceDomain == "" {
					res.Articles[j].SourceDomain = site.Domain
				}
			}
			articlesPerSite[i] = res.Articles
			sourcesPerSite[i] = fmt.Sprintf("%s: %s", site.Domain, res.SourceUsed)
			return nil
		})
	}
	_ = eg.Wait()

	var all []entity.Article
	var sources []string
	for i := range sites {
		all = append(all, articlesPerSite[i]...)
		if sourcesPerSite[i] != "" {
			sources = append(sources, sourcesPerSite[i])
		}
	}
	return all, sources
}

// combineTopNews implements step 4-5 of §4.K: dedup, filter, score, sort,
// optionally apply quality-score filtering, diversify across domains when
// ≥2 are present, then cap to count.
func (o *Orchestrator) combineTopNews(articles []entity.Article, p TopNewsParams) TopNewsResult {
	sorted := make([]entity.Article, len(articles))
	copy(sorted, articles)
	dedup.SortForDedup(sorted)
	deduped := dedup.Dedup(sorted, dedup.DefaultFuzzyThreshold)

	filtered := filter.Apply(deduped, filter.Params{
		Now:         p.Now,
		LastNDays:   p.LastNDays,
		RequireDate: p.RequireDate,
		Topic:       p.Topic,
		Location:    p.Location,
	})

	scorer.ScoreAll(filtered, p.Now)

	filteredOut := 0
	if p.EnableQualityFilter {
		min := p.MinQualityScore
		if min <= 0 {
			min = scorer.DefaultMinQualityScore
		}
		kept := make([]entity.Article, 0, len(filtered))
		for _, a := range filtered {
			if a.QualityScore >= min {
				kept = append(kept, a)
			} else {
				filteredOut++
			}
		}
		filtered = kept
	}

	sortByPublishedDesc(filtered)

	domains := distinctDomains(filtered)
	var final []entity.Article
	if len(domains) >= 2 {
		priorityOf := priorityLookup(o.sites)
		final = diversity.Select(filtered, p.Count, priorityOf)
	} else {
		final = capArticles(filtered, p.Count)
	}

	return TopNewsResult{
		Articles:      final,
		TotalArticles: len(filtered),
		FilteredOut:   filteredOut,
	}
}

func distinctDomains(articles []entity.Article) map[string]bool {
	out := make(map[string]bool)
	for _, a := range articles {
		out[a.SourceDomain] = true
	}
	return out
}

func priorityLookup(sites []entity.Site) diversity.DomainPriority {
	byDomain := make(map[string]int, len(sites))
	for _, s := range sites {
		byDomain[s.Domain] = s.PriorityOrMax()
	}
	return func(domain string) int {
		if p, ok := byDomain[domain]; ok {
			return p
		}
		return 1<<31 - 1
	}
}

func topPrioritySites(sites []entity.Site, limit int) []entity.Site {
	var prioritized []entity.Site
	for _, s := range sites {
		if s.Prioritized() {
			prioritized = append(prioritized, s)
		}
	}
	sort.Slice(prioritized, func(i, j int) bool {
		pi, pj := prioritized[i].PriorityOrMax(), prioritized[j].PriorityOrMax()
		if pi != pj {
			return pi < pj
		}
		return prioritized[i].Domain < prioritized[j].Domain
	})
	if len(prioritized) > limit {
		prioritized = prioritized[:limit]
	}
	return prioritized
}

// nextPrioritySites returns up to limit additional prioritized sites not
// already present in used, continuing in ascending priority order.
func nextPrioritySites(all []entity.Site, used []entity.Site, limit int) []entity.Site {
	usedDomains := make(map[string]bool, len(used))
	for _, s := range used {
		usedDomains[s.Domain] = true
	}

	var candidates []entity.Site
	for _, s := range all {
		if s.Prioritized() && !usedDomains[s.Domain] {
			candidates = append(candidates, s)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		pi, pj := candidates[i].PriorityOrMax(), candidates[j].PriorityOrMax()
		if pi != pj {
			return pi < pj
		}
		return candidates[i].Domain < candidates[j].Domain
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
