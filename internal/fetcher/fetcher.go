// Package fetcher implements §4.D: pulling candidate articles out of a single
// Source, whatever its type. Every call is wrapped in a circuit breaker and
// retry policy keyed to the (domain, source type) pair, adapted from the
// feed/scraper fetchers this engine grew out of.
package fetcher

import (
	"context"
	"crypto/tls"
	"net/http"
	"sync"
	"time"

	"newsnexus/internal/domain/entity"
	"newsnexus/internal/resilience/circuitbreaker"
	"newsnexus/internal/utils/text"
)

// Outcome classifies how a single Fetch call ended, per §4.D.
type Outcome string

const (
	OutcomeOK         Outcome = "ok"
	OutcomeEmpty      Outcome = "empty"
	OutcomeTimeout    Outcome = "timeout"
	OutcomeHTTPError  Outcome = "http_error"
	OutcomeParseError Outcome = "parse_error"
)

// DefaultTimeout is used for feed sources that do not declare their own
// TimeoutMS. Scrapers default to DefaultScrapeTimeout instead (§4.D).
const DefaultTimeout = 2000 * time.Millisecond

// DefaultScrapeTimeout is the scraper-tier default: homepage extraction
// plus per-article readability fetches take longer than a feed GET.
const DefaultScrapeTimeout = 5000 * time.Millisecond

func defaultTimeoutFor(t entity.SourceType) time.Duration {
	if t == entity.Scraper {
		return DefaultScrapeTimeout
	}
	return DefaultTimeout
}

// Result is what one Source produced.
type Result struct {
	Articles []entity.Article
	Outcome  Outcome
	Err      error
}

// DefaultSummaryLength is used when the caller never overrides it via
// WithSummaryLength (SUMMARY_LENGTH's default).
const DefaultSummaryLength = 500

// DefaultMaxCandidates is used when the caller never overrides it via
// WithMaxCandidates (DEEP_SCRAPE_MAX's default).
const DefaultMaxCandidates = 10

// Fetcher dispatches to the feed or scrape mechanism by source type,
// maintaining one circuit breaker per (domain, type) pair so a single
// flaky publisher cannot trip the breaker for every other site.
type Fetcher struct {
	client        *http.Client
	scrapeWorkers int
	summaryLength int
	maxCandidates int

	mu       sync.Mutex
	breakers map[string]*circuitbreaker.CircuitBreaker
}

// New builds a Fetcher. scrapeWorkers bounds per-call concurrency when
// extracting full content for scraper-tier sources; 0 selects the default.
func New(scrapeWorkers int) *Fetcher {
	if scrapeWorkers <= 0 {
		scrapeWorkers = 5
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		scrapeWorkers: scrapeWorkers,
		summaryLength: DefaultSummaryLength,
		maxCandidates: DefaultMaxCandidates,
		breakers:      make(map[string]*circuitbreaker.CircuitBreaker),
	}
}

// WithMaxCandidates overrides how many homepage anchor candidates the
// scraper tier will extract per source (DEEP_SCRAPE_MAX) and returns f for
// chaining.
func (f *Fetcher) WithMaxCandidates(n int) *Fetcher {
	if n > 0 {
		f.maxCandidates = n
	}
	return f
}

// WithSummaryLength overrides the rune-count cap applied to every
// extracted Article.Summary (SUMMARY_LENGTH) and returns f for chaining.
func (f *Fetcher) WithSummaryLength(n int) *Fetcher {
	if n > 0 {
		f.summaryLength = n
	}
	return f
}

// truncateSummary bounds s to the Fetcher's configured summary length,
// counting runes rather than bytes so multi-byte text isn't cut mid-glyph.
func (f *Fetcher) truncateSummary(s string) string {
	if text.CountRunes(s) <= f.summaryLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:f.summaryLength])
}

// HTTPClient returns the Fetcher's shared HTTP client so collaborators
// (the Google News quality gate's HEAD resolution) can reuse the same
// connection pool and TLS settings instead of standing up their own.
func (f *Fetcher) HTTPClient() *http.Client {
	return f.client
}

// BreakerStates reports the current gobreaker state of every (domain, source
// type) breaker that has been exercised so far, keyed by source type name.
// A source type with breakers open on multiple domains reports "open" if any
// one of them is open, since the health check cares about degraded source
// types rather than individual domains.
func (f *Fetcher) BreakerStates() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	states := make(map[string]string)
	for key, cb := range f.breakers {
		_, typ, ok := splitBreakerKey(key)
		if !ok {
			continue
		}
		state := cb.State().String()
		if existing, ok := states[typ]; ok && existing == "open" {
			continue
		}
		states[typ] = state
	}
	return states
}

func splitBreakerKey(key string) (domain, sourceType string, ok bool) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '|' {
			return key[:i], key[i+1:], true
		}
	}
	return "", "", false
}

// Fetch retrieves candidate articles for one (site, source) pair. It never
// panics; every failure mode is reported through Result.Outcome/Err so the
// fallback ladder can decide whether to escalate.
func (f *Fetcher) Fetch(ctx context.Context, site entity.Site, src entity.Source) Result {
	timeout := defaultTimeoutFor(src.Type)
	if src.TimeoutMS > 0 {
		timeout = time.Duration(src.TimeoutMS) * time.Millisecond
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch src.Type {
	case entity.OfficialRSS, entity.RSSHub, entity.GoogleNews:
		return f.fetchFeed(fetchCtx, site, src)
	case entity.Scraper:
		return f.fetchScrape(fetchCtx, site, src)
	default:
		return Result{Outcome: OutcomeParseError, Err: errUnknownSourceType(src.Type)}
	}
}

func errUnknownSourceType(t entity.SourceType) error {
	return &unknownSourceTypeError{t}
}

type unknownSourceTypeError struct{ t entity.SourceType }

func (e *unknownSourceTypeError) Error() string {
	return "fetcher: unknown source type: " + string(e.t)
}

// breakerFor lazily creates and caches the breaker for a (domain, type) pair.
func (f *Fetcher) breakerFor(domain string, t entity.SourceType, cfg circuitbreaker.Config) *circuitbreaker.CircuitBreaker {
	key := domain + "|" + string(t)
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := f.breakers[key]; ok {
		return cb
	}
	cfg.Name = key
	cb := circuitbreaker.New(cfg)
	f.breakers[key] = cb
	return cb
}
