// Package toolsurface implements §4.M: the four tool operations in terms
// of every other component, each following validate -> rate-limit (if
// domain-scoped) -> cache-check -> orchestrate -> cache-store -> metrics
// -> serialize, with errors mapped to the §7 taxonomy.
package toolsurface

import (
	"context"
	"encoding/json"
	"time"

	"newsnexus/internal/apperr"
	"newsnexus/internal/cache"
	"newsnexus/internal/config"
	"newsnexus/internal/domain/entity"
	"newsnexus/internal/observability/metrics"
	"newsnexus/internal/orchestrator"
	"newsnexus/internal/ratelimit"
)

// Surface wires the aggregation engine's shared collaborators into the
// four tool operations.
type Surface struct {
	orchestrator *orchestrator.Orchestrator
	cache        *cache.Cache
	limiter      *ratelimit.Limiter
	metrics      *metrics.Registry
	sites        []entity.Site
	version      string
	startedAt    time.Time
}

// New builds a Surface. sites is the full, already-validated site
// configuration, used for health_check's summary counts as well as
// domain-scoped orchestration.
func New(orch *orchestrator.Orchestrator, c *cache.Cache, limiter *ratelimit.Limiter, reg *metrics.Registry, sites []entity.Site, version string) *Surface {
	return &Surface{
		orchestrator: orch,
		cache:        c,
		limiter:      limiter,
		metrics:      reg,
		sites:        sites,
		version:      version,
		startedAt:    time.Now(),
	}
}

// GetArticlesRequest is the input to get_articles.
type GetArticlesRequest struct {
	Domain    string `json:"domain"`
	Topic     string `json:"topic,omitempty"`
	Location  string `json:"location,omitempty"`
	LastNDays *int   `json:"lastNDays,omitempty"`
	Count     *int   `json:"count,omitempty"`
}

// GetArticlesResponse is the output of get_articles.
type GetArticlesResponse struct {
	SourceUsed string           `json:"sourceUsed"`
	Articles   []entity.Article `json:"articles"`
	Cached     bool             `json:"cached"`
	DurationMs int64            `json:"durationMs"`
	Message    string           `json:"message,omitempty"`
}

// GetArticles implements tool operation 1.
func (s *Surface) GetArticles(ctx context.Context, req GetArticlesRequest) (GetArticlesResponse, error) {
	start := time.Now()
	s.metrics.Inc("get_articles.requests")

	domain, err := entity.ValidateDomain(req.Domain)
	if err != nil {
		s.metrics.Inc("get_articles.bad_input")
		return GetArticlesResponse{}, apperr.Wrap(apperr.BadInput, "invalid domain", err)
	}
	topic, err := sanitizeOptional(req.Topic)
	if err != nil {
		s.metrics.Inc("get_articles.bad_input")
		return GetArticlesResponse{}, apperr.Wrap(apperr.BadInput, "invalid topic", err)
	}
	location, err := sanitizeOptional(req.Location)
	if err != nil {
		s.metrics.Inc("get_articles.bad_input")
		return GetArticlesResponse{}, apperr.Wrap(apperr.BadInput, "invalid location", err)
	}
	lastNDays, requireDate, err := entity.NormalizeLastNDays(req.LastNDays)
	if err != nil {
		s.metrics.Inc("get_articles.bad_input")
		return GetArticlesResponse{}, apperr.Wrap(apperr.BadInput, "invalid lastNDays", err)
	}
	count := config.DefaultArticleCount
	if req.Count != nil {
		count = *req.Count
	}
	if err := entity.ValidateCount(count); err != nil {
		s.metrics.Inc("get_articles.bad_input")
		return GetArticlesResponse{}, apperr.Wrap(apperr.BadInput, "invalid count", err)
	}

	if err := s.limiter.Admit(ctx, domain); err != nil {
		s.metrics.Inc("get_articles.rate_limited")
		return GetArticlesResponse{}, err
	}

	now := time.Now()
	filters := map[string]any{"topic": topic, "location": location, "lastNDays": lastNDays, "count": count}
	key := cache.Key("get_articles", domain, filters)
	if cached, ok := s.cache.Get(key); ok {
		var resp GetArticlesResponse
		if json.Unmarshal(cached, &resp) == nil {
			resp.Cached = true
			resp.DurationMs = time.Since(start).Milliseconds()
			s.metrics.Inc("get_articles.cache_hit")
			s.metrics.Observe("get_articles.duration_ms", time.Since(start))
			return resp, nil
		}
	}

	result, err := s.orchestrator.GetArticles(ctx, domain, orchestrator.Params{
		Topic:       topic,
		Location:    location,
		LastNDays:   lastNDays,
		RequireDate: requireDate,
		Count:       count,
		Now:         now,
	})
	s.metrics.Observe("get_articles.duration_ms", time.Since(start))
	if err != nil {
		s.metrics.Inc("get_articles.error." + string(apperr.CodeOf(err)))
		return GetArticlesResponse{}, err
	}

	resp := GetArticlesResponse{
		SourceUsed: result.SourceUsed,
		Articles:   result.Articles,
		Cached:     false,
		DurationMs: time.Since(start).Milliseconds(),
		Message:    result.Message,
	}

	if !result.Degraded {
		if encoded, err := json.Marshal(resp); err == nil {
			s.cache.Put(key, encoded)
		}
	}
	s.metrics.Inc("get_articles.success")
	return resp, nil
}

// GetTopNewsRequest is the input to get_top_news.
type GetTopNewsRequest struct {
	Count               *int     `json:"count,omitempty"`
	Topic               string   `json:"topic,omitempty"`
	Location            string   `json:"location,omitempty"`
	LastNDays           *int     `json:"lastNDays,omitempty"`
	Domains             []string `json:"domains,omitempty"`
	MinQualityScore     *float64 `json:"min_quality_score,omitempty"`
	EnableQualityFilter bool     `json:"enable_quality_filter,omitempty"`
}

// GetTopNewsResponse is the output of get_top_news.
type GetTopNewsResponse struct {
	SourcesUsed         []string         `json:"sources_used"`
	Articles            []entity.Article `json:"articles"`
	TotalArticles        int             `json:"total_articles"`
	DurationMs          int64            `json:"durationMs"`
	QualityFilterEnabled bool            `json:"qualityFilterEnabled"`
	MinQualityScore     float64          `json:"minQualityScore"`
	FilteredOut         int              `json:"filteredOut"`
}

// GetTopNews implements tool operation 2. It is not domain-scoped, so no
// rate limiting is applied (§7: "rate-limit (if domain-scoped)").
func (s *Surface) GetTopNews(ctx context.Context, req GetTopNewsRequest) (GetTopNewsResponse, error) {
	start := time.Now()
	s.metrics.Inc("get_top_news.requests")

	topic, err := sanitizeOptional(req.Topic)
	if err != nil {
		s.metrics.Inc("get_top_news.bad_input")
		return GetTopNewsResponse{}, apperr.Wrap(apperr.BadInput, "invalid topic", err)
	}
	location, err := sanitizeOptional(req.Location)
	if err != nil {
		s.metrics.Inc("get_top_news.bad_input")
		return GetTopNewsResponse{}, apperr.Wrap(apperr.BadInput, "invalid location", err)
	}
	lastNDays, requireDate, err := entity.NormalizeLastNDays(req.LastNDays)
	if err != nil {
		s.metrics.Inc("get_top_news.bad_input")
		return GetTopNewsResponse{}, apperr.Wrap(apperr.BadInput, "invalid lastNDays", err)
	}
	count := config.DefaultArticleCount
	if req.Count != nil {
		count = *req.Count
	}
	if err := entity.ValidateCount(count); err != nil {
		s.metrics.Inc("get_top_news.bad_input")
		return GetTopNewsResponse{}, apperr.Wrap(apperr.BadInput, "invalid count", err)
	}
	minQuality := 0.0
	if req.MinQualityScore != nil {
		minQuality = *req.MinQualityScore
	}

	now := time.Now()
	filters := map[string]any{
		"topic": topic, "location": location, "lastNDays": lastNDays, "count": count,
		"domains": req.Domains, "minQuality": minQuality, "qualityFilter": req.EnableQualityFilter,
	}
	cacheDomain := "TOP"
	key := cache.Key("get_top_news", cacheDomain, filters)
	if cached, ok := s.cache.Get(key); ok {
		var resp GetTopNewsResponse
		if json.Unmarshal(cached, &resp) == nil {
			resp.DurationMs = time.Since(start).Milliseconds()
			s.metrics.Inc("get_top_news.cache_hit")
			return resp, nil
		}
	}

	result, _, err := s.orchestrator.TopNews(ctx, orchestrator.TopNewsParams{
		Params: orchestrator.Params{
			Topic:       topic,
			Location:    location,
			LastNDays:   lastNDays,
			RequireDate: requireDate,
			Count:       count,
			Now:         now,
		},
		Domains:             req.Domains,
		MinQualityScore:     minQuality,
		EnableQualityFilter: req.EnableQualityFilter,
	})
	s.metrics.Observe("get_top_news.duration_ms", time.Since(start))
	if err != nil {
		s.metrics.Inc("get_top_news.error." + string(apperr.CodeOf(err)))
		return GetTopNewsResponse{}, err
	}

	resp := GetTopNewsResponse{
		SourcesUsed:          result.SourcesUsed,
		Articles:             result.Articles,
		TotalArticles:        result.TotalArticles,
		DurationMs:           time.Since(start).Milliseconds(),
		QualityFilterEnabled: req.EnableQualityFilter,
		MinQualityScore:      minQuality,
		FilteredOut:          result.FilteredOut,
	}

	if encoded, err := json.Marshal(resp); err == nil {
		s.cache.Put(key, encoded)
	}
	s.metrics.Inc("get_top_news.success")
	return resp, nil
}

// HealthCheckResponse is the output of health_check.
type HealthCheckResponse struct {
	Status            string          `json:"status"`
	Version           string          `json:"version"`
	ConfiguredDomains int             `json:"configured_domains"`
	PrioritySites     int             `json:"priority_sites"`
	Cache             HealthCacheInfo   `json:"cache"`
	Constants         HealthConstants   `json:"constants"`
	CircuitBreakers   map[string]string `json:"circuit_breakers"`
	Timestamp         time.Time         `json:"timestamp"`
}

// HealthCacheInfo summarizes the cache's configuration and current size.
type HealthCacheInfo struct {
	Size       int `json:"size"`
	TTLSeconds int `json:"ttl_seconds"`
	MaxSize    int `json:"max_size"`
}

// HealthConstants echoes the fixed constants §6 requires in health_check.
type HealthConstants struct {
	MaxRecentDays        int `json:"MAX_RECENT_DAYS"`
	DefaultArticleCount  int `json:"DEFAULT_ARTICLE_COUNT"`
	MinArticlesThreshold int `json:"MIN_ARTICLES_THRESHOLD"`
}

// HealthCheck implements tool operation 3.
func (s *Surface) HealthCheck(cacheTTL time.Duration, cacheMaxSize int) HealthCheckResponse {
	prioritized := 0
	for _, site := range s.sites {
		if site.Prioritized() {
			prioritized++
		}
	}
	return HealthCheckResponse{
		Status:            "ok",
		Version:           s.version,
		ConfiguredDomains: len(s.sites),
		PrioritySites:     prioritized,
		Cache: HealthCacheInfo{
			Size:       s.cache.Len(),
			TTLSeconds: int(cacheTTL.Seconds()),
			MaxSize:    cacheMaxSize,
		},
		Constants: HealthConstants{
			MaxRecentDays:        config.MaxRecentDays,
			DefaultArticleCount:  config.DefaultArticleCount,
			MinArticlesThreshold: config.MinArticlesThreshold,
		},
		CircuitBreakers: s.orchestrator.BreakerStates(),
		Timestamp:       time.Now(),
	}
}

// GetMetricsResponse is the output of get_metrics.
type GetMetricsResponse struct {
	Metrics   MetricsBody `json:"metrics"`
	Timestamp time.Time   `json:"timestamp"`
}

// MetricsBody is the nested metrics payload get_metrics returns.
type MetricsBody struct {
	UptimeSeconds float64                                `json:"uptime_seconds"`
	Counters      map[string]int64                       `json:"counters"`
	Histograms    map[string]metrics.HistogramSnapshot    `json:"histograms"`
}

// GetMetrics implements tool operation 4.
func (s *Surface) GetMetrics() GetMetricsResponse {
	uptime, counters, histograms := s.metrics.Snapshot()
	return GetMetricsResponse{
		Metrics: MetricsBody{
			UptimeSeconds: uptime.Seconds(),
			Counters:      counters,
			Histograms:    histograms,
		},
		Timestamp: time.Now(),
	}
}

func sanitizeOptional(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	return entity.SanitizeKeyword(s)
}
