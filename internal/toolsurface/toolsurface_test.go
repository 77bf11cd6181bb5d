package toolsurface

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsnexus/internal/apperr"
	"newsnexus/internal/cache"
	"newsnexus/internal/domain/entity"
	"newsnexus/internal/fetcher"
	"newsnexus/internal/ladder"
	"newsnexus/internal/observability/metrics"
	"newsnexus/internal/orchestrator"
	"newsnexus/internal/ratelimit"
)

func intPtr(i int) *int { return &i }

func rssWithItems(base string, n int) string {
	var items strings.Builder
	pubDate := time.Now().Add(-time.Hour).UTC().Format(time.RFC1123Z)
	for i := 0; i < n; i++ {
		items.WriteString(fmt.Sprintf(
			"<item><title>Story %d</title><link>%s/articles/%d</link>"+
				"<description>Summary text for story number %d.</description>"+
				"<pubDate>%s</pubDate></item>", i, base, i, i, pubDate))
	}
	return `<?xml version="1.0"?><rss version="2.0"><channel><title>Feed</title>` + items.String() + `</channel></rss>`
}

func rssServer(t *testing.T, n int) *httptest.Server {
	t.Helper()
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssWithItems(srvURL, n)))
	}))
	srvURL = srv.URL
	return srv
}

func newTestSurface(sites []entity.Site) *Surface {
	orch := orchestrator.New(ladder.New(fetcher.New(0)), sites)
	c := cache.New(300*time.Second, 1000)
	limiter := ratelimit.New(100, 60*time.Second)
	reg := metrics.New()
	return New(orch, c, limiter, reg, sites, "test")
}

func TestGetArticlesBadInputOnInvalidDomain(t *testing.T) {
	s := newTestSurface(nil)
	_, err := s.GetArticles(context.Background(), GetArticlesRequest{Domain: "not a domain"})
	if apperr.CodeOf(err) != apperr.BadInput {
		t.Fatalf("expected BadInput, got %v", err)
	}
}

func TestGetArticlesHappyPathAndCacheHit(t *testing.T) {
	srv := rssServer(t, 6)
	defer srv.Close()

	sites := []entity.Site{
		{Domain: "example.com", Priority: intPtr(1), Sources: []entity.Source{
			{Type: entity.OfficialRSS, URL: srv.URL, Priority: 1},
		}},
	}
	s := newTestSurface(sites)

	resp, err := s.GetArticles(context.Background(), GetArticlesRequest{Domain: "example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Cached {
		t.Fatal("first call should not be a cache hit")
	}
	if len(resp.Articles) == 0 {
		t.Fatal("expected articles")
	}

	resp2, err := s.GetArticles(context.Background(), GetArticlesRequest{Domain: "example.com"})
	if err != nil {
		t.Fatalf("unexpected error on second call: %v", err)
	}
	if !resp2.Cached {
		t.Fatal("second identical call should be a cache hit")
	}
}

func TestGetArticlesRateLimited(t *testing.T) {
	srv := rssServer(t, 6)
	defer srv.Close()

	sites := []entity.Site{
		{Domain: "example.com", Priority: intPtr(1), Sources: []entity.Source{
			{Type: entity.OfficialRSS, URL: srv.URL, Priority: 1},
		}},
	}
	orch := orchestrator.New(ladder.New(fetcher.New(0)), sites)
	c := cache.New(300*time.Second, 1000)
	limiter := ratelimit.New(1, 60*time.Second)
	reg := metrics.New()
	s := New(orch, c, limiter, reg, sites, "test")

	if _, err := s.GetArticles(context.Background(), GetArticlesRequest{Domain: "example.com"}); err != nil {
		t.Fatalf("unexpected error on first call: %v", err)
	}
	_, err := s.GetArticles(context.Background(), GetArticlesRequest{Domain: "example.com"})
	if apperr.CodeOf(err) != apperr.RateLimited {
		t.Fatalf("expected RateLimited on second call, got %v", err)
	}
}

func rssWithUndatedItem(base string) string {
	recent := time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC1123Z)
	return `<?xml version="1.0"?><rss version="2.0"><channel><title>Feed</title>` +
		`<item><title>Dated story</title><link>` + base + `/articles/dated</link>` +
		`<description>Has a pubDate.</description>` +
		`<pubDate>` + recent + `</pubDate></item>` +
		`<item><title>Undated story</title><link>` + base + `/articles/undated</link>` +
		`<description>No pubDate at all.</description></item>` +
		`</channel></rss>`
}

func TestGetArticlesDropsUndatedArticlesWhenCallerSpecifiesLastNDays(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssWithUndatedItem(srvURL)))
	}))
	defer srv.Close()
	srvURL = srv.URL

	sites := []entity.Site{
		{Domain: "example.com", Priority: intPtr(1), Sources: []entity.Source{
			{Type: entity.OfficialRSS, URL: srv.URL, Priority: 1},
		}},
	}
	s := newTestSurface(sites)

	resp, err := s.GetArticles(context.Background(), GetArticlesRequest{
		Domain:    "example.com",
		LastNDays: intPtr(30),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range resp.Articles {
		if a.Title == "Undated story" {
			t.Fatal("expected undated article to be dropped when caller explicitly specified lastNDays")
		}
	}
	if len(resp.Articles) != 1 || resp.Articles[0].Title != "Dated story" {
		t.Fatalf("expected only the dated article to survive, got %+v", resp.Articles)
	}
}

func TestGetArticlesKeepsUndatedArticlesWhenCallerOmitsLastNDays(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssWithUndatedItem(srvURL)))
	}))
	defer srv.Close()
	srvURL = srv.URL

	sites := []entity.Site{
		{Domain: "example.com", Priority: intPtr(1), Sources: []entity.Source{
			{Type: entity.OfficialRSS, URL: srv.URL, Priority: 1},
		}},
	}
	s := newTestSurface(sites)

	resp, err := s.GetArticles(context.Background(), GetArticlesRequest{Domain: "example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sawUndated bool
	for _, a := range resp.Articles {
		if a.Title == "Undated story" {
			sawUndated = true
		}
	}
	if !sawUndated {
		t.Fatal("expected undated article to survive when caller did not specify lastNDays")
	}
}

func TestHealthCheckReportsConfiguredSites(t *testing.T) {
	sites := []entity.Site{
		{Domain: "a.com", Priority: intPtr(1), Sources: []entity.Source{{Type: entity.OfficialRSS, URL: "http://a", Priority: 1}}},
		{Domain: "b.com", Sources: []entity.Source{{Type: entity.OfficialRSS, URL: "http://b", Priority: 1}}},
	}
	s := newTestSurface(sites)

	resp := s.HealthCheck(300*time.Second, 1000)
	if resp.ConfiguredDomains != 2 {
		t.Fatalf("expected 2 configured domains, got %d", resp.ConfiguredDomains)
	}
	if resp.PrioritySites != 1 {
		t.Fatalf("expected 1 priority site, got %d", resp.PrioritySites)
	}
	if resp.Constants.MinArticlesThreshold != 5 {
		t.Fatalf("expected MIN_ARTICLES_THRESHOLD=5, got %d", resp.Constants.MinArticlesThreshold)
	}
}

func TestGetMetricsReflectsActivity(t *testing.T) {
	s := newTestSurface(nil)
	_, _ = s.GetArticles(context.Background(), GetArticlesRequest{Domain: "bad domain"})

	resp := s.GetMetrics()
	if resp.Metrics.Counters["get_articles.requests"] == 0 {
		t.Fatal("expected get_articles.requests counter to be incremented")
	}
}
