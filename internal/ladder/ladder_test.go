package ladder

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsnexus/internal/domain/entity"
	"newsnexus/internal/fetcher"
)

func rssWithItems(base string, n int) string {
	var items strings.Builder
	for i := 0; i < n; i++ {
		items.WriteString(fmt.Sprintf(
			"<item><title>Story %d</title><link>%s/articles/%d</link>"+
				"<description>Summary text for story number %d.</description>"+
				"<pubDate>Mon, 02 Jan 2024 15:00:00 GMT</pubDate></item>", i, base, i, i))
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

func TestRunEscalatesWhenTierOneBelowThreshold(t *testing.T) {
	tier1 := rssServer(t, 3)
	defer tier1.Close()
	tier2 := rssServer(t, 9)
	defer tier2.Close()

	site := entity.Site{
		Domain: "example.com",
		Sources: []entity.Source{
			{Type: entity.OfficialRSS, URL: tier1.URL, Priority: 1},
			{Type: entity.RSSHub, URL: tier2.URL, Priority: 2},
		},
	}

	l := New(fetcher.New(0))
	result := l.Run(context.Background(), site, 15, time.Now())

	if result.Outcome != OutcomeSatisfied {
		t.Fatalf("expected OutcomeSatisfied, got %v (%s)", result.Outcome, result.Message)
	}
	if !strings.HasPrefix(result.SourceUsed, "tier 2") {
		t.Fatalf("expected escalation to tier 2, got %q", result.SourceUsed)
	}
	if len(result.Articles) != 9 {
		t.Fatalf("expected 9 articles from tier 2, got %d", len(result.Articles))
	}
}

func TestRunSatisfiesOnFirstTier(t *testing.T) {
	tier1 := rssServer(t, 6)
	defer tier1.Close()

	site := entity.Site{
		Domain: "example.com",
		Sources: []entity.Source{
			{Type: entity.OfficialRSS, URL: tier1.URL, Priority: 1},
		},
	}

	l := New(fetcher.New(0))
	result := l.Run(context.Background(), site, 15, time.Now())

	if result.Outcome != OutcomeSatisfied {
		t.Fatalf("expected OutcomeSatisfied, got %v", result.Outcome)
	}
	if !strings.HasPrefix(result.SourceUsed, "tier 1") {
		t.Fatalf("expected tier 1 to satisfy, got %q", result.SourceUsed)
	}
}

func TestRunDegradedWhenNoTierSatisfies(t *testing.T) {
	tier1 := rssServer(t, 2)
	defer tier1.Close()

	site := entity.Site{
		Domain: "example.com",
		Sources: []entity.Source{
			{Type: entity.OfficialRSS, URL: tier1.URL, Priority: 1},
		},
	}

	l := New(fetcher.New(0))
	result := l.Run(context.Background(), site, 15, time.Now())

	if result.Outcome != OutcomeDegraded {
		t.Fatalf("expected OutcomeDegraded, got %v", result.Outcome)
	}
	if len(result.Articles) != 2 {
		t.Fatalf("expected best-so-far of 2 articles, got %d", len(result.Articles))
	}
	if result.Message == "" {
		t.Fatal("expected a degraded message listing tiers tried")
	}
}

func TestRunUnavailableWhenEverySourceFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	site := entity.Site{
		Domain: "example.com",
		Sources: []entity.Source{
			{Type: entity.OfficialRSS, URL: srv.URL, Priority: 1, TimeoutMS: 500},
		},
	}

	l := New(fetcher.New(0))
	result := l.Run(context.Background(), site, 15, time.Now())

	if result.Outcome != OutcomeUnavailable {
		t.Fatalf("expected OutcomeUnavailable, got %v", result.Outcome)
	}
	if len(result.Articles) != 0 {
		t.Fatalf("expected no articles, got %d", len(result.Articles))
	}
}

func TestRunDedupsAcrossSourcesWithinATier(t *testing.T) {
	// Two sources in tier 1 return overlapping items (same URLs), so the
	// tier's article count should reflect the union, not the sum.
	tier1a := rssServer(t, 3)
	defer tier1a.Close()

	site := entity.Site{
		Domain: "example.com",
		Sources: []entity.Source{
			{Type: entity.OfficialRSS, URL: tier1a.URL, Priority: 1},
			{Type: entity.RSSHub, URL: tier1a.URL, Priority: 1},
		},
	}

	l := New(fetcher.New(0))
	result := l.Run(context.Background(), site, 15, time.Now())

	if len(result.Articles) != 3 {
		t.Fatalf("expected duplicate URLs across sources to collapse to 3, got %d", len(result.Articles))
	}
}
