package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsnexus/internal/domain/entity"
)

const homepageHTML = `<html><body>
<a href="/news/story-one">A headline worth reading today</a>
<a href="#">skip me</a>
<a href="/news/story-two">Another story about the markets today</a>
</body></html>`

const articleHTML = `<html><head><title>A headline worth reading today</title></head>
<body><article><p>` + strings_repeat("This is the body of the article. ", 20) + `</p></article></body></html>`

func strings_repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

func TestFetchScrapeExtractsArticles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(homepageHTML))
	})
	mux.HandleFunc("/news/story-one", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	})
	mux.HandleFunc("/news/story-two", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	site := entity.Site{Domain: strings.TrimPrefix(srv.URL, "http://")}
	src := entity.Source{Type: entity.Scraper, URL: srv.URL, Priority: 4, TimeoutMS: 5000}

	f := New(2)
	result := f.Fetch(context.Background(), site, src)

	if result.Outcome != OutcomeOK {
		t.Fatalf("expected OutcomeOK, got %v (err=%v)", result.Outcome, result.Err)
	}
	if len(result.Articles) == 0 {
		t.Fatal("expected at least one extracted article")
	}
}

func TestFetchScrapeCapsCandidatesAtMaxCandidates(t *testing.T) {
	var homepage strings.Builder
	homepage.WriteString("<html><body>")
	for i := 0; i < 20; i++ {
		homepage.WriteString(`<a href="/news/story-` + string(rune('a'+i)) + `">A headline worth reading today ` + string(rune('a'+i)) + `</a>`)
	}
	homepage.WriteString("</body></html>")

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(homepage.String()))
	})
	mux.HandleFunc("/news/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	site := entity.Site{Domain: strings.TrimPrefix(srv.URL, "http://")}
	src := entity.Source{Type: entity.Scraper, URL: srv.URL, Priority: 4, TimeoutMS: 5000}

	f := New(2).WithMaxCandidates(3)
	result := f.Fetch(context.Background(), site, src)

	if result.Outcome != OutcomeOK {
		t.Fatalf("expected OutcomeOK, got %v (err=%v)", result.Outcome, result.Err)
	}
	if len(result.Articles) > 3 {
		t.Fatalf("expected at most 3 articles (DEEP_SCRAPE_MAX cap), got %d", len(result.Articles))
	}
}

func TestFetchScrapeEmptyHomepage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>no links here</body></html>`))
	}))
	defer srv.Close()

	site := entity.Site{Domain: "example.com"}
	src := entity.Source{Type: entity.Scraper, URL: srv.URL, Priority: 4, TimeoutMS: 5000}

	f := New(2)
	result := f.Fetch(context.Background(), site, src)
	if result.Outcome != OutcomeEmpty {
		t.Fatalf("expected OutcomeEmpty, got %v", result.Outcome)
	}
}
