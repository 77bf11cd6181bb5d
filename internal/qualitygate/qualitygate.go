// Package qualitygate implements §4.E: the Google-News-specific check that
// resolves redirect URLs, discards a source whose results are mostly still
// pointing at news.google.com, and drops the individual articles that are
// too stale for the caller's window.
package qualitygate

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"newsnexus/internal/domain/entity"
)

// HeadTimeout bounds each per-article redirect-resolution HEAD request.
const HeadTimeout = 2 * time.Second

// MinValidRatio is the fraction of articles that must resolve away from
// news.google.com for the source to survive the gate.
const MinValidRatio = 0.5

const googleNewsHost = "news.google.com"

// Result is what Apply found: either a filtered article list or a
// discard, plus whether it discarded for being a Google-redirect-heavy
// source (so the ladder can treat it as failed for fallback purposes).
type Result struct {
	Articles []entity.Article
	Rejected bool // valid_ratio fell below MinValidRatio; caller should treat as failed
}

// Apply resolves each article's Google News redirect URL via HEAD,
// computes the valid ratio, discards everything if it's below
// MinValidRatio, and otherwise drops articles older than lastNDays.
// client is the fetcher's shared HTTP client; resolution runs with
// bounded concurrency so one slow redirect can't serialize the gate.
func Apply(ctx context.Context, client *http.Client, articles []entity.Article, lastNDays int, now time.Time) Result {
	if len(articles) == 0 {
		return Result{}
	}

	resolved := resolveAll(ctx, client, articles)

	validCount := 0
	for _, a := range resolved {
		if !strings.EqualFold(a.SourceDomain, googleNewsHost) {
			validCount++
		}
	}
	validRatio := float64(validCount) / float64(len(resolved))
	if validRatio < MinValidRatio {
		return Result{Rejected: true}
	}

	out := make([]entity.Article, 0, len(resolved))
	for _, a := range resolved {
		if lastNDays > 0 && a.HasPublished {
			ageDays := int(now.Sub(a.PublishedAt).Hours() / 24)
			if ageDays > lastNDays {
				continue
			}
		}
		out = append(out, a)
	}
	return Result{Articles: out}
}

// resolveAll runs a HEAD request per article concurrently, replacing URL
// and SourceDomain with the redirect target on success. Failures (timeout,
// status outside 200-399, network error) leave the article's URL/domain untouched, which
// keeps it counted as still pointing at news.google.com for the ratio.
func resolveAll(ctx context.Context, client *http.Client, articles []entity.Article) []entity.Article {
	out := make([]entity.Article, len(articles))
	copy(out, articles)

	const maxConcurrency = 8
	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	for i := range out {
		i := i
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			resolveOne(ctx, client, &out[i])
		}()
	}
	wg.Wait()
	return out
}

func resolveOne(ctx context.Context, client *http.Client, a *entity.Article) {
	headCtx, cancel := context.WithTimeout(ctx, HeadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(headCtx, http.MethodHead, a.URL, nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", "NewsNexusBot/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return
	}

	final := resp.Request.URL
	if final == nil {
		return
	}
	host := strings.ToLower(final.Hostname())
	if host == "" || host == googleNewsHost {
		return
	}
	a.URL = final.String()
	a.SourceDomain = host
}
