package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"newsnexus/internal/domain/entity"
	"newsnexus/internal/resilience/circuitbreaker"
	"newsnexus/internal/resilience/retry"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/sony/gobreaker"
)

const maxScrapeBodySize = 10 * 1024 * 1024 // 10MB

// fetchScrape is the last-resort tier: fetch a site's homepage, pull out
// anchors that look like article links, then extract readable content from
// each candidate concurrently. No feed structure to lean on, so everything
// here is best-effort.
func (f *Fetcher) fetchScrape(ctx context.Context, site entity.Site, src entity.Source) Result {
	if err := entity.ValidateURL(src.URL); err != nil {
		return Result{Outcome: OutcomeParseError, Err: err}
	}

	cb := f.breakerFor(site.Domain, src.Type, circuitbreaker.WebScraperConfig())
	retryCfg := retry.WebScraperConfig()

	var links []candidateLink
	retryErr := retry.WithBackoff(ctx, retryCfg, func() error {
		result, err := cb.Execute(func() (interface{}, error) {
			return f.listCandidates(ctx, src.URL)
		})
		if err != nil {
			return err
		}
		links = result.([]candidateLink)
		return nil
	})

	if retryErr != nil {
		if errors.Is(retryErr, gobreaker.ErrOpenState) {
			return Result{Outcome: OutcomeHTTPError, Err: retryErr}
		}
		if ctx.Err() != nil {
			return Result{Outcome: OutcomeTimeout, Err: retryErr}
		}
		var httpErr *retry.HTTPError
		if errors.As(retryErr, &httpErr) {
			return Result{Outcome: OutcomeHTTPError, Err: retryErr}
		}
		return Result{Outcome: OutcomeParseError, Err: retryErr}
	}

	if len(links) == 0 {
		return Result{Outcome: OutcomeEmpty}
	}
	if len(links) > f.maxCandidates {
		links = links[:f.maxCandidates]
	}

	articles := f.extractAll(ctx, site, src, links)
	if len(articles) == 0 {
		return Result{Outcome: OutcomeEmpty}
	}
	return Result{Articles: articles, Outcome: OutcomeOK}
}

type candidateLink struct {
	title string
	url   string
}

// listCandidates fetches the homepage and extracts anchor/title pairs that
// look like article links: non-empty text, an href resolvable against the
// page's own origin.
func (f *Fetcher) listCandidates(ctx context.Context, pageURL string) ([]candidateLink, error) {
	doc, base, err := f.fetchHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var links []candidateLink
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Text())
		if title == "" || len(title) < 8 {
			return
		}
		href, _ := sel.Attr("href")
		abs := resolveURL(base, href)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, candidateLink{title: title, url: abs})
	})
	return links, nil
}

func (f *Fetcher) fetchHTML(ctx context.Context, pageURL string) (*goquery.Document, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "NewsNexusBot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	limited := io.LimitReader(resp.Body, maxScrapeBodySize)
	doc, err := goquery.NewDocumentFromReader(limited)
	if err != nil {
		return nil, nil, fmt.Errorf("parse HTML: %w", err)
	}

	base := resp.Request.URL
	return doc, base, nil
}

func resolveURL(base *url.URL, href string) string {
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// extractAll runs readability extraction over every candidate link with
// bounded concurrency and collects whatever succeeds; individual failures
// are dropped rather than failing the whole tier.
func (f *Fetcher) extractAll(ctx context.Context, site entity.Site, src entity.Source, links []candidateLink) []entity.Article {
	sem := make(chan struct{}, f.scrapeWorkers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var articles []entity.Article

	for _, link := range links {
		link := link
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			content, err := f.extractContent(ctx, link.url)
			if err != nil {
				return
			}
			title := entity.SanitizeTitle(link.title)
			if title == "" {
				return
			}
			mu.Lock()
			articles = append(articles, entity.Article{
				Title:          title,
				URL:            link.url,
				Summary:        f.truncateSummary(content),
				SourceDomain:   site.Domain,
				SourcePriority: src.Priority,
			})
			mu.Unlock()
		}()
	}
	wg.Wait()
	return articles
}

// extractContent fetches a single article page and extracts readable text.
func (f *Fetcher) extractContent(ctx context.Context, pageURL string) (string, error) {
	if err := entity.ValidateURL(pageURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "NewsNexusBot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	limited := io.LimitReader(resp.Body, maxScrapeBodySize)
	htmlBytes, err := io.ReadAll(limited)
	if err != nil {
		return "", err
	}

	parsedURL := resp.Request.URL
	art, err := readability.FromReader(bytes.NewReader(htmlBytes), parsedURL)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}
	if art.TextContent != "" {
		return art.TextContent, nil
	}
	if art.Content != "" {
		return art.Content, nil
	}
	return "", errors.New("no readable content")
}
