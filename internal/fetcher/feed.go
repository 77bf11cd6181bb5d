package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"newsnexus/internal/domain/entity"
	"newsnexus/internal/resilience/circuitbreaker"
	"newsnexus/internal/resilience/retry"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

// fetchFeed handles official_rss, rsshub, and google_news: all three are
// plain RSS/Atom documents, differing only in what URL produced them and,
// for google_news, the quality gate applied downstream.
func (f *Fetcher) fetchFeed(ctx context.Context, site entity.Site, src entity.Source) Result {
	if err := entity.ValidateURL(src.URL); err != nil {
		return Result{Outcome: OutcomeParseError, Err: err}
	}

	cb := f.breakerFor(site.Domain, src.Type, circuitbreaker.FeedFetchConfig())
	retryCfg := retry.FeedFetchConfig()

	var articles []entity.Article
	retryErr := retry.WithBackoff(ctx, retryCfg, func() error {
		result, err := cb.Execute(func() (interface{}, error) {
			return f.doFetchFeed(ctx, site, src)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed circuit breaker open",
					slog.String("domain", site.Domain),
					slog.String("source_type", string(src.Type)))
			}
			return err
		}
		articles = result.([]entity.Article)
		return nil
	})

	if retryErr != nil {
		if ctx.Err() != nil {
			return Result{Outcome: OutcomeTimeout, Err: retryErr}
		}
		var httpErr *retry.HTTPError
		if errors.As(retryErr, &httpErr) {
			return Result{Outcome: OutcomeHTTPError, Err: retryErr}
		}
		return Result{Outcome: OutcomeParseError, Err: retryErr}
	}

	if len(articles) == 0 {
		return Result{Outcome: OutcomeEmpty}
	}
	return Result{Articles: articles, Outcome: OutcomeOK}
}

func (f *Fetcher) doFetchFeed(ctx context.Context, site entity.Site, src entity.Source) (interface{}, error) {
	parser := gofeed.NewParser()
	parser.Client = f.client
	parser.UserAgent = "NewsNexusBot/1.0"

	feed, err := parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		var statusErr gofeed.HTTPError
		if errors.As(err, &statusErr) {
			return nil, &retry.HTTPError{StatusCode: statusErr.StatusCode, Message: statusErr.Status}
		}
		return nil, err
	}

	articles := make([]entity.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		a := entity.Article{
			Title:          entity.SanitizeTitle(item.Title),
			URL:            item.Link,
			Summary:        f.truncateSummary(summary),
			SourceDomain:   site.Domain,
			SourcePriority: src.Priority,
		}
		if a.Title == "" {
			continue
		}
		if item.PublishedParsed != nil {
			published := *item.PublishedParsed
			if now := time.Now(); published.After(now) {
				published = now
			}
			a.PublishedAt = published
			a.HasPublished = true
		}
		if item.Author != nil {
			a.Author = item.Author.Name
		}
		for _, cat := range item.Categories {
			a.Tags = append(a.Tags, cat)
		}
		articles = append(articles, a)
	}
	return articles, nil
}
