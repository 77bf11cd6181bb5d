// Package resilience provides reliability and fault tolerance patterns used
// by the source fetcher: one circuit breaker per (domain, source type) pair
// and the one-retry-with-capped-backoff policy §4.D requires.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.FeedFetchConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return fetchFeed()
//	})
//
//	err = retry.WithBackoff(ctx, retry.FeedFetchConfig(), func() error {
//	    return performFetch()
//	})
package resilience
