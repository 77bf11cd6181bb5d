package entity

import (
	"errors"
	"fmt"
)

// SourceType is the tagged variant distinguishing how a Source is fetched.
// The quality gate (4.E) runs only in the GoogleNews arm.
type SourceType string

const (
	OfficialRSS SourceType = "official_rss"
	RSSHub      SourceType = "rsshub"
	GoogleNews  SourceType = "google_news"
	Scraper     SourceType = "scraper"
)

// Source is one feed endpoint for a Site, tagged with a fallback tier.
type Source struct {
	Type      SourceType `json:"type"`
	URL       string     `json:"url"`
	Priority  int        `json:"priority"`   // tier: 1..4, lower tried first
	TimeoutMS int        `json:"timeout_ms"` // 0 means use the type default
}

// Validate checks that a Source is well-formed independent of its Site.
func (s Source) Validate() error {
	switch s.Type {
	case OfficialRSS, RSSHub, GoogleNews, Scraper:
	default:
		return fmt.Errorf("invalid source type: %q", s.Type)
	}
	if s.URL == "" {
		return errors.New("source url is required")
	}
	if s.Priority < 1 || s.Priority > 4 {
		return fmt.Errorf("source priority must be in [1,4], got %d", s.Priority)
	}
	return nil
}

// Site is publisher configuration: its canonical domain, top-news priority,
// and the ordered list of Sources the fallback ladder tries.
type Site struct {
	Name     string `json:"name"`
	Domain   string `json:"domain"`
	Priority *int   `json:"priority,omitempty"` // nil => explicit-only, never used for top-news
	Sources  []Source `json:"sources"`
}

// Prioritized reports whether this site is eligible for top-news selection.
func (s Site) Prioritized() bool {
	return s.Priority != nil && *s.Priority >= 1 && *s.Priority <= 12
}

// PriorityOrMax returns the site's priority, or a large sentinel for
// explicit-only sites, for use in stable priority-ascending sorts.
func (s Site) PriorityOrMax() int {
	if s.Priority == nil {
		return 1<<31 - 1
	}
	return *s.Priority
}

// Validate checks the Site and every one of its Sources.
func (s Site) Validate() error {
	if s.Domain == "" {
		return errors.New("site domain is required")
	}
	if len(s.Sources) == 0 {
		return errors.New("site must declare at least one source")
	}
	for i, src := range s.Sources {
		if err := src.Validate(); err != nil {
			return fmt.Errorf("source[%d]: %w", i, err)
		}
	}
	return nil
}

// SourcesByTier groups the site's sources by their priority tier. The map
// is unordered; callers sort its keys to walk tiers in ascending order.
func (s Site) SourcesByTier() map[int][]Source {
	byTier := make(map[int][]Source)
	for _, src := range s.Sources {
		byTier[src.Priority] = append(byTier[src.Priority], src)
	}
	return byTier
}
