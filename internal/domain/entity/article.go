// Package entity defines the core domain entities and validation logic for the
// aggregation engine: articles, publisher sites and their feed sources.
package entity

import "time"

// Article is the unit passed between every stage of the aggregation pipeline.
type Article struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
	Author  string `json:"author,omitempty"`
	Tags    []string `json:"tags,omitempty"`

	// PublishedAt is the article's publication time in UTC. HasPublished is
	// false when the source provided no parseable date.
	PublishedAt  time.Time `json:"published_at,omitempty"`
	HasPublished bool      `json:"-"`

	// SourceDomain is the canonical host of the publisher, not of the feed
	// that produced the article (Google News articles resolve to their own
	// host via the quality gate).
	SourceDomain string `json:"source_domain"`

	// SourcePriority is the owning site's priority, carried alongside the
	// article for scoring and tie-breaking; not serialized.
	SourcePriority int `json:"-"`

	// QualityScore is assigned by the scorer; Scored is false until then.
	QualityScore float64 `json:"quality_score"`
	Scored       bool    `json:"-"`
}
