// Package diversity implements the round-robin domain selector the
// top-news orchestrator uses when two or more domains are in play.
package diversity

import (
	"sort"

	"newsnexus/internal/domain/entity"
)

// DomainPriority looks up the priority of a source_domain for stable
// bucket ordering; sites not found fall back to the max sentinel.
type DomainPriority func(domain string) int

// Select buckets articles by source_domain, sorts each bucket by
// (quality_score desc, published_at desc), then round-robins across
// buckets in ascending (priority, domain name) order until count articles
// are selected or every bucket is empty.
func Select(articles []entity.Article, count int, priorityOf DomainPriority) []entity.Article {
	buckets := make(map[string][]entity.Article)
	for _, a := range articles {
		buckets[a.SourceDomain] = append(buckets[a.SourceDomain], a)
	}

	domains := make([]string, 0, len(buckets))
	for d := range buckets {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool {
		pi, pj := priorityOf(domains[i]), priorityOf(domains[j])
		if pi != pj {
			return pi < pj
		}
		return domains[i] < domains[j]
	})

	for _, d := range domains {
		bucket := buckets[d]
		sort.SliceStable(bucket, func(i, j int) bool {
			if bucket[i].QualityScore != bucket[j].QualityScore {
				return bucket[i].QualityScore > bucket[j].QualityScore
			}
			return bucket[i].PublishedAt.After(bucket[j].PublishedAt)
		})
		buckets[d] = bucket
	}

	out := make([]entity.Article, 0, count)
	for len(out) < count {
		progressed := false
		for _, d := range domains {
			if len(out) >= count {
				break
			}
			if len(buckets[d]) == 0 {
				continue
			}
			out = append(out, buckets[d][0])
			buckets[d] = buckets[d][1:]
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return out
}
