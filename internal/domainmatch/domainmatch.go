// Package domainmatch implements the fuzzy domain-token resolution used by
// get_top_news(domains=[...]): user tokens are matched against configured
// sites by exact match, then suffix-anchored substring, then bare substring.
package domainmatch

import (
	"sort"
	"strings"

	"newsnexus/internal/domain/entity"
)

// Match is one resolved (token, site) pairing.
type Match struct {
	Token string
	Site  entity.Site
}

// Resolve matches each token against sites in order: exact domain match,
// then "token." as a substring of the domain, then token as a bare
// substring. When a token matches more than one site, the site with the
// smaller priority wins (nil priority loses to any numbered priority);
// ties break lexicographically by domain. Tokens matching no site are
// returned in unmatched, preserving input order.
func Resolve(tokens []string, sites []entity.Site) (matches []Match, unmatched []string) {
	for _, raw := range tokens {
		token := normalize(raw)
		if token == "" {
			unmatched = append(unmatched, raw)
			continue
		}
		site, ok := resolveOne(token, sites)
		if !ok {
			unmatched = append(unmatched, raw)
			continue
		}
		matches = append(matches, Match{Token: raw, Site: site})
	}
	return matches, unmatched
}

func resolveOne(token string, sites []entity.Site) (entity.Site, bool) {
	if site, ok := bestOf(sites, func(s entity.Site) bool {
		return normalize(s.Domain) == token
	}); ok {
		return site, true
	}
	if site, ok := bestOf(sites, func(s entity.Site) bool {
		return strings.Contains(normalize(s.Domain), token+".")
	}); ok {
		return site, true
	}
	if site, ok := bestOf(sites, func(s entity.Site) bool {
		return strings.Contains(normalize(s.Domain), token)
	}); ok {
		return site, true
	}
	return entity.Site{}, false
}

// bestOf returns the candidate among sites satisfying pred with the
// smallest priority (PriorityOrMax), tie-broken lexicographically by
// domain. ok is false if no site satisfies pred.
func bestOf(sites []entity.Site, pred func(entity.Site) bool) (entity.Site, bool) {
	var candidates []entity.Site
	for _, s := range sites {
		if pred(s) {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return entity.Site{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		pi, pj := candidates[i].PriorityOrMax(), candidates[j].PriorityOrMax()
		if pi != pj {
			return pi < pj
		}
		return normalize(candidates[i].Domain) < normalize(candidates[j].Domain)
	})
	return candidates[0], true
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "www.")
	return s
}
