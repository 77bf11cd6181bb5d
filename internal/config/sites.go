package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"newsnexus/internal/domain/entity"
)

// LoadSites reads and validates the JSON array of Site objects at path
// (CONFIG_PATH), rejecting the whole file if any Site fails validation.
func LoadSites(path string) ([]entity.Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading site config %s: %w", path, err)
	}

	var sites []entity.Site
	if err := json.Unmarshal(data, &sites); err != nil {
		return nil, fmt.Errorf("parsing site config %s: %w", path, err)
	}

	for i, site := range sites {
		if err := site.Validate(); err != nil {
			return nil, fmt.Errorf("site[%d] %q: %w", i, site.Domain, err)
		}
	}
	return sites, nil
}

// PrioritizedSites returns the subset of sites eligible for top-news
// selection, sorted ascending by priority then domain.
func PrioritizedSites(sites []entity.Site) []entity.Site {
	var out []entity.Site
	for _, s := range sites {
		if s.Prioritized() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].PriorityOrMax(), out[j].PriorityOrMax()
		if pi != pj {
			return pi < pj
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}
