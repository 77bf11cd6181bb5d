// Package config loads the engine's environment-driven settings with a
// Load/Validate pair, and the JSON site list with LoadSites.
package config

import (
	"fmt"
	"time"

	pkgconfig "newsnexus/pkg/config"
)

// Constants fixed by the external interface (§6); these are not
// environment-tunable.
const (
	MaxRecentDays        = 15
	DefaultArticleCount  = 10
	MinArticlesThreshold = 5
	DefaultTimeoutMS     = 2000
	TopNewsSiteLimit     = 12
	FuzzyTitleThreshold  = 0.85
)

// Config holds every environment-tunable setting for the engine.
type Config struct {
	LogLevel string

	MaxArticles int
	CacheTTL    time.Duration
	RateLimit   int
	RateWindow  time.Duration
	Parallel    bool
	ConfigPath  string

	DeepScrape        bool
	DeepScrapeMax     int
	DeepScrapeTimeout time.Duration
	SummaryLength     int
	DeepWorkers       int
}

// Load reads the Config from environment variables, applying the defaults
// documented in §6, then validates it.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel: pkgconfig.GetEnvString("LOG_LEVEL", "info"),

		MaxArticles: pkgconfig.GetEnvInt("MAX_ARTICLES", 50),
		CacheTTL:    pkgconfig.GetEnvDuration("CACHE_TTL", 300*time.Second),
		RateLimit:   pkgconfig.GetEnvInt("RATE_LIMIT", 10),
		RateWindow:  pkgconfig.GetEnvDuration("RATE_WINDOW", 60*time.Second),
		Parallel:    pkgconfig.GetEnvBool("PARALLEL", true),
		ConfigPath:  pkgconfig.GetEnvString("CONFIG_PATH", "sites.json"),

		DeepScrape:        pkgconfig.GetEnvBool("DEEP_SCRAPE", false),
		DeepScrapeMax:     pkgconfig.GetEnvInt("DEEP_SCRAPE_MAX", 10),
		DeepScrapeTimeout: pkgconfig.GetEnvDuration("DEEP_SCRAPE_TIMEOUT", 10*time.Second),
		SummaryLength:     pkgconfig.GetEnvInt("SUMMARY_LENGTH", 500),
		DeepWorkers:       pkgconfig.GetEnvInt("DEEP_WORKERS", 5),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the Config for internally-consistent values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug/info/warn/error, got %q", c.LogLevel)
	}
	if c.MaxArticles <= 0 {
		return fmt.Errorf("MAX_ARTICLES must be positive, got %d", c.MaxArticles)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %v", c.CacheTTL)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be positive, got %d", c.RateLimit)
	}
	if c.RateWindow <= 0 {
		return fmt.Errorf("RATE_WINDOW must be positive, got %v", c.RateWindow)
	}
	if c.ConfigPath == "" {
		return fmt.Errorf("CONFIG_PATH must not be empty")
	}
	if c.DeepScrapeMax < 0 {
		return fmt.Errorf("DEEP_SCRAPE_MAX must not be negative, got %d", c.DeepScrapeMax)
	}
	if c.DeepScrapeTimeout <= 0 {
		return fmt.Errorf("DEEP_SCRAPE_TIMEOUT must be positive, got %v", c.DeepScrapeTimeout)
	}
	if c.SummaryLength <= 0 {
		return fmt.Errorf("SUMMARY_LENGTH must be positive, got %d", c.SummaryLength)
	}
	if c.DeepWorkers <= 0 {
		return fmt.Errorf("DEEP_WORKERS must be positive, got %d", c.DeepWorkers)
	}
	return nil
}
