// Command newsnexus wires the aggregation engine's collaborators together
// and exposes the tool surface. The JSON-RPC/MCP transport that accepts
// calls from the outside is an external collaborator (§1); this binary's
// job ends at constructing a ready-to-call *toolsurface.Surface and
// logging a startup summary.
package main

import (
	"log/slog"
	"os"

	"newsnexus/internal/cache"
	appconfig "newsnexus/internal/config"
	"newsnexus/internal/domain/entity"
	"newsnexus/internal/fetcher"
	"newsnexus/internal/ladder"
	"newsnexus/internal/observability/logging"
	"newsnexus/internal/observability/metrics"
	"newsnexus/internal/orchestrator"
	"newsnexus/internal/ratelimit"
	"newsnexus/internal/toolsurface"
)

func main() {
	logger := initLogger()

	cfg, err := appconfig.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	sites, err := appconfig.LoadSites(cfg.ConfigPath)
	if err != nil {
		logger.Error("failed to load site configuration", slog.String("path", cfg.ConfigPath), slog.Any("error", err))
		os.Exit(1)
	}

	surface := buildSurface(cfg, sites)

	logger.Info("newsnexus aggregation engine ready",
		slog.Int("configured_domains", len(sites)),
		slog.String("version", getVersion()),
		slog.String("config_path", cfg.ConfigPath),
	)

	_ = surface // handed off to the transport layer in a full deployment
}

// initLogger mirrors the teacher's JSON-handler-with-LOG_LEVEL setup,
// swapping in this engine's own logging package.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// buildSurface constructs every shared collaborator and returns the
// fully-wired tool surface.
func buildSurface(cfg *appconfig.Config, sites []entity.Site) *toolsurface.Surface {
	f := fetcher.New(cfg.DeepWorkers).WithSummaryLength(cfg.SummaryLength).WithMaxCandidates(cfg.DeepScrapeMax)
	l := ladder.New(f)
	orch := orchestrator.New(l, sites)

	c := cache.New(cfg.CacheTTL, cache.DefaultCapacity)
	limiter := ratelimit.New(cfg.RateLimit, cfg.RateWindow)
	reg := metrics.New()

	return toolsurface.New(orch, c, limiter, reg, sites, getVersion())
}
