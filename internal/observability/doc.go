// Package observability provides structured logging and in-process metrics
// for the aggregation engine.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: the counters-and-histograms Registry behind get_metrics
//
// Example usage:
//
//	import (
//	    "newsnexus/internal/observability/logging"
//	    "newsnexus/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    reg := metrics.New()
//	    reg.Inc("requests_total")
//	}
package observability
