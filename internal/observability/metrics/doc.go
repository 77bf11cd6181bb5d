// Package metrics provides an in-process counters-and-histograms registry.
//
// Unlike a Prometheus-style pull registry, this package is read synchronously
// by the tool surface's get_metrics operation: every histogram keeps a bounded
// reservoir of recent samples and computes percentiles on demand rather than
// exposing bucketed counters for external scraping.
package metrics
