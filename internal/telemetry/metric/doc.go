// Package metric provides Prometheus metrics for the WasteWise client.
//
//   - prometheus.go: registry, HTTP handler, recording helpers
//   - collector.go: session collector sampled at scrape time
//
// All recording helpers are nil-safe so components can run without a
// registry. Metrics are exposed by `wastewise watch --metrics-addr`.
package metric
