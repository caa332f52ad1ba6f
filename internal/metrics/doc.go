// Package metrics records scan outcomes as Prometheus metrics.
//
// The CLI runs as a short-lived process, so instead of serving /metrics it
// writes the registry to a node_exporter textfile after each run.
package metrics
