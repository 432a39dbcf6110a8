// Package monitoring exposes Prometheus metrics for the launcher core:
// frame pacing, app lifecycle, faults, input flow, and the websocket
// gamepad. Scraped via the debug HTTP surface at /metrics.
package monitoring
