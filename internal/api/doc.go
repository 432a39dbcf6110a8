// Package api exposes the launcher over HTTP: health and state
// probes, the app catalog, Prometheus metrics, and gamepad input via
// POST or a websocket stream. The API observes the loop through
// snapshots and feeds it through the input router; it never touches
// loop-owned state directly.
package api
