// Package introspect exposes a read-only view of a registry over HTTP: JSON
// endpoints under /introspect/v1/, a Prometheus text exposition at /metrics,
// and a WebSocket hub that streams periodic record snapshots to debug UIs.
package introspect
