// Package metrics keeps the relay's process counters and serves them in the
// Prometheus text format at GET /metrics.
//
//	alertrelay_alerts_received_total{status}
//	alertrelay_deliveries_total{destination,status}
//	alertrelay_webhook_requests_total{code}
//
// Counters are plain in-process values; nothing is persisted.
package metrics
