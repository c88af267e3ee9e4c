// Package api implements the HTTP boundary of alertrelay.
//
// New(service, metrics, stream) returns an http.Handler that serves:
//
//	POST     /webhook    Alertmanager batch -> per-alert delivery summary
//	GET      /health     status, server count, server urls, topic
//	GET      /config     servers (name, url, has_auth) and topic
//	GET|POST /test       send a test notification, with hints for failures
//	GET      /metrics    Prometheus text exposition
//	GET      /ws/stream  live delivery events (WebSocket)
//
// All JSON endpoints respond with Content-Type: application/json and
// {"error": "..."} bodies on failure. Wrong methods get 405, unknown paths
// 404. Invalid webhook payloads get 400; internal faults get an opaque 500.
package api
