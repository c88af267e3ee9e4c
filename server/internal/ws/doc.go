// Package ws streams delivery events to WebSocket clients.
//
// New(hello) creates a Hub. Hub.Run(ctx) broadcasts published events until
// ctx is cancelled, then closes all active connections. Hub.ServeHTTP upgrades
// the connection, sends the hello message (the current relay configuration)
// and then streams every event passed to Hub.Publish.
//
// Message format sent to clients:
//
//	{"event": "config",   "data": { /* same schema as GET /config */ }}
//	{"event": "delivery", "data": { /* one dispatch report */ }}
//
// Clients whose send buffer fills up are disconnected. The upgrader accepts
// all origins. The endpoint is mounted at /ws/stream.
package ws
