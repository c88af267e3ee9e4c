// Package dispatch fans one notification out to every configured server.
//
// Dispatcher.Dispatch(ctx, notification, resolved) sends
//
//	POST <server url>/<topic>
//	Title: <sanitized title>
//	Priority: urgent|high|default|low
//	Tags: <sanitized, comma-joined tags>
//	Content-Type: text/plain; charset=utf-8
//	Authorization: <per-server, when configured>
//
// with the notification body as payload, once per server, and returns a
// Report with one Outcome per server in configuration order:
//   - success: the server answered 2xx
//   - failed:  transport error, timeout, or non-2xx status
//   - error:   any other fault (bad URL, panic) while handling that server
//
// There are no retries. Sends run sequentially unless WithConcurrency allows
// more; ordering of the Report does not depend on completion order.
package dispatch
