// Package config resolves the set of notification servers the relay delivers
// to, and loads the process settings.
//
// Resolve(inputs, lookup) merges, highest precedence first:
//   - the server document (YAML or JSON) at NTFY_CONFIG, with ${NAME}
//     placeholders substituted from the environment before parsing
//   - NTFY_SERVERS, a JSON array of URLs or a comma-separated list
//   - NTFY_URL, a single legacy destination
//   - the built-in default http://ntfy.ntfy.svc.cluster.local
//
// Document schema:
//
//	topic: kubernetes-alerts
//	servers:
//	  - name: primary
//	    url: https://ntfy.example.com
//	    auth: {type: basic, username: relay, password: ${NTFY_PASSWORD}}
//	  - name: backup
//	    url: https://ntfy.backup.example.com
//	    auth: {type: token, token: ${NTFY_TOKEN}}
//
// A broken document is logged and skipped, never fatal. The result always has
// at least one destination and a non-empty topic.
//
// Holder publishes the current config to request handlers; Watch re-resolves
// on file changes and swaps the value in.
//
// LoadSettings reads RELAY_* and NTFY_* variables (after an optional .env
// file) and validates them.
package config
