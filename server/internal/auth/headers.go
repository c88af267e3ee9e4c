package auth

import (
	"encoding/base64"
	"net/http"

	"github.com/obsidianstack/alertrelay/server/internal/config"
)

// Headers returns the transport headers that authenticate a call to a
// destination configured with a.
//
// Behaviour:
//   - nil, AuthNone, or an unknown type yields an empty header set.
//   - AuthBasic needs a non-empty username and password, else empty.
//   - AuthBearer needs a non-empty token, else empty.
//
// The result is never nil. Callers must not log its values.
func Headers(a *config.Auth) http.Header {
	h := make(http.Header)
	if !a.Complete() {
		return h
	}

	switch a.Type {
	case config.AuthBasic:
		h.Set("Authorization", "Basic "+basicCredentials(a.Username, a.Password))
	case config.AuthBearer:
		h.Set("Authorization", "Bearer "+a.Token)
	}
	return h
}

// basicCredentials encodes user:pass as RFC 7617 requires.
func basicCredentials(user, pass string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
}
