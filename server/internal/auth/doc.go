// Package auth builds the authentication headers for outbound notification
// calls.
//
// Headers(auth) maps a destination's config.Auth onto transport headers:
// basic auth becomes "Authorization: Basic <base64(user:pass)>", a token
// becomes "Authorization: Bearer <token>". Missing or incomplete credentials
// produce no headers rather than an error, since authentication is optional
// per destination.
package auth
