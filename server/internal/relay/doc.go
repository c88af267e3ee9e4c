// Package relay is the service boundary of alertrelay.
//
// Service ties the pieces together for each call: it takes one snapshot of
// the resolved destinations, formats each alert, fans it out with the
// dispatcher and aggregates the per-destination outcomes.
//
//	Intake(ctx, body)  webhook batch -> IntakeResponse
//	Test(ctx)          synthetic notification -> dispatch.Report
//	Introspect()       destinations (name, url, has_auth) and topic
//	Health()           destination count, urls and topic
//
// Intake errors are ErrBadPayload (caller error) or ErrInternal (opaque).
package relay
