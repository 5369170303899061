// Package strata is a middleware pipeline engine. It composes an ordered,
// configuration-declared list of middleware units into a single
// request/response processing chain with a precise execution contract:
// request-side hooks run outward-to-inward, response-side hooks
// inward-to-outward, a hook producing a response short-circuits the inward
// walk without skipping the outward one, view errors are offered to
// exception hooks in reverse order, and deferred template responses get
// exactly one render step. Streaming bodies are carried as lazy chunk
// sequences that transforming hooks wrap rather than drain.
//
// The chain is built once at startup and shared read-only by all in-flight
// requests; per-request data lives on the Request and Response values, never
// on the shared unit instances.
package strata
