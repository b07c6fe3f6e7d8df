// Package httpapi is the wire client for the CultureConnect PHP backend.
//
// The backend speaks JSON responses over form-encoded POSTs and plain GETs,
// authenticated by a session cookie. Every request goes through the cookie
// jar so the server session stays authoritative; this package never
// interprets identity, it only moves envelopes.
//
// # Architecture boundaries
//
// httpapi owns endpoint paths, request encoding, and the permissive RawUser
// boundary schema. Normalization of RawUser into the strict User type
// happens in the root package; flow orchestration happens in
// internal/flows.
//
// # What this package must NOT do
//
//   - Hold identity state or caches.
//   - Retry failed requests (session checks fail closed, callers decide).
//   - Leak the loose RawUser shape past normalization.
package httpapi
