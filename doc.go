// Package ccsession is the session and account coordinator for the
// CultureConnect client. It owns the current-user identity, runs the
// login/signup/OTP/password-reset flows against the PHP backend, and
// maintains the saved-accounts list that lets one browser session link
// multiple end-user accounts.
//
// The server session cookie is the single source of truth for identity.
// Everything this package holds (the normalized current user, the cache
// snapshot, the saved-accounts list) is a client-side mirror that is
// re-validated through [Coordinator.CheckSession] and discarded whenever
// the server disagrees.
//
// # Architecture boundaries
//
// ccsession is the public surface. It exposes [Coordinator], [Builder],
// [Config], and value types (User, MetricsSnapshot, AuditEvent). Flow
// orchestration, the backend wire client, the saved-accounts store, and
// flow-token handling live under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Decide authentication outcomes locally. The server answers; the
//     client applies fail-closed defaults when it cannot.
//   - Expose the HTTP client, wire envelopes, or cookie handling in its
//     public API.
//   - Import any sub-package that re-imports ccsession (no import cycles).
package ccsession
