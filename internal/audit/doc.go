// Package audit implements async event dispatching for session-relevant
// operations: logins, logouts, session checks, linking, OTP outcomes.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, no-op).
//   - [Event]: structured audit record with timestamp, type, user email,
//     and metadata.
//
// # Architecture boundaries
//
// This package owns event shapes and sink delivery. It does NOT decide
// which events to emit; that responsibility belongs to the coordinator.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import the root package or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
