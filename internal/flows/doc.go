// Package flows contains the orchestration logic for the coordinator's
// multi-step operations: account linking and OTP verification.
//
// RunLink is a pure function over an injected dependency set, so the whole
// linking protocol (precondition order, idempotent save, session re-check)
// is unit-testable without a coordinator or a live backend. OTPSession is
// the one stateful type here: it is the explicit per-screen state machine
// for code entry (auto-submit latch, resend countdown) and owns no I/O.
//
// # Architecture boundaries
//
// Flows coordinate calls to the backend client and the stores through
// dependency structs. Ownership of those resources stays with the root
// coordinator.
//
// # What this package must NOT do
//
//   - Import the root package (no import cycles).
//   - Touch the durable cache or emit audit events; the coordinator does
//     both around flow results.
package flows
