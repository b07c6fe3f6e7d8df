// Package stores holds the coordinator's client-side state containers: the
// saved-accounts list and the two-source flow-state resolver.
//
// # Architecture boundaries
//
// Stores enforce the data invariants (no self-link, no duplicates, ephemeral
// token precedence) independently of the flows that consume them. They never
// perform network I/O themselves; server fallbacks are injected as
// functions.
//
// # What this package must NOT do
//
//   - Import the root package or internal/flows.
//   - Decide flow outcomes, invariant violations surface as sentinel
//     errors and the caller decides what the user sees.
package stores
