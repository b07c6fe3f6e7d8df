// Package cache provides the durable client-side store for the serialized
// current user, the equivalent of the browser's local storage entry. It is
// rehydrated optimistically at startup and overwritten as soon as the
// server confirms session state.
//
// # Backends
//
//   - [Memory]: process-lifetime only; the default.
//   - [File]: a single JSON file, for CLI and desktop embedding.
//   - [Redis]: for shared-device deployments where several processes front
//     one kiosk session.
//
// # Architecture boundaries
//
// The cache stores opaque bytes. Serialization of the User and the decision
// of when to write belong to the coordinator; the cache is never an
// independent source of truth, only a hint consumed before the first
// session check.
//
// # What this package must NOT do
//
//   - Validate or interpret the stored payload.
//   - Import the root package.
package cache
