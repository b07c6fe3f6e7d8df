// Package prometheus renders coordinator metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] accepts a [ccsession.Coordinator] and exposes an
// [http.Handler] serving all counters and histograms. Counter names are
// prefixed ccsession_*_total; the single histogram is
// ccsession_session_check_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate coordinator state.
package prometheus
