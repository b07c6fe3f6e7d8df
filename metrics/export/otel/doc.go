// Package otel provides OpenTelemetry metric bindings for coordinator
// counters and histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each
// counter and Int64ObservableGauge instruments per histogram bucket. A
// single callback reads [ccsession.Coordinator.MetricsSnapshot] on each
// collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider; callers supply the Meter.
//   - Mutate coordinator state.
package otel
