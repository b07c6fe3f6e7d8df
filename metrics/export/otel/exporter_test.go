package otel

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	ccsession "github.com/Harshit-Bhuju/CultureConnect-sub001"
)

type fakeSource struct {
	snapshot ccsession.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() ccsession.MetricsSnapshot { return f.snapshot }
func (f *fakeSource) AuditDropped() uint64                       { return f.dropped }

func testSource() *fakeSource {
	return &fakeSource{
		snapshot: ccsession.MetricsSnapshot{
			Counters: map[ccsession.MetricID]uint64{
				ccsession.MetricSessionCheckSuccess: 5,
				ccsession.MetricLogout:              2,
			},
			Histograms: map[ccsession.MetricID][]uint64{
				ccsession.MetricSessionCheckLatency: {1, 0, 0, 0, 0, 0, 0, 2},
			},
		},
		dropped: 1,
	}
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect = %v", err)
	}
	return rm
}

func findMetric(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Metrics {
	t.Helper()
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				return m
			}
		}
	}
	t.Fatalf("metric %q not collected", name)
	return metricdata.Metrics{}
}

func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(t, rm, name)
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 {
		t.Fatalf("metric %q has unexpected data %T", name, m.Data)
	}
	return sum.DataPoints[0].Value
}

func gaugeValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(t, rm, name)
	gauge, ok := m.Data.(metricdata.Gauge[int64])
	if !ok || len(gauge.DataPoints) != 1 {
		t.Fatalf("metric %q has unexpected data %T", name, m.Data)
	}
	return gauge.DataPoints[0].Value
}

func TestExporterObservesCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	exp, err := NewOTelExporterFromSource(provider.Meter("test"), testSource())
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource = %v", err)
	}
	t.Cleanup(func() { _ = exp.Close() })

	rm := collect(t, reader)
	if got := counterValue(t, rm, "ccsession_session_check_success_total"); got != 5 {
		t.Fatalf("session check success = %d", got)
	}
	if got := counterValue(t, rm, "ccsession_logout_total"); got != 2 {
		t.Fatalf("logout = %d", got)
	}
	if got := counterValue(t, rm, "ccsession_audit_dropped_total"); got != 1 {
		t.Fatalf("audit dropped = %d", got)
	}
}

func TestExporterObservesHistogramBuckets(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	exp, err := NewOTelExporterFromSource(provider.Meter("test"), testSource())
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource = %v", err)
	}
	t.Cleanup(func() { _ = exp.Close() })

	rm := collect(t, reader)
	if got := gaugeValue(t, rm, "ccsession_session_check_latency_seconds_bucket_le_0_005"); got != 1 {
		t.Fatalf("first bucket = %d", got)
	}
	if got := gaugeValue(t, rm, "ccsession_session_check_latency_seconds_bucket_le_inf"); got != 3 {
		t.Fatalf("inf bucket = %d, want cumulative", got)
	}
	if got := gaugeValue(t, rm, "ccsession_session_check_latency_seconds_count"); got != 3 {
		t.Fatalf("count = %d", got)
	}
}

func TestExporterLiveUpdates(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	source := testSource()
	exp, err := NewOTelExporterFromSource(provider.Meter("test"), source)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource = %v", err)
	}
	t.Cleanup(func() { _ = exp.Close() })

	collect(t, reader)
	source.snapshot.Counters[ccsession.MetricSessionCheckSuccess] = 9

	rm := collect(t, reader)
	if got := counterValue(t, rm, "ccsession_session_check_success_total"); got != 9 {
		t.Fatalf("updated counter = %d", got)
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	if _, err := NewOTelExporterFromSource(nil, testSource()); !errors.Is(err, ErrNilMeter) {
		t.Fatalf("nil meter = %v, want ErrNilMeter", err)
	}
	if _, err := NewOTelExporterFromSource(provider.Meter("test"), nil); !errors.Is(err, ErrNilSource) {
		t.Fatalf("nil source = %v, want ErrNilSource", err)
	}

	var nilExp *OTelExporter
	if err := nilExp.Close(); err != nil {
		t.Fatalf("nil Close = %v", err)
	}
}
