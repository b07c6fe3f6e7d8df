package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

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
				ccsession.MetricSessionCheckSuccess: 3,
				ccsession.MetricLoginApplied:        2,
				ccsession.MetricLinkSuccess:         1,
				ccsession.MetricSessionCheckFailure: 0,
			},
			Histograms: map[ccsession.MetricID][]uint64{
				ccsession.MetricSessionCheckLatency: {1, 0, 2, 0, 0, 0, 0, 1},
			},
		},
		dropped: 4,
	}
}

func TestRenderCounters(t *testing.T) {
	exp := NewPrometheusExporterFromSource(testSource())
	out := exp.Render()

	for _, want := range []string{
		"# HELP ccsession_session_check_success_total",
		"# TYPE ccsession_session_check_success_total counter",
		"ccsession_session_check_success_total 3",
		"ccsession_login_applied_total 2",
		"ccsession_link_success_total 1",
		"ccsession_session_check_failure_total 0",
		"ccsession_audit_dropped_total 4",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q\n%s", want, out)
		}
	}
}

func TestRenderHistogramIsCumulative(t *testing.T) {
	exp := NewPrometheusExporterFromSource(testSource())
	out := exp.Render()

	for _, want := range []string{
		"# TYPE ccsession_session_check_latency_seconds histogram",
		`ccsession_session_check_latency_seconds_bucket{le="0.005"} 1`,
		`ccsession_session_check_latency_seconds_bucket{le="0.01"} 1`,
		`ccsession_session_check_latency_seconds_bucket{le="0.025"} 3`,
		`ccsession_session_check_latency_seconds_bucket{le="+Inf"} 4`,
		"ccsession_session_check_latency_seconds_count 4",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q\n%s", want, out)
		}
	}
}

func TestRenderEmptySource(t *testing.T) {
	exp := NewPrometheusExporterFromSource(&fakeSource{
		snapshot: ccsession.MetricsSnapshot{
			Counters:   map[ccsession.MetricID]uint64{},
			Histograms: map[ccsession.MetricID][]uint64{},
		},
	})
	if out := exp.Render(); out != "" {
		t.Fatalf("empty source rendered output:\n%s", out)
	}

	var nilExp *PrometheusExporter
	if out := nilExp.Render(); out != "" {
		t.Fatalf("nil exporter rendered output:\n%s", out)
	}
}

func TestHandler(t *testing.T) {
	exp := NewPrometheusExporterFromSource(testSource())

	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "ccsession_session_check_success_total 3") {
		t.Fatalf("body missing counter:\n%s", rec.Body.String())
	}
}
