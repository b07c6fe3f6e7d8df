package ccsession

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one in-process counter.
type MetricID uint16

const (
	// MetricSessionCheckSuccess counts session checks confirming a user.
	MetricSessionCheckSuccess MetricID = iota
	// MetricSessionCheckAnonymous counts session checks reporting no user.
	MetricSessionCheckAnonymous
	// MetricSessionCheckFailure counts session checks that failed and
	// fell closed.
	MetricSessionCheckFailure
	// MetricStaleIdentityDiscarded counts session-check responses dropped
	// because the identity changed while the request was in flight.
	MetricStaleIdentityDiscarded
	// MetricCacheRehydrate counts optimistic restores from the user cache.
	MetricCacheRehydrate
	// MetricCacheFailure counts cache load/save/clear errors.
	MetricCacheFailure
	// MetricLoginApplied counts local identity installs.
	MetricLoginApplied
	// MetricAccountSwitch counts installs that replaced another
	// authenticated account.
	MetricAccountSwitch
	// MetricLogout counts logouts.
	MetricLogout
	// MetricLogoutServerError counts logouts whose best-effort server
	// call failed.
	MetricLogoutServerError
	// MetricLinkSuccess counts newly saved account links.
	MetricLinkSuccess
	// MetricLinkAlreadyLinked counts links the server had already saved.
	MetricLinkAlreadyLinked
	// MetricLinkSelfRejected counts self-link precondition rejections.
	MetricLinkSelfRejected
	// MetricLinkDuplicateRejected counts duplicate-link rejections.
	MetricLinkDuplicateRejected
	// MetricLinkPersistFailure counts links the server refused to save.
	MetricLinkPersistFailure
	// MetricLinkSyncFailure counts saved links whose follow-up session
	// re-check failed.
	MetricLinkSyncFailure
	// MetricOTPVerifySuccess counts accepted verification codes.
	MetricOTPVerifySuccess
	// MetricOTPVerifyFailure counts rejected or failed verifications.
	MetricOTPVerifyFailure
	// MetricOTPResend counts accepted resend requests.
	MetricOTPResend
	// MetricOTPResendBlocked counts resends refused by the countdown.
	MetricOTPResendBlocked
	// MetricSignupSuccess counts accepted signup requests.
	MetricSignupSuccess
	// MetricSignupFailure counts rejected or failed signups.
	MetricSignupFailure
	// MetricGoogleLoginKnown counts Google logins with an existing account.
	MetricGoogleLoginKnown
	// MetricGoogleLoginUnknown counts Google logins needing completion.
	MetricGoogleLoginUnknown
	// MetricPasswordResetRequest counts forgot-password requests.
	MetricPasswordResetRequest
	// MetricPasswordChangeSuccess counts applied password changes.
	MetricPasswordChangeSuccess
	// MetricPasswordChangeFailure counts rejected password changes.
	MetricPasswordChangeFailure
	// MetricSessionCheckLatency is the session-check latency histogram.
	MetricSessionCheckLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the in-process counters. All methods are safe for
// concurrent use and no-ops on a nil or disabled receiver.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics builds a Metrics set from configuration.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are collected.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram is collected.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments a counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a session-check duration in the latency histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricSessionCheckLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters and histogram buckets.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricSessionCheckLatency].buckets[i])
		}
		s.Histograms[MetricSessionCheckLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
