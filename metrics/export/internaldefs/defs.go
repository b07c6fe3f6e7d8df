package internaldefs

import (
	ccsession "github.com/Harshit-Bhuju/CultureConnect-sub001"
)

// CounterDef binds a coordinator counter to its stable export name.
type CounterDef struct {
	ID   ccsession.MetricID
	Name string
	Help string
}

// HistogramDef binds a coordinator histogram to its stable export name.
type HistogramDef struct {
	ID   ccsession.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter. Both exporters iterate this
// slice so names never diverge between backends.
var CounterDefs = []CounterDef{
	{ID: ccsession.MetricSessionCheckSuccess, Name: "ccsession_session_check_success_total", Help: "Session checks confirming a user."},
	{ID: ccsession.MetricSessionCheckAnonymous, Name: "ccsession_session_check_anonymous_total", Help: "Session checks reporting no user."},
	{ID: ccsession.MetricSessionCheckFailure, Name: "ccsession_session_check_failure_total", Help: "Session checks that failed and fell closed."},
	{ID: ccsession.MetricStaleIdentityDiscarded, Name: "ccsession_stale_identity_discarded_total", Help: "Session-check responses discarded as stale."},
	{ID: ccsession.MetricCacheRehydrate, Name: "ccsession_cache_rehydrate_total", Help: "Optimistic restores from the user cache."},
	{ID: ccsession.MetricCacheFailure, Name: "ccsession_cache_failure_total", Help: "User cache load, save, or clear errors."},
	{ID: ccsession.MetricLoginApplied, Name: "ccsession_login_applied_total", Help: "Local identity installs."},
	{ID: ccsession.MetricAccountSwitch, Name: "ccsession_account_switch_total", Help: "Identity installs replacing another authenticated account."},
	{ID: ccsession.MetricLogout, Name: "ccsession_logout_total", Help: "Logout operations."},
	{ID: ccsession.MetricLogoutServerError, Name: "ccsession_logout_server_error_total", Help: "Best-effort server logout calls that failed."},
	{ID: ccsession.MetricLinkSuccess, Name: "ccsession_link_success_total", Help: "Newly saved account links."},
	{ID: ccsession.MetricLinkAlreadyLinked, Name: "ccsession_link_already_linked_total", Help: "Link attempts the server had already saved."},
	{ID: ccsession.MetricLinkSelfRejected, Name: "ccsession_link_self_rejected_total", Help: "Self-link precondition rejections."},
	{ID: ccsession.MetricLinkDuplicateRejected, Name: "ccsession_link_duplicate_rejected_total", Help: "Duplicate-link precondition rejections."},
	{ID: ccsession.MetricLinkPersistFailure, Name: "ccsession_link_persist_failure_total", Help: "Links the server refused to save."},
	{ID: ccsession.MetricLinkSyncFailure, Name: "ccsession_link_sync_failure_total", Help: "Saved links whose session re-check failed."},
	{ID: ccsession.MetricOTPVerifySuccess, Name: "ccsession_otp_verify_success_total", Help: "Accepted verification codes."},
	{ID: ccsession.MetricOTPVerifyFailure, Name: "ccsession_otp_verify_failure_total", Help: "Rejected or failed verifications."},
	{ID: ccsession.MetricOTPResend, Name: "ccsession_otp_resend_total", Help: "Accepted resend requests."},
	{ID: ccsession.MetricOTPResendBlocked, Name: "ccsession_otp_resend_blocked_total", Help: "Resends refused by the countdown."},
	{ID: ccsession.MetricSignupSuccess, Name: "ccsession_signup_success_total", Help: "Accepted signup requests."},
	{ID: ccsession.MetricSignupFailure, Name: "ccsession_signup_failure_total", Help: "Rejected or failed signups."},
	{ID: ccsession.MetricGoogleLoginKnown, Name: "ccsession_google_login_known_total", Help: "Google logins matching an existing account."},
	{ID: ccsession.MetricGoogleLoginUnknown, Name: "ccsession_google_login_unknown_total", Help: "Google logins needing account completion."},
	{ID: ccsession.MetricPasswordResetRequest, Name: "ccsession_password_reset_request_total", Help: "Forgot-password requests."},
	{ID: ccsession.MetricPasswordChangeSuccess, Name: "ccsession_password_change_success_total", Help: "Applied password changes."},
	{ID: ccsession.MetricPasswordChangeFailure, Name: "ccsession_password_change_failure_total", Help: "Rejected password changes."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: ccsession.MetricSessionCheckLatency, Name: "ccsession_session_check_latency_seconds", Help: "Session check latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, Prometheus form.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are the bound labels in instrument-name-safe form.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form
// both exporters emit.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
