package ccsession

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventSessionConfirmed  = "session_confirmed"
	auditEventSessionAnonymous  = "session_anonymous"
	auditEventSessionCheckError = "session_check_error"
	auditEventStaleDiscarded    = "stale_response_discarded"
	auditEventLoginApplied      = "login_applied"
	auditEventAccountSwitch     = "account_switch"
	auditEventLogout            = "logout"
	auditEventLinkSaved         = "link_saved"
	auditEventLinkRejected      = "link_rejected"
	auditEventLinkSyncFailed    = "link_sync_failed"
	auditEventOTPVerified       = "otp_verified"
	auditEventOTPFailed         = "otp_failed"
	auditEventOTPResent         = "otp_resent"
	auditEventSignupRequested   = "signup_requested"
	auditEventSignupFailed      = "signup_failed"
	auditEventGoogleLogin       = "google_login"
	auditEventResetRequested    = "password_reset_requested"
	auditEventPasswordChanged   = "password_changed"
	auditEventPasswordFailed    = "password_change_failed"
)

// AuditErrorCode is the stable error identifier carried on audit events.
type AuditErrorCode string

const (
	auditErrUnavailable      AuditErrorCode = "backend_unavailable"
	auditErrCredentials      AuditErrorCode = "invalid_credentials"
	auditErrEmailTaken       AuditErrorCode = "email_taken"
	auditErrSelfLink         AuditErrorCode = "self_link"
	auditErrDuplicateLink    AuditErrorCode = "duplicate_link"
	auditErrNoActiveAccount  AuditErrorCode = "no_active_account"
	auditErrLinkPersist      AuditErrorCode = "link_persist_failed"
	auditErrSessionSync      AuditErrorCode = "session_sync_failed"
	auditErrOTPInvalid       AuditErrorCode = "otp_invalid"
	auditErrResendBlocked    AuditErrorCode = "resend_blocked"
	auditErrInvalidInput     AuditErrorCode = "invalid_input"
	auditErrFlowStateMissing AuditErrorCode = "flow_state_missing"
	auditErrGoogleUnknown    AuditErrorCode = "google_account_unknown"
	auditErrPasswordChange   AuditErrorCode = "password_change_rejected"
	auditErrInternal         AuditErrorCode = "internal_error"
)

func (c *Coordinator) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userEmail string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserEmail: userEmail,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	c.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrBackendUnavailable):
		return auditErrUnavailable
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrCredentials
	case errors.Is(err, ErrEmailTaken):
		return auditErrEmailTaken
	case errors.Is(err, ErrSelfLink):
		return auditErrSelfLink
	case errors.Is(err, ErrDuplicateLink):
		return auditErrDuplicateLink
	case errors.Is(err, ErrNoActiveAccount):
		return auditErrNoActiveAccount
	case errors.Is(err, ErrSessionSync):
		return auditErrSessionSync
	case errors.Is(err, ErrLinkPersist):
		return auditErrLinkPersist
	case errors.Is(err, ErrOTPInvalid):
		return auditErrOTPInvalid
	case errors.Is(err, ErrResendBlocked):
		return auditErrResendBlocked
	case errors.Is(err, ErrInvalidInput):
		return auditErrInvalidInput
	case errors.Is(err, ErrFlowStateMissing):
		return auditErrFlowStateMissing
	case errors.Is(err, ErrGoogleAccountUnknown):
		return auditErrGoogleUnknown
	case errors.Is(err, ErrPasswordChange):
		return auditErrPasswordChange
	default:
		return auditErrInternal
	}
}
