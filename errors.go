package ccsession

import (
	"errors"

	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/flows"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/httpapi"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/stores"
)

var (
	// ErrCoordinatorClosed is returned after Close.
	ErrCoordinatorClosed = errors.New("coordinator is closed")
	// ErrNotAuthenticated is returned by operations that require an active
	// account when there is none.
	ErrNotAuthenticated = errors.New("no authenticated account")
	// ErrInvalidCredentials is returned when the server rejects a
	// login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when signup is rejected because the email
	// already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrOTPInvalid is returned when the server rejects the entered code.
	ErrOTPInvalid = errors.New("verification code rejected")
	// ErrGoogleAccountUnknown is returned when the Google email has no
	// CultureConnect account yet; the caller should continue into the
	// set-password completion step.
	ErrGoogleAccountUnknown = errors.New("no account for this google email")
	// ErrPasswordChange is returned when the server rejects a password
	// change or set-password request.
	ErrPasswordChange = errors.New("password change rejected")
)

// Sentinels surfaced from internal packages so callers match against one
// import path.
var (
	// ErrBackendUnavailable wraps transport-level failures talking to the
	// backend. All identity decisions on this error are fail-closed.
	ErrBackendUnavailable = httpapi.ErrUnavailable
	// ErrSelfLink rejects linking the active account to itself.
	ErrSelfLink = stores.ErrSelfLink
	// ErrDuplicateLink rejects linking an already-saved account.
	ErrDuplicateLink = stores.ErrDuplicateLink
	// ErrNoActiveAccount rejects linking without an authenticated account.
	ErrNoActiveAccount = flows.ErrNoActiveAccount
	// ErrLinkPersist means the server refused or failed to save the link.
	ErrLinkPersist = flows.ErrLinkPersist
	// ErrSessionSync means the link was saved but the authoritative
	// session re-check failed; the coordinator has fallen to a safe state.
	ErrSessionSync = flows.ErrSessionSync
	// ErrResendBlocked means the OTP resend countdown has not reached zero.
	ErrResendBlocked = flows.ErrResendBlocked
	// ErrVerifyInFlight means an OTP verification is already running.
	ErrVerifyInFlight = flows.ErrVerifyInFlight
	// ErrCodeIncomplete means the OTP buffer is not full yet.
	ErrCodeIncomplete = flows.ErrCodeIncomplete
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = flows.ErrInvalidInput
	// ErrFlowStateMissing means neither a flow token nor the server
	// session authorizes the gated step.
	ErrFlowStateMissing = stores.ErrFlowStateMissing
)
