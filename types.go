package ccsession

import (
	"io"

	internalaudit "github.com/Harshit-Bhuju/CultureConnect-sub001/internal/audit"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/flows"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/httpapi"
)

// State is the coordinator's identity state. The machine moves from
// StateInitializing to exactly one of the terminal states on the first
// session check and never returns to StateInitializing.
type State uint8

const (
	// StateInitializing means no session check has completed yet. Route
	// guards must hold rather than redirect while in this state.
	StateInitializing State = iota
	// StateAuthenticated means the server confirmed an active account.
	StateAuthenticated
	// StateAnonymous means the server reported no session, or the check
	// failed and the coordinator fell closed.
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Role drives route-guard branching. Unrecognized server roles collapse to
// RoleUser so a malformed payload can never grant elevated access.
type Role string

const (
	// RoleUser is the default customer role.
	RoleUser Role = "user"
	// RoleAdmin gates the administrative approval dashboard.
	RoleAdmin Role = "admin"
	// RoleDelivery gates the delivery staff views.
	RoleDelivery Role = "delivery"
)

// User is the normalized identity the rest of the application consumes.
// It is produced by [Normalizer.User] from the raw server payload and is
// safe to compare field-by-field: normalization is idempotent, emails are
// canonical, and the avatar URL is always absolute.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`

	// SellerID and TeacherID are empty when the account has not completed
	// the corresponding registration. Presence gates seller/teacher routes.
	SellerID  string `json:"seller_id,omitempty"`
	TeacherID string `json:"teacher_id,omitempty"`

	Avatar   string `json:"avatar"`
	Location string `json:"location,omitempty"`
	Gender   string `json:"gender,omitempty"`
}

// IsSeller reports whether the account finished seller registration.
func (u User) IsSeller() bool { return u.SellerID != "" }

// IsTeacher reports whether the account finished teacher registration.
func (u User) IsTeacher() bool { return u.TeacherID != "" }

// RawUser is the permissive wire shape of a user payload before
// normalization.
type RawUser = httpapi.RawUser

// AuditEvent is the record emitted to the configured [AuditSink].
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the coordinator's dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink discards audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink buffers audit events on a channel for test and pipeline
// consumption.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON-encoded audit event per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink builds a ChannelSink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink builds a JSONWriterSink targeting w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// OTPSession is the code-entry state machine handed out by
// [Coordinator.Signup] and [Coordinator.RequestPasswordReset]. It is not
// safe for concurrent use; one session belongs to one screen.
type OTPSession = flows.OTPSession

// OTPOrigin identifies which flow an OTP session belongs to.
type OTPOrigin = flows.OTPOrigin

const (
	// OriginSignup verifies a new account's email.
	OriginSignup = flows.OriginSignup
	// OriginPasswordReset verifies a forgot-password request.
	OriginPasswordReset = flows.OriginPasswordReset
)
