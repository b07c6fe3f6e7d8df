package httpapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Wire status values returned by the backend. The save-linked-account
// endpoint treats StatusExists the same as StatusSuccess (the pair may
// already be linked server-side from an earlier attempt).
const (
	StatusSuccess = "success"
	StatusExists  = "exists"
	StatusError   = "error"

	// Google login reports account existence instead of success/error.
	StatusGoogleKnown   = "not_null"
	StatusGoogleUnknown = "null"
)

// RawUser is the permissive boundary schema for user payloads. The backend
// is loosely typed: numeric fields arrive as numbers or strings, optional
// fields as absent, empty, null, or the literal strings "null"/"undefined".
// Nothing downstream of normalization may depend on this shape.
type RawUser struct {
	ID        any             `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	FullName  string          `json:"full_name"`
	Role      string          `json:"role"`
	SellerID  any             `json:"seller_id"`
	TeacherID any             `json:"teacher_id"`
	Avatar    string          `json:"avatar"`
	Picture   string          `json:"picture"`
	Location  json.RawMessage `json:"location"`
	Gender    string          `json:"gender"`
}

// RawLocation is the structured form the backend sometimes uses for the
// location field. The same field may also arrive as a plain string.
type RawLocation struct {
	Province     string `json:"province"`
	District     string `json:"district"`
	Municipality string `json:"municipality"`
	Ward         any    `json:"ward"`
}

// StringID renders a loosely typed identifier field ("42", 42, 42.0, null)
// as a plain string. Absent and null both yield "".
func StringID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(t)
		if s == "null" || s == "undefined" {
			return ""
		}
		return s
	case json.Number:
		return t.String()
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// SessionEnvelope is the check-session response shape.
type SessionEnvelope struct {
	Status   string   `json:"status"`
	LoggedIn bool     `json:"logged_in"`
	User     *RawUser `json:"user,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// AuthEnvelope is returned by login, OTP verification, and set-password.
type AuthEnvelope struct {
	Status  string   `json:"status"`
	User    *RawUser `json:"user,omitempty"`
	Message string   `json:"message,omitempty"`
}

// GoogleEnvelope is returned by the Google login endpoint. Status is
// "not_null" when an account exists for the Google email, "null" otherwise.
type GoogleEnvelope struct {
	Status  string   `json:"status"`
	User    *RawUser `json:"user,omitempty"`
	Message string   `json:"message,omitempty"`
}

// StatusEnvelope is the generic {status, message} response.
type StatusEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// AccountsEnvelope is returned by the linked-accounts listing endpoint.
type AccountsEnvelope struct {
	Status   string   `json:"status"`
	Accounts []string `json:"accounts,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// FlowEnvelope mirrors a server-session flow key (pending signup or reset
// email). Used as the authoritative fallback when no ephemeral flow token
// is held client-side.
type FlowEnvelope struct {
	Status  string `json:"status"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`
}

// UsernameEnvelope is returned by the username availability pre-check.
// The check races with other signups; it is a UX hint, not a reservation.
type UsernameEnvelope struct {
	Status    string `json:"status"`
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}
