package flows

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrResendBlocked is returned when a resend is requested before the
	// countdown reaches zero.
	ErrResendBlocked = errors.New("resend not available yet")
	// ErrVerifyInFlight is returned when a verification is already running
	// for this session.
	ErrVerifyInFlight = errors.New("verification already in progress")
	// ErrCodeIncomplete is returned when verification is requested before
	// the buffer is full.
	ErrCodeIncomplete = errors.New("code incomplete")
)

// OTPOrigin identifies which flow the OTP screen belongs to; it decides
// what happens after a successful verification.
type OTPOrigin string

const (
	// OriginSignup verifies a new account's email. Success proceeds to
	// login, or into the account-linking flow when the session carries the
	// adding-account flag.
	OriginSignup OTPOrigin = "signup"
	// OriginPasswordReset verifies a forgot-password request. Success
	// proceeds to the change-password step; linking never applies.
	OriginPasswordReset OTPOrigin = "password_reset"
)

// OTPSession is the code-entry state machine: a fixed-size digit buffer,
// an auto-submit latch, and a resend countdown. It is not safe for
// concurrent use; one session belongs to one screen.
//
// The latch makes a full buffer trigger verification exactly once: Input
// and Paste report ready=true only on the transition to full, and the
// latch rearms only when the buffer drops below full again.
type OTPSession struct {
	digits        int
	resendWindow  time.Duration
	now           func() time.Time
	origin        OTPOrigin
	email         string
	addingAccount bool

	buffer    []byte
	latched   bool
	verifying bool
	resendAt  time.Time
}

// OTPConfig configures a session. Zero values fall back to 6 digits and a
// 60-second resend window.
type OTPConfig struct {
	Digits       int
	ResendWindow time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewOTPSession starts a session for the given origin. email is the address
// the code was sent to; addingAccount marks the signup-origin variant that
// continues into account linking. The resend countdown starts immediately,
// matching the code email that was just sent.
func NewOTPSession(cfg OTPConfig, origin OTPOrigin, email string, addingAccount bool) *OTPSession {
	digits := cfg.Digits
	if digits <= 0 {
		digits = 6
	}
	window := cfg.ResendWindow
	if window <= 0 {
		window = 60 * time.Second
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &OTPSession{
		digits:        digits,
		resendWindow:  window,
		now:           now,
		origin:        origin,
		email:         email,
		addingAccount: addingAccount,
		buffer:        make([]byte, 0, digits),
		resendAt:      now().Add(window),
	}
}

// Origin returns the flow this session belongs to.
func (s *OTPSession) Origin() OTPOrigin { return s.origin }

// Email returns the address the code was sent to.
func (s *OTPSession) Email() string { return s.email }

// AddingAccount reports whether a successful signup-origin verification
// continues into the account-linking flow.
func (s *OTPSession) AddingAccount() bool { return s.addingAccount }

// Code returns the current buffer contents.
func (s *OTPSession) Code() string { return string(s.buffer) }

// Full reports whether the buffer holds all digits.
func (s *OTPSession) Full() bool { return len(s.buffer) == s.digits }

// Input appends one digit. It returns true exactly when this keystroke
// filled the buffer and armed verification; further keystrokes on a full
// buffer are ignored and never re-trigger.
func (s *OTPSession) Input(digit byte) bool {
	if digit < '0' || digit > '9' {
		return false
	}
	if len(s.buffer) >= s.digits {
		return false
	}
	s.buffer = append(s.buffer, digit)
	return s.arm()
}

// Paste replaces the buffer with the digits of code, truncated to size.
// Returns true when the paste filled the buffer and armed verification.
func (s *OTPSession) Paste(code string) bool {
	code = strings.TrimSpace(code)
	s.buffer = s.buffer[:0]
	for i := 0; i < len(code) && len(s.buffer) < s.digits; i++ {
		if code[i] >= '0' && code[i] <= '9' {
			s.buffer = append(s.buffer, code[i])
		}
	}
	if len(s.buffer) < s.digits {
		s.latched = false
		return false
	}
	return s.arm()
}

// Backspace drops the last digit. Dropping below full rearms the latch.
func (s *OTPSession) Backspace() {
	if len(s.buffer) == 0 {
		return
	}
	s.buffer = s.buffer[:len(s.buffer)-1]
	s.latched = false
}

func (s *OTPSession) arm() bool {
	if len(s.buffer) != s.digits || s.latched {
		return false
	}
	s.latched = true
	return true
}

// BeginVerify acquires the verification-in-progress guard. It fails when a
// verification is already running or the buffer is not full.
func (s *OTPSession) BeginVerify() error {
	if s.verifying {
		return ErrVerifyInFlight
	}
	if len(s.buffer) != s.digits {
		return ErrCodeIncomplete
	}
	s.verifying = true
	return nil
}

// VerifyFailed records a failed verification: the buffer clears so the
// user can re-enter, the latch rearms, and the resend countdown is left
// untouched.
func (s *OTPSession) VerifyFailed() {
	s.verifying = false
	s.latched = false
	s.buffer = s.buffer[:0]
}

// VerifySucceeded releases the guard after a successful verification.
func (s *OTPSession) VerifySucceeded() {
	s.verifying = false
}

// ResendRemaining returns how long until a resend is permitted; zero means
// resend is available now.
func (s *OTPSession) ResendRemaining() time.Duration {
	remaining := s.resendAt.Sub(s.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Resend checks the countdown and, when permitted, resets it and clears
// the buffer for the fresh code. The caller performs the actual server
// resend only on nil error.
func (s *OTPSession) Resend() error {
	if s.ResendRemaining() > 0 {
		return ErrResendBlocked
	}
	s.resendAt = s.now().Add(s.resendWindow)
	s.buffer = s.buffer[:0]
	s.latched = false
	return nil
}
