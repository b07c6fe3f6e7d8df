package flowtoken

import (
	"errors"
	"testing"
	"time"
)

func newTestManager(t *testing.T, now *time.Time) *Manager {
	t.Helper()
	m, err := New(Config{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		TTL:    15 * time.Minute,
		Now:    func() time.Time { return *now },
	})
	if err != nil {
		t.Fatalf("New = %v", err)
	}
	return m
}

func TestNewRejectsWeakConfig(t *testing.T) {
	if _, err := New(Config{Secret: []byte("short"), TTL: time.Minute}); err == nil {
		t.Fatal("New accepted a short secret")
	}
	if _, err := New(Config{Secret: []byte("0123456789abcdef"), TTL: 0}); err == nil {
		t.Fatal("New accepted a zero TTL")
	}
}

func TestIssueConsumeRoundTrip(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, &now)

	token, err := m.Issue(PurposeOTPEmail, "user@example.com")
	if err != nil {
		t.Fatalf("Issue = %v", err)
	}
	email, err := m.Consume(token, PurposeOTPEmail)
	if err != nil {
		t.Fatalf("Consume = %v", err)
	}
	if email != "user@example.com" {
		t.Fatalf("Consume returned %q", email)
	}
}

func TestConsumeIsSingleUse(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, &now)

	token, err := m.Issue(PurposeOTPEmail, "user@example.com")
	if err != nil {
		t.Fatalf("Issue = %v", err)
	}
	if _, err := m.Consume(token, PurposeOTPEmail); err != nil {
		t.Fatalf("first Consume = %v", err)
	}
	if _, err := m.Consume(token, PurposeOTPEmail); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("replayed Consume = %v, want ErrTokenInvalid", err)
	}
}

func TestConsumeRejectsWrongPurpose(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, &now)

	token, err := m.Issue(PurposeOTPEmail, "user@example.com")
	if err != nil {
		t.Fatalf("Issue = %v", err)
	}
	if _, err := m.Consume(token, PurposeResetEmail); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("cross-purpose Consume = %v, want ErrTokenInvalid", err)
	}
	// A rejected attempt must not retire the token.
	if _, err := m.Consume(token, PurposeOTPEmail); err != nil {
		t.Fatalf("Consume after rejected attempt = %v", err)
	}
}

func TestConsumeRejectsExpired(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, &now)

	token, err := m.Issue(PurposeResetEmail, "user@example.com")
	if err != nil {
		t.Fatalf("Issue = %v", err)
	}

	now = now.Add(16 * time.Minute)
	if _, err := m.Consume(token, PurposeResetEmail); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expired Consume = %v, want ErrTokenInvalid", err)
	}
}

func TestConsumeRejectsGarbage(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, &now)

	if _, err := m.Consume("not-a-token", PurposeOTPEmail); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Consume(garbage) = %v, want ErrTokenInvalid", err)
	}
}
