package stores

import (
	"errors"
	"strings"
	"sync"
)

var (
	// ErrSelfLink is returned when the candidate email equals the active
	// account's email. Checked case-insensitively, before any server call.
	ErrSelfLink = errors.New("cannot link the currently active account")
	// ErrDuplicateLink is returned when the candidate email is already in
	// the saved-accounts list.
	ErrDuplicateLink = errors.New("account already linked")
)

// CanonicalEmail is the comparison key for account emails: trimmed and
// lowercased. Applying it twice yields the same result.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SavedAccounts is the set of other account emails linked to this device.
// Invariants: no entry equals the active account's email, no duplicates,
// all entries canonical. Safe for concurrent use.
type SavedAccounts struct {
	mu     sync.RWMutex
	active string
	emails []string
}

// NewSavedAccounts returns an empty list with no active account.
func NewSavedAccounts() *SavedAccounts {
	return &SavedAccounts{}
}

// SetActive records the currently authenticated account's email and drops
// it from the list if present, preserving the no-self-entry invariant
// across account switches.
func (s *SavedAccounts) SetActive(email string) {
	canonical := CanonicalEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = canonical
	if canonical == "" {
		return
	}
	for i, e := range s.emails {
		if e == canonical {
			s.emails = append(s.emails[:i], s.emails[i+1:]...)
			break
		}
	}
}

// Active returns the canonical email of the active account, if any.
func (s *SavedAccounts) Active() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.active != ""
}

// Check validates the linking preconditions for email, in order: self-link
// first, then duplicate. It does not mutate the list.
func (s *SavedAccounts) Check(email string) error {
	canonical := CanonicalEmail(email)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active != "" && canonical == s.active {
		return ErrSelfLink
	}
	for _, e := range s.emails {
		if e == canonical {
			return ErrDuplicateLink
		}
	}
	return nil
}

// Add appends email after re-validating the invariants.
func (s *SavedAccounts) Add(email string) error {
	canonical := CanonicalEmail(email)
	if canonical == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != "" && canonical == s.active {
		return ErrSelfLink
	}
	for _, e := range s.emails {
		if e == canonical {
			return ErrDuplicateLink
		}
	}
	s.emails = append(s.emails, canonical)
	return nil
}

// Replace swaps in a server-provided list, canonicalizing and dropping
// duplicates and the active account's own email.
func (s *SavedAccounts) Replace(emails []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, len(emails))
	seen := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		canonical := CanonicalEmail(e)
		if canonical == "" || canonical == s.active {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		next = append(next, canonical)
	}
	s.emails = next
}

// Contains reports whether email is in the list.
func (s *SavedAccounts) Contains(email string) bool {
	canonical := CanonicalEmail(email)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.emails {
		if e == canonical {
			return true
		}
	}
	return false
}

// List returns a copy of the saved emails in insertion order.
func (s *SavedAccounts) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.emails))
	copy(out, s.emails)
	return out
}
