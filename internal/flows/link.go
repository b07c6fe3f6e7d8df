package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/httpapi"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/stores"
)

var (
	// ErrNoActiveAccount is returned when linking is attempted without an
	// authenticated account to link against.
	ErrNoActiveAccount = errors.New("no active account to link against")
	// ErrLinkPersist is returned when the server refuses or fails to save
	// the link pair.
	ErrLinkPersist = errors.New("could not save linked account")
	// ErrSessionSync is returned when the link was saved but the follow-up
	// session re-check failed; the caller must still land the user in a
	// safe state.
	ErrSessionSync = errors.New("session re-check after linking failed")
)

// LinkDeps carries the linking flow's dependencies. All fields are
// required.
type LinkDeps struct {
	// ActiveEmail returns the canonical email of the authenticated account.
	ActiveEmail func() (string, bool)
	// CheckCandidate validates the client-side preconditions, in order:
	// self-link first, then duplicate.
	CheckCandidate func(email string) error
	// SaveLink persists the (original, candidate) pair server-side and
	// returns the wire status.
	SaveLink func(ctx context.Context, originalEmail, accountEmail string) (string, error)
	// CheckSession re-reads the server session. The server decides which
	// account's cookie survived the linking call; the client never assumes.
	CheckSession func(ctx context.Context) (*httpapi.SessionEnvelope, error)
}

// LinkResult is the successful outcome of RunLink.
type LinkResult struct {
	// Raw is the server's post-link active account, to be normalized and
	// installed as the new identity with the account-switch flag set.
	Raw *httpapi.RawUser
	// AlreadyLinked is true when the server answered "exists": the pair
	// was linked previously, which the flow treats as success.
	AlreadyLinked bool
}

// RunLink executes the account-linking protocol. Precondition violations
// (stores.ErrSelfLink, stores.ErrDuplicateLink) return before any server
// call. A saved link followed by a failed session re-check returns the
// partial result alongside ErrSessionSync.
func RunLink(ctx context.Context, accountEmail string, deps LinkDeps) (*LinkResult, error) {
	candidate := stores.CanonicalEmail(accountEmail)
	if candidate == "" {
		return nil, fmt.Errorf("%w: empty candidate email", ErrLinkPersist)
	}

	original, ok := deps.ActiveEmail()
	if !ok {
		return nil, ErrNoActiveAccount
	}
	if err := deps.CheckCandidate(candidate); err != nil {
		return nil, err
	}

	status, err := deps.SaveLink(ctx, original, candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLinkPersist, err)
	}

	result := &LinkResult{}
	switch status {
	case httpapi.StatusSuccess:
	case httpapi.StatusExists:
		result.AlreadyLinked = true
	default:
		return nil, fmt.Errorf("%w: status %q", ErrLinkPersist, status)
	}

	env, err := deps.CheckSession(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrSessionSync, err)
	}
	if !env.LoggedIn || env.User == nil {
		return result, fmt.Errorf("%w: server reports no active session", ErrSessionSync)
	}

	result.Raw = env.User
	return result, nil
}
