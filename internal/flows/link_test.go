package flows

import (
	"context"
	"errors"
	"testing"

	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/httpapi"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/stores"
)

func testLinkDeps() LinkDeps {
	return LinkDeps{
		ActiveEmail: func() (string, bool) { return "owner@example.com", true },
		CheckCandidate: func(string) error { return nil },
		SaveLink: func(_ context.Context, _, _ string) (string, error) {
			return httpapi.StatusSuccess, nil
		},
		CheckSession: func(context.Context) (*httpapi.SessionEnvelope, error) {
			return &httpapi.SessionEnvelope{
				LoggedIn: true,
				User:     &httpapi.RawUser{Email: "owner@example.com"},
			}, nil
		},
	}
}

func TestRunLinkSuccess(t *testing.T) {
	deps := testLinkDeps()

	var savedOriginal, savedCandidate string
	deps.SaveLink = func(_ context.Context, original, candidate string) (string, error) {
		savedOriginal, savedCandidate = original, candidate
		return httpapi.StatusSuccess, nil
	}

	res, err := RunLink(context.Background(), "  Other@Example.COM ", deps)
	if err != nil {
		t.Fatalf("RunLink = %v", err)
	}
	if res.AlreadyLinked {
		t.Fatal("fresh link reported AlreadyLinked")
	}
	if res.Raw == nil || res.Raw.Email != "owner@example.com" {
		t.Fatalf("unexpected post-link user: %+v", res.Raw)
	}
	if savedOriginal != "owner@example.com" || savedCandidate != "other@example.com" {
		t.Fatalf("SaveLink got (%q, %q), want canonical pair", savedOriginal, savedCandidate)
	}
}

func TestRunLinkExistsIsSuccess(t *testing.T) {
	deps := testLinkDeps()
	deps.SaveLink = func(_ context.Context, _, _ string) (string, error) {
		return httpapi.StatusExists, nil
	}

	res, err := RunLink(context.Background(), "other@example.com", deps)
	if err != nil {
		t.Fatalf("RunLink = %v", err)
	}
	if !res.AlreadyLinked {
		t.Fatal("exists status not reported as AlreadyLinked")
	}
}

func TestRunLinkNoActiveAccount(t *testing.T) {
	deps := testLinkDeps()
	deps.ActiveEmail = func() (string, bool) { return "", false }
	deps.SaveLink = func(_ context.Context, _, _ string) (string, error) {
		t.Fatal("SaveLink called without an active account")
		return "", nil
	}

	if _, err := RunLink(context.Background(), "other@example.com", deps); !errors.Is(err, ErrNoActiveAccount) {
		t.Fatalf("RunLink = %v, want ErrNoActiveAccount", err)
	}
}

func TestRunLinkPreconditionBeforeServer(t *testing.T) {
	deps := testLinkDeps()
	deps.CheckCandidate = func(string) error { return stores.ErrSelfLink }
	deps.SaveLink = func(_ context.Context, _, _ string) (string, error) {
		t.Fatal("SaveLink called despite failing precondition")
		return "", nil
	}

	if _, err := RunLink(context.Background(), "owner@example.com", deps); !errors.Is(err, stores.ErrSelfLink) {
		t.Fatalf("RunLink = %v, want ErrSelfLink", err)
	}
}

func TestRunLinkPersistFailure(t *testing.T) {
	deps := testLinkDeps()
	deps.SaveLink = func(_ context.Context, _, _ string) (string, error) {
		return "", errors.New("boom")
	}

	if _, err := RunLink(context.Background(), "other@example.com", deps); !errors.Is(err, ErrLinkPersist) {
		t.Fatalf("RunLink = %v, want ErrLinkPersist", err)
	}

	deps.SaveLink = func(_ context.Context, _, _ string) (string, error) {
		return httpapi.StatusError, nil
	}
	if _, err := RunLink(context.Background(), "other@example.com", deps); !errors.Is(err, ErrLinkPersist) {
		t.Fatalf("RunLink with error status = %v, want ErrLinkPersist", err)
	}
}

func TestRunLinkSyncFailureReturnsPartialResult(t *testing.T) {
	deps := testLinkDeps()
	deps.CheckSession = func(context.Context) (*httpapi.SessionEnvelope, error) {
		return nil, errors.New("network down")
	}

	res, err := RunLink(context.Background(), "other@example.com", deps)
	if !errors.Is(err, ErrSessionSync) {
		t.Fatalf("RunLink = %v, want ErrSessionSync", err)
	}
	if res == nil {
		t.Fatal("partial result missing alongside ErrSessionSync")
	}
	if res.Raw != nil {
		t.Fatal("partial result must not carry a user")
	}
}

func TestRunLinkSyncLoggedOutIsSyncFailure(t *testing.T) {
	deps := testLinkDeps()
	deps.CheckSession = func(context.Context) (*httpapi.SessionEnvelope, error) {
		return &httpapi.SessionEnvelope{LoggedIn: false}, nil
	}

	if _, err := RunLink(context.Background(), "other@example.com", deps); !errors.Is(err, ErrSessionSync) {
		t.Fatalf("RunLink = %v, want ErrSessionSync", err)
	}
}
