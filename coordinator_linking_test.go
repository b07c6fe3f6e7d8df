package ccsession

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLinkAccountSwitchesToServerIdentity(t *testing.T) {
	backend := newFakeBackend(t)
	notifier := NewChannelNotifier(8)
	c := newTestCoordinator(t, backend, func(b *Builder) {
		b.WithNotifier(notifier)
	})
	c.Login(context.Background(), rawAlice(), false)
	<-notifier.Changes()

	// The server decides who owns the cookie after linking; here it keeps
	// the newly linked bob logged in.
	backend.setSession(ptr(rawBob()))

	user, err := c.LinkAccount(context.Background(), "Bob@Example.com")
	if err != nil {
		t.Fatalf("LinkAccount = %v", err)
	}
	if user.Email != "bob@example.com" {
		t.Fatalf("post-link user = %+v", user)
	}
	if got := counter(t, c, MetricLinkSuccess); got != 1 {
		t.Fatalf("link success counter = %d", got)
	}

	select {
	case change := <-notifier.Changes():
		if !change.AccountSwitch {
			t.Fatalf("post-link change not marked as account switch: %+v", change)
		}
	case <-time.After(time.Second):
		t.Fatal("no change notification after link")
	}
}

func TestLinkAccountRejectsSelfLinkFirst(t *testing.T) {
	backend := newFakeBackend(t)
	c := newTestCoordinator(t, backend)
	c.Login(context.Background(), rawAlice(), false)

	if _, err := c.LinkAccount(context.Background(), "ALICE@example.com"); !errors.Is(err, ErrSelfLink) {
		t.Fatalf("LinkAccount(self) = %v, want ErrSelfLink", err)
	}

	backend.mu.Lock()
	calls := backend.linkCalls
	backend.mu.Unlock()
	if calls != 0 {
		t.Fatal("self-link reached the server")
	}
	if got := counter(t, c, MetricLinkSelfRejected); got != 1 {
		t.Fatalf("self-link counter = %d", got)
	}
}

func TestLinkAccountRejectsDuplicate(t *testing.T) {
	backend := newFakeBackend(t)
	backend.linkedByEmail["alice@example.com"] = []string{"bob@example.com"}
	c := newTestCoordinator(t, backend)
	c.Login(context.Background(), rawAlice(), false)
	if _, err := c.LoadSavedAccounts(context.Background()); err != nil {
		t.Fatalf("LoadSavedAccounts = %v", err)
	}

	backend.mu.Lock()
	before := backend.linkCalls
	backend.mu.Unlock()

	if _, err := c.LinkAccount(context.Background(), "bob@example.com"); !errors.Is(err, ErrDuplicateLink) {
		t.Fatalf("LinkAccount(duplicate) = %v, want ErrDuplicateLink", err)
	}

	backend.mu.Lock()
	after := backend.linkCalls
	backend.mu.Unlock()
	if after != before {
		t.Fatal("duplicate link reached the server")
	}
	if got := counter(t, c, MetricLinkDuplicateRejected); got != 1 {
		t.Fatalf("duplicate counter = %d", got)
	}
}

func TestLinkAccountWithoutActiveAccount(t *testing.T) {
	backend := newFakeBackend(t)
	c := newTestCoordinator(t, backend)

	if _, err := c.LinkAccount(context.Background(), "bob@example.com"); !errors.Is(err, ErrNoActiveAccount) {
		t.Fatalf("LinkAccount = %v, want ErrNoActiveAccount", err)
	}
}

func TestLinkAccountExistsStatusIsSuccess(t *testing.T) {
	backend := newFakeBackend(t)
	backend.linkStatus = "exists"
	c := newTestCoordinator(t, backend)
	c.Login(context.Background(), rawAlice(), false)
	backend.setSession(ptr(rawBob()))

	user, err := c.LinkAccount(context.Background(), "bob@example.com")
	if err != nil {
		t.Fatalf("LinkAccount = %v", err)
	}
	if user.Email != "bob@example.com" {
		t.Fatalf("post-link user = %+v", user)
	}
	if got := counter(t, c, MetricLinkAlreadyLinked); got != 1 {
		t.Fatalf("already-linked counter = %d", got)
	}
}

func TestLinkAccountPersistFailure(t *testing.T) {
	backend := newFakeBackend(t)
	backend.linkStatus = "error"
	c := newTestCoordinator(t, backend)
	c.Login(context.Background(), rawAlice(), false)

	if _, err := c.LinkAccount(context.Background(), "bob@example.com"); !errors.Is(err, ErrLinkPersist) {
		t.Fatalf("LinkAccount = %v, want ErrLinkPersist", err)
	}
	// The local identity is untouched when nothing was saved.
	if c.State() != StateAuthenticated {
		t.Fatalf("State = %v after persist failure", c.State())
	}
	if got := counter(t, c, MetricLinkPersistFailure); got != 1 {
		t.Fatalf("persist failure counter = %d", got)
	}
}

func TestLinkAccountSyncFailureFallsClosed(t *testing.T) {
	backend := newFakeBackend(t)
	backend.failSessionAfterLink = true
	c := newTestCoordinator(t, backend)
	c.Login(context.Background(), rawAlice(), false)

	_, err := c.LinkAccount(context.Background(), "bob@example.com")
	if !errors.Is(err, ErrSessionSync) {
		t.Fatalf("LinkAccount = %v, want ErrSessionSync", err)
	}

	// The link is saved server-side but the cookie owner is unknown, so
	// the coordinator lands in the safe state.
	if c.State() != StateAnonymous {
		t.Fatalf("State = %v after sync failure, want anonymous", c.State())
	}
	if _, ok := c.CurrentUser(); ok {
		t.Fatal("CurrentUser survived a sync failure")
	}
	if got := counter(t, c, MetricLinkSyncFailure); got != 1 {
		t.Fatalf("sync failure counter = %d", got)
	}
}
