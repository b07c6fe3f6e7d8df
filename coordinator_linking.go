package ccsession

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/flows"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/httpapi"
)

// LinkAccount links accountEmail to the active account and switches the
// local identity to whichever account the server reports after linking.
// The client-side preconditions run first, in order: self-link, then
// duplicate. The post-link session re-check is authoritative; if it
// fails after the server saved the link, the coordinator falls to
// StateAnonymous and returns ErrSessionSync.
func (c *Coordinator) LinkAccount(ctx context.Context, accountEmail string) (*User, error) {
	deps := flows.LinkDeps{
		ActiveEmail:    c.accounts.Active,
		CheckCandidate: c.accounts.Check,
		SaveLink: func(ctx context.Context, originalEmail, candidate string) (string, error) {
			env, err := c.api.SaveLinkedAccount(ctx, originalEmail, candidate)
			if err != nil {
				return "", err
			}
			if env.Status == httpapi.StatusError {
				return env.Status, errors.New(env.Message)
			}
			return env.Status, nil
		},
		CheckSession: c.api.CheckSession,
	}

	res, err := flows.RunLink(ctx, accountEmail, deps)
	switch {
	case err == nil:
		// Applied below.
	case errors.Is(err, ErrSelfLink):
		c.metricInc(MetricLinkSelfRejected)
		c.emitAudit(ctx, auditEventLinkRejected, false, accountEmail, err, nil)
		return nil, err
	case errors.Is(err, ErrDuplicateLink):
		c.metricInc(MetricLinkDuplicateRejected)
		c.emitAudit(ctx, auditEventLinkRejected, false, accountEmail, err, nil)
		return nil, err
	case errors.Is(err, ErrNoActiveAccount):
		c.emitAudit(ctx, auditEventLinkRejected, false, accountEmail, err, nil)
		return nil, err
	case errors.Is(err, ErrSessionSync):
		// The link is saved server-side but we no longer know which
		// account owns the cookie. Fail closed locally; the next
		// CheckSession resolves the truth.
		c.mu.Lock()
		c.identityVersion++
		c.state = StateAnonymous
		c.current = nil
		c.mu.Unlock()
		c.accounts.SetActive("")
		c.clearCache(ctx)
		c.metricInc(MetricLinkSyncFailure)
		c.emitAudit(ctx, auditEventLinkSyncFailed, false, accountEmail, err, nil)
		c.notifier.Notify(Change{State: StateAnonymous})
		return nil, err
	default:
		c.metricInc(MetricLinkPersistFailure)
		c.emitAudit(ctx, auditEventLinkRejected, false, accountEmail, err, nil)
		return nil, err
	}

	if res.AlreadyLinked {
		c.metricInc(MetricLinkAlreadyLinked)
	} else {
		c.metricInc(MetricLinkSuccess)
	}

	user := c.Login(ctx, *res.Raw, true)
	c.emitAudit(ctx, auditEventLinkSaved, true, user.Email, nil, func() map[string]string {
		return map[string]string{
			"linked_email": accountEmail,
		}
	})

	// The server's linked-accounts view changed; refresh in the
	// background so the switcher is current without blocking the caller.
	go func() {
		refreshCtx, cancel := context.WithTimeout(c.baseCtx, c.config.Linking.RefreshTimeout)
		defer cancel()
		if _, err := c.LoadSavedAccounts(refreshCtx); err != nil {
			c.logger.Warn("saved accounts refresh failed", zap.Error(err))
		}
	}()

	return &user, nil
}
