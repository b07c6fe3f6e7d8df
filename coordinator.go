package ccsession

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Harshit-Bhuju/CultureConnect-sub001/cache"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/flowtoken"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/httpapi"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/stores"
)

// Coordinator owns the client-side identity state. All methods are safe
// for concurrent use after [Builder.Build].
//
// The identity version counter serializes mutations: every local change
// (login, logout, account switch) bumps it, and an in-flight session
// check whose response arrives after a bump is discarded rather than
// applied over the newer identity.
type Coordinator struct {
	config     Config
	api        *httpapi.Client
	norm       *Normalizer
	cache      cache.Store
	accounts   *stores.SavedAccounts
	flowTokens *flowtoken.Manager
	flowState  *stores.FlowStateResolver
	audit      *auditDispatcher
	metrics    *Metrics
	notifier   Notifier
	logger     *zap.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	mu              sync.Mutex
	state           State
	current         *User
	loading         bool
	identityVersion uint64
	held            map[string]string
	closed          bool
}

// Close stops background work and the audit dispatcher. The Coordinator
// must not be used afterwards.
func (c *Coordinator) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	if c.audit != nil {
		c.audit.Close()
	}
}

// State returns the current identity state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentUser returns a copy of the current user. During initialization
// this may be an optimistic cache restore that the pending session check
// has not yet confirmed; consult [Coordinator.State] before trusting it
// for access decisions.
func (c *Coordinator) CurrentUser() (User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return User{}, false
	}
	return *c.current, true
}

// Loading reports whether a session check is in flight.
func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// IsAuthenticated reports whether the server has confirmed an account.
func (c *Coordinator) IsAuthenticated() bool {
	return c.State() == StateAuthenticated
}

// SavedAccounts returns the linked account emails, excluding the active
// account.
func (c *Coordinator) SavedAccounts() []string {
	return c.accounts.List()
}

// AuditDropped reports how many audit events were dropped under
// backpressure.
func (c *Coordinator) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot copies the current counter values.
func (c *Coordinator) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

func (c *Coordinator) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

// CheckSession asks the server which account owns the session cookie and
// applies the answer. The decision is fail-closed: any failure lands in
// StateAnonymous with the cache cleared. A response that arrives after
// the identity changed locally is discarded.
//
// On the first call the cached user snapshot is restored optimistically
// while the request is in flight.
func (c *Coordinator) CheckSession(ctx context.Context) (*User, error) {
	if c.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			c.metrics.Observe(MetricSessionCheckLatency, time.Since(start))
		}()
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrCoordinatorClosed
	}
	version := c.identityVersion
	c.loading = true
	rehydrate := c.state == StateInitializing && c.current == nil
	c.mu.Unlock()

	if rehydrate {
		c.rehydrate(ctx, version)
	}

	env, err := c.api.CheckSession(ctx)

	c.mu.Lock()
	c.loading = false
	if c.identityVersion != version {
		var snapshot *User
		if c.current != nil {
			u := *c.current
			snapshot = &u
		}
		c.mu.Unlock()
		c.metricInc(MetricStaleIdentityDiscarded)
		c.emitAudit(ctx, auditEventStaleDiscarded, true, "", nil, nil)
		return snapshot, nil
	}

	if err != nil {
		c.state = StateAnonymous
		c.current = nil
		c.mu.Unlock()
		c.accounts.SetActive("")
		c.clearCache(ctx)
		c.metricInc(MetricSessionCheckFailure)
		c.emitAudit(ctx, auditEventSessionCheckError, false, "", err, nil)
		c.notifier.Notify(Change{State: StateAnonymous})
		return nil, err
	}

	if env.LoggedIn && env.User != nil {
		user := c.norm.User(*env.User)
		c.state = StateAuthenticated
		u := user
		c.current = &u
		c.mu.Unlock()
		c.accounts.SetActive(user.Email)
		c.saveCache(ctx, user)
		c.metricInc(MetricSessionCheckSuccess)
		c.emitAudit(ctx, auditEventSessionConfirmed, true, user.Email, nil, nil)
		notified := user
		c.notifier.Notify(Change{State: StateAuthenticated, User: &notified})
		out := user
		return &out, nil
	}

	c.state = StateAnonymous
	c.current = nil
	c.mu.Unlock()
	c.accounts.SetActive("")
	c.clearCache(ctx)
	c.metricInc(MetricSessionCheckAnonymous)
	c.emitAudit(ctx, auditEventSessionAnonymous, true, "", nil, nil)
	c.notifier.Notify(Change{State: StateAnonymous})
	return nil, nil
}

// Login installs a server-provided user payload as the local identity.
// It performs no server call: the payload comes from an endpoint that
// already established the session cookie. The identity version is bumped
// so any stale in-flight session check is discarded.
func (c *Coordinator) Login(ctx context.Context, raw RawUser, accountSwitch bool) User {
	user := c.norm.User(raw)

	c.mu.Lock()
	c.identityVersion++
	c.state = StateAuthenticated
	u := user
	c.current = &u
	c.loading = false
	c.mu.Unlock()

	c.accounts.SetActive(user.Email)
	c.saveCache(ctx, user)

	c.metricInc(MetricLoginApplied)
	event := auditEventLoginApplied
	if accountSwitch {
		c.metricInc(MetricAccountSwitch)
		event = auditEventAccountSwitch
	}
	c.emitAudit(ctx, event, true, user.Email, nil, nil)
	notified := user
	c.notifier.Notify(Change{State: StateAuthenticated, User: &notified, AccountSwitch: accountSwitch})

	return user
}

// LoginWithPassword authenticates against the backend and installs the
// returned user.
func (c *Coordinator) LoginWithPassword(ctx context.Context, email, password string) (*User, error) {
	if err := validateLogin(email, password); err != nil {
		return nil, err
	}

	env, err := c.api.Login(ctx, email, password)
	if err != nil {
		c.emitAudit(ctx, auditEventSessionCheckError, false, stores.CanonicalEmail(email), err, nil)
		return nil, err
	}
	if env.Status != httpapi.StatusSuccess || env.User == nil {
		err := ErrInvalidCredentials
		if env.Message != "" {
			err = errors.Join(ErrInvalidCredentials, errors.New(env.Message))
		}
		c.emitAudit(ctx, auditEventSessionCheckError, false, stores.CanonicalEmail(email), ErrInvalidCredentials, nil)
		return nil, err
	}

	user := c.Login(ctx, *env.User, false)
	return &user, nil
}

// Logout clears the local identity first and then tells the server. The
// server call is best-effort: a failure is logged but the local state is
// already anonymous, which is the safe side.
func (c *Coordinator) Logout(ctx context.Context) {
	c.mu.Lock()
	email := ""
	if c.current != nil {
		email = c.current.Email
	}
	c.identityVersion++
	c.state = StateAnonymous
	c.current = nil
	c.loading = false
	c.mu.Unlock()

	c.accounts.SetActive("")
	c.clearCache(ctx)

	if err := c.api.Logout(ctx); err != nil {
		c.metricInc(MetricLogoutServerError)
		c.logger.Warn("server logout failed", zap.Error(err))
	}

	c.metricInc(MetricLogout)
	c.emitAudit(ctx, auditEventLogout, true, email, nil, nil)
	c.notifier.Notify(Change{State: StateAnonymous})
}

// LoadSavedAccounts refreshes the linked-accounts list from the server.
func (c *Coordinator) LoadSavedAccounts(ctx context.Context) ([]string, error) {
	email, ok := c.accounts.Active()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	list, err := c.api.LinkedAccounts(ctx, email)
	if err != nil {
		return nil, err
	}
	c.accounts.Replace(list)
	return c.accounts.List(), nil
}

// CheckUsername asks the server whether a username is still available.
// The answer races with other signups; treat it as a hint, never a
// reservation.
func (c *Coordinator) CheckUsername(ctx context.Context, username string) (bool, error) {
	return c.api.CheckUsername(ctx, username)
}

// rehydrate restores the cached user snapshot while the first session
// check is in flight. The restore is optimistic: state stays
// Initializing until the server answers, and a fail-closed outcome
// discards the snapshot.
func (c *Coordinator) rehydrate(ctx context.Context, version uint64) {
	payload, err := c.cache.Load(ctx)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			c.metricInc(MetricCacheFailure)
			c.logger.Warn("user cache load failed", zap.Error(err))
		}
		return
	}

	var user User
	if err := json.Unmarshal(payload, &user); err != nil || user.Email == "" {
		c.metricInc(MetricCacheFailure)
		return
	}

	c.mu.Lock()
	if c.identityVersion == version && c.state == StateInitializing && c.current == nil {
		u := user
		c.current = &u
		c.mu.Unlock()
		c.metricInc(MetricCacheRehydrate)
		return
	}
	c.mu.Unlock()
}

func (c *Coordinator) saveCache(ctx context.Context, user User) {
	payload, err := json.Marshal(user)
	if err != nil {
		c.metricInc(MetricCacheFailure)
		return
	}
	if err := c.cache.Save(ctx, payload); err != nil {
		c.metricInc(MetricCacheFailure)
		c.logger.Warn("user cache save failed", zap.Error(err))
	}
}

func (c *Coordinator) clearCache(ctx context.Context) {
	if err := c.cache.Clear(ctx); err != nil && !errors.Is(err, cache.ErrNotFound) {
		c.metricInc(MetricCacheFailure)
		c.logger.Warn("user cache clear failed", zap.Error(err))
	}
}

// holdToken stores the most recent flow token for a purpose. Tokens are
// single-use; takeToken removes them.
func (c *Coordinator) holdToken(purpose, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held[purpose] = token
}

func (c *Coordinator) takeToken(purpose string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	token := c.held[purpose]
	delete(c.held, purpose)
	return token
}
