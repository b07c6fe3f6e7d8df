package ccsession

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Harshit-Bhuju/CultureConnect-sub001/cache"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/flowtoken"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/httpapi"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/stores"
)

// Builder assembles a [Coordinator]. Configure it during initialization
// and call Build exactly once.
type Builder struct {
	config     Config
	httpClient *http.Client
	cache      cache.Store
	auditSink  AuditSink
	notifier   Notifier
	logger     *zap.Logger

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets the backend root without replacing the rest of the
// configuration.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithHTTPClient overrides the backend HTTP client. The supplied client
// must carry a cookie jar; the server session cookie is the identity.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithCache sets the user snapshot cache. Defaults to an in-memory store.
func (b *Builder) WithCache(store cache.Store) *Builder {
	b.cache = store
	return b
}

// WithAuditSink sets the audit event receiver.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithNotifier sets the identity change listener.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithLogger sets the structured logger. Defaults to a nop logger.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the session-check latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the Coordinator. The
// Coordinator starts in StateInitializing; callers run CheckSession to
// resolve it.
func (b *Builder) Build() (*Coordinator, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if len(cfg.FlowToken.Secret) == 0 {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		cfg.FlowToken.Secret = secret
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	api, err := httpapi.New(httpapi.Config{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		HTTPClient: b.httpClient,
		UserAgent:  cfg.API.UserAgent,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := flowtoken.New(flowtoken.Config{
		Secret: cfg.FlowToken.Secret,
		TTL:    cfg.FlowToken.TTL,
	})
	if err != nil {
		return nil, err
	}

	store := b.cache
	if store == nil {
		store = cache.NewMemory()
	}

	notifier := b.notifier
	if notifier == nil {
		notifier = NoopNotifier{}
	}

	baseCtx, cancel := context.WithCancel(context.Background())

	c := &Coordinator{
		config:     cfg,
		api:        api,
		norm:       NewNormalizer(cfg.Assets.BaseURL, cfg.Assets.DefaultAvatar),
		cache:      store,
		accounts:   stores.NewSavedAccounts(),
		flowTokens: tokens,
		audit:      newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:    NewMetrics(cfg.Metrics),
		notifier:   notifier,
		logger:     logger,
		baseCtx:    baseCtx,
		cancel:     cancel,
		held:       make(map[string]string),
	}
	c.flowState = stores.NewFlowStateResolver(tokens, api.FlowEmail)

	b.built = true

	return c, nil
}
