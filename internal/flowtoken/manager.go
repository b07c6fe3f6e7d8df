// Package flowtoken issues and consumes the ephemeral tokens that carry
// flow state (pending signup or reset email) between steps of a multi-step
// flow. Tokens are HS256-signed, short-lived, and single-use: consuming one
// retires its ID for the remainder of its lifetime.
package flowtoken

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token purposes. A token issued for one step never authorizes another.
const (
	PurposeOTPEmail   = "otp_email"
	PurposeResetEmail = "reset_email"
)

var (
	// ErrTokenInvalid covers malformed, expired, wrong-purpose, and
	// replayed tokens. Callers fall back to the server-session mirror.
	ErrTokenInvalid = errors.New("invalid flow token")
)

// Config configures a Manager.
type Config struct {
	Secret []byte
	TTL    time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

type flowClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Manager signs and verifies flow tokens and tracks consumed token IDs.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu   sync.Mutex
	used map[string]time.Time
}

// New validates the config and returns a Manager.
func New(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 16 {
		return nil, errors.New("flowtoken: secret must be at least 16 bytes")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("flowtoken: TTL must be positive")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		now:    now,
		used:   make(map[string]time.Time),
	}, nil
}

// Issue signs a token binding email to purpose for the configured TTL.
func (m *Manager) Issue(purpose, email string) (string, error) {
	if email == "" {
		return "", errors.New("flowtoken: email required")
	}
	now := m.now()

	claims := flowClaims{
		Email:   email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("flowtoken: sign: %w", err)
	}
	return signed, nil
}

// Consume verifies a token for the given purpose and retires its ID. A
// second Consume of the same token fails.
func (m *Manager) Consume(tokenStr, purpose string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &flowClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return "", ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*flowClaims)
	if !ok || claims.Purpose != purpose || claims.Email == "" || claims.ID == "" {
		return "", ErrTokenInvalid
	}
	expires := m.now().Add(m.ttl)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.prune()
	if _, replay := m.used[claims.ID]; replay {
		return "", ErrTokenInvalid
	}
	m.used[claims.ID] = expires

	return claims.Email, nil
}

// prune drops retired IDs whose tokens have expired anyway. Caller holds mu.
func (m *Manager) prune() {
	now := m.now()
	for id, expires := range m.used {
		if now.After(expires) {
			delete(m.used, id)
		}
	}
}
