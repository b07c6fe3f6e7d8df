package ccsession

import (
	"errors"
	"net/url"
	"time"
)

// Config is the coordinator's full configuration. Zero values are filled
// from DefaultConfig by the Builder; only API.BaseURL has no usable
// default.
type Config struct {
	API       APIConfig
	Assets    AssetConfig
	OTP       OTPConfig
	FlowToken FlowTokenConfig
	Linking   LinkingConfig
	Google    GoogleConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates the PHP backend.
type APIConfig struct {
	// BaseURL is the root of the backend, e.g.
	// https://api.cultureconnect.example/auth/.
	BaseURL string
	// Timeout bounds each backend request.
	Timeout time.Duration
	// UserAgent is sent on every request when non-empty.
	UserAgent string
}

// AssetConfig controls avatar URL resolution.
type AssetConfig struct {
	// BaseURL is the absolute root that relative avatar paths are joined
	// to. Empty leaves relative paths untouched.
	BaseURL string
	// DefaultAvatar replaces absent or junk avatar values. A relative path
	// here is resolved against BaseURL like any other avatar.
	DefaultAvatar string
}

// OTPConfig shapes the code-entry sessions handed out by Signup and
// RequestPasswordReset.
type OTPConfig struct {
	Digits       int
	ResendWindow time.Duration
}

// FlowTokenConfig controls the ephemeral tokens that carry a pending
// signup or reset email between steps of a multi-step flow.
type FlowTokenConfig struct {
	// Secret signs flow tokens. When empty, the Builder generates a random
	// per-process secret; set it only when tokens must survive restarts.
	Secret []byte
	TTL    time.Duration
}

// LinkingConfig tunes the account-linking flow.
type LinkingConfig struct {
	// RefreshTimeout bounds the background saved-accounts refresh that
	// follows a successful link.
	RefreshTimeout time.Duration
}

// GoogleConfig enables the Google OAuth code-exchange helpers. All fields
// empty disables them; partial configuration is a validation error.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration the Builder starts from.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout: 15 * time.Second,
		},
		Assets: AssetConfig{
			DefaultAvatar: "images/default-avatar.png",
		},
		OTP: OTPConfig{
			Digits:       6,
			ResendWindow: 60 * time.Second,
		},
		FlowToken: FlowTokenConfig{
			TTL: 15 * time.Minute,
		},
		Linking: LinkingConfig{
			RefreshTimeout: 10 * time.Second,
		},
		Google: GoogleConfig{
			Scopes: []string{"openid", "email", "profile"},
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.FlowToken.Secret = cloneBytes(cfg.FlowToken.Secret)
	if len(cfg.Google.Scopes) > 0 {
		out.Google.Scopes = append([]string(nil), cfg.Google.Scopes...)
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration error, if any.
func (c *Config) Validate() error {
	// API
	if c.API.BaseURL == "" {
		return errors.New("API BaseURL is required")
	}
	if _, err := url.Parse(c.API.BaseURL); err != nil {
		return errors.New("API BaseURL must be a valid URL")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API Timeout must be > 0")
	}

	// OTP
	if c.OTP.Digits < 4 || c.OTP.Digits > 10 {
		return errors.New("OTP Digits must be between 4 and 10")
	}
	if c.OTP.ResendWindow <= 0 {
		return errors.New("OTP ResendWindow must be > 0")
	}

	// Flow tokens
	if c.FlowToken.TTL <= 0 {
		return errors.New("FlowToken TTL must be > 0")
	}
	if len(c.FlowToken.Secret) > 0 && len(c.FlowToken.Secret) < 16 {
		return errors.New("FlowToken Secret must be at least 16 bytes when set")
	}

	// Linking
	if c.Linking.RefreshTimeout <= 0 {
		return errors.New("Linking RefreshTimeout must be > 0")
	}

	// Google
	googleSet := c.Google.ClientID != "" || c.Google.ClientSecret != "" || c.Google.RedirectURL != ""
	if googleSet {
		if c.Google.ClientID == "" || c.Google.ClientSecret == "" || c.Google.RedirectURL == "" {
			return errors.New("Google ClientID, ClientSecret, and RedirectURL must all be set together")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
