package ccsession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/httpapi"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/stores"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleLogin signs in with a verified Google email. When the backend
// knows the email the returned user is installed as the identity; when it
// does not, ErrGoogleAccountUnknown is returned and the caller continues
// into SetPassword to finish creating the account. addingAccount marks
// the variant started from an authenticated session: a known account is
// handed to LinkAccount instead of replacing the identity.
func (c *Coordinator) GoogleLogin(ctx context.Context, email, picture string, addingAccount bool) (*User, error) {
	canonical := stores.CanonicalEmail(email)
	if canonical == "" {
		return nil, fmt.Errorf("%w: empty google email", ErrInvalidInput)
	}

	env, err := c.api.GoogleLogin(ctx, canonical, picture)
	if err != nil {
		c.emitAudit(ctx, auditEventGoogleLogin, false, canonical, err, nil)
		return nil, err
	}

	switch env.Status {
	case httpapi.StatusGoogleKnown:
		if env.User == nil {
			err := fmt.Errorf("%w: known account without payload", ErrBackendUnavailable)
			c.emitAudit(ctx, auditEventGoogleLogin, false, canonical, err, nil)
			return nil, err
		}
		c.metricInc(MetricGoogleLoginKnown)
		if addingAccount {
			return c.LinkAccount(ctx, canonical)
		}
		user := c.Login(ctx, *env.User, false)
		c.emitAudit(ctx, auditEventGoogleLogin, true, user.Email, nil, nil)
		return &user, nil
	case httpapi.StatusGoogleUnknown:
		c.metricInc(MetricGoogleLoginUnknown)
		c.emitAudit(ctx, auditEventGoogleLogin, false, canonical, ErrGoogleAccountUnknown, nil)
		return nil, ErrGoogleAccountUnknown
	default:
		err := fmt.Errorf("%w: unexpected google status %q", ErrBackendUnavailable, env.Status)
		c.emitAudit(ctx, auditEventGoogleLogin, false, canonical, err, nil)
		return nil, err
	}
}

// GoogleOAuthConfig returns the OAuth2 configuration for the code
// exchange, or nil when Google sign-in is not configured.
func (c *Coordinator) GoogleOAuthConfig() *oauth2.Config {
	g := c.config.Google
	if g.ClientID == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURL:  g.RedirectURL,
		Scopes:       append([]string(nil), g.Scopes...),
		Endpoint:     google.Endpoint,
	}
}

// GoogleAuthURL builds the consent-screen URL for the given anti-forgery
// state. Empty when Google sign-in is not configured.
func (c *Coordinator) GoogleAuthURL(state string) string {
	cfg := c.GoogleOAuthConfig()
	if cfg == nil {
		return ""
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// googleProfile is the subset of the userinfo response the flow needs.
type googleProfile struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Picture       string `json:"picture"`
}

// ExchangeGoogleCode trades an authorization code for the user's verified
// email and profile picture.
func (c *Coordinator) ExchangeGoogleCode(ctx context.Context, code string) (email, picture string, err error) {
	cfg := c.GoogleOAuthConfig()
	if cfg == nil {
		return "", "", errors.New("google sign-in is not configured")
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return "", "", fmt.Errorf("google code exchange: %w", err)
	}

	resp, err := cfg.Client(ctx, token).Get(googleUserinfoURL)
	if err != nil {
		return "", "", fmt.Errorf("google userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("google userinfo: status %d", resp.StatusCode)
	}

	var profile googleProfile
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&profile); err != nil {
		return "", "", fmt.Errorf("google userinfo decode: %w", err)
	}
	if profile.Email == "" || !profile.VerifiedEmail {
		return "", "", errors.New("google account has no verified email")
	}

	return profile.Email, profile.Picture, nil
}

// LoginWithGoogleCode runs the full OAuth leg: exchange the code, then
// sign in with the verified email.
func (c *Coordinator) LoginWithGoogleCode(ctx context.Context, code string, addingAccount bool) (*User, error) {
	email, picture, err := c.ExchangeGoogleCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return c.GoogleLogin(ctx, email, picture, addingAccount)
}
