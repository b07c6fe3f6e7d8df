package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Backend endpoint paths, relative to the configured base URL.
const (
	pathCheckSession   = "check_session.php"
	pathLogin          = "login.php"
	pathGoogleLogin    = "google_login.php"
	pathSignup         = "signup.php"
	pathVerifyOTP      = "verify_otp.php"
	pathSaveLinked     = "save_linked_account.php"
	pathLinkedAccounts = "get_linked_accounts.php"
	pathLogout         = "logout.php"
	pathForgotPassword = "forgot_password.php"
	pathChangePassword = "change_password.php"
	pathSetPassword    = "set_password.php"
	pathFlowState      = "flow_state.php"
	pathCheckUsername  = "check_username.php"
)

const defaultHTTPTimeout = 15 * time.Second

// ErrUnavailable wraps transport-level failures: connection errors,
// timeouts, non-JSON bodies. Callers treat it as "operation failed" and,
// for session checks, fail closed to anonymous.
var ErrUnavailable = errors.New("backend unavailable")

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
}

// Config configures a backend Client.
type Config struct {
	// BaseURL is the root of the PHP backend, e.g. https://api.cultureconnect.example/auth/.
	BaseURL string
	// Timeout bounds each request when no custom HTTPClient is supplied.
	Timeout time.Duration
	// HTTPClient overrides the default client. When nil, a client with an
	// in-memory cookie jar is created; the jar carries the PHP session
	// cookie that makes the server the authority on identity.
	HTTPClient *http.Client
	// UserAgent is sent on every request when non-empty.
	UserAgent string
	// Logger is optional; a nop logger is used when nil.
	Logger *zap.Logger
}

// Client speaks the backend's JSON-over-form-POST dialect. All requests are
// credentialed through the cookie jar, so the server session remains the
// ultimate authority; everything the client holds is a cache of it.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	logger    *zap.Logger
}

// New builds a Client. The base URL is required.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("httpapi: base URL required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("httpapi: invalid base URL: %w", err)
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	hc := cfg.HTTPClient
	if hc == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("httpapi: cookie jar: %w", err)
		}
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		hc = &http.Client{Jar: jar, Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:   base,
		userAgent: cfg.UserAgent,
		http:      hc,
		logger:    logger,
	}, nil
}

// CheckSession asks the server which account, if any, owns the current
// session cookie.
func (c *Client) CheckSession(ctx context.Context) (*SessionEnvelope, error) {
	var env SessionEnvelope
	if err := c.getJSON(ctx, pathCheckSession, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Login authenticates with email and password. The session cookie is set by
// the server on success.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthEnvelope, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	var env AuthEnvelope
	if err := c.postForm(ctx, pathLogin, form, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// GoogleLogin reports whether an account exists for a Google identity and
// logs it in when it does.
func (c *Client) GoogleLogin(ctx context.Context, email, picture string) (*GoogleEnvelope, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("picture", picture)

	var env GoogleEnvelope
	if err := c.postForm(ctx, pathGoogleLogin, form, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Signup registers a new account and triggers the OTP email.
func (c *Client) Signup(ctx context.Context, email, password string) (*StatusEnvelope, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	var env StatusEnvelope
	if err := c.postForm(ctx, pathSignup, form, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// VerifyOTP submits the emailed code for the pending flow.
func (c *Client) VerifyOTP(ctx context.Context, code string) (*AuthEnvelope, error) {
	form := url.Values{}
	form.Set("code", code)

	var env AuthEnvelope
	if err := c.postForm(ctx, pathVerifyOTP, form, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// ResendOTP asks the server to re-send the code for the pending flow.
func (c *Client) ResendOTP(ctx context.Context) (*StatusEnvelope, error) {
	form := url.Values{}
	form.Set("action", "resend")

	var env StatusEnvelope
	if err := c.postForm(ctx, pathVerifyOTP, form, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// SaveLinkedAccount associates accountEmail with originalEmail on this
// device. A StatusExists answer means the pair was already linked and is
// treated as success by callers.
func (c *Client) SaveLinkedAccount(ctx context.Context, originalEmail, accountEmail string) (*StatusEnvelope, error) {
	form := url.Values{}
	form.Set("original_user_email", originalEmail)
	form.Set("account_email", accountEmail)

	var env StatusEnvelope
	if err := c.postForm(ctx, pathSaveLinked, form, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// LinkedAccounts lists the account emails linked to the given account.
func (c *Client) LinkedAccounts(ctx context.Context, email string) ([]string, error) {
	params := url.Values{}
	params.Set("email", email)

	var env AccountsEnvelope
	if err := c.getJSON(ctx, pathLinkedAccounts, params, &env); err != nil {
		return nil, err
	}
	if env.Status != StatusSuccess {
		return nil, &APIError{Status: http.StatusOK, Message: env.Message}
	}
	return env.Accounts, nil
}

// Logout destroys the server session. Response body is ignored; only
// transport failures are reported, and callers swallow even those.
func (c *Client) Logout(ctx context.Context) error {
	return c.postForm(ctx, pathLogout, url.Values{}, nil)
}

// RequestPasswordReset starts the forgot-password flow for an email.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (*StatusEnvelope, error) {
	form := url.Values{}
	form.Set("email", email)

	var env StatusEnvelope
	if err := c.postForm(ctx, pathForgotPassword, form, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// ChangePassword completes the forgot-password flow.
func (c *Client) ChangePassword(ctx context.Context, email, newPassword string) (*StatusEnvelope, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", newPassword)

	var env StatusEnvelope
	if err := c.postForm(ctx, pathChangePassword, form, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// SetPassword completes a signup that still needs a password. On success the
// server logs the account in and returns its payload.
func (c *Client) SetPassword(ctx context.Context, email, password string) (*AuthEnvelope, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	var env AuthEnvelope
	if err := c.postForm(ctx, pathSetPassword, form, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// FlowEmail reads a pending flow email mirrored in the server session. Used
// as the fallback source when the client holds no ephemeral flow token.
func (c *Client) FlowEmail(ctx context.Context, key string) (string, error) {
	params := url.Values{}
	params.Set("key", key)

	var env FlowEnvelope
	if err := c.getJSON(ctx, pathFlowState, params, &env); err != nil {
		return "", err
	}
	if env.Status != StatusSuccess || env.Email == "" {
		return "", &APIError{Status: http.StatusOK, Message: env.Message}
	}
	return env.Email, nil
}

// CheckUsername reports whether a username looks available. Best-effort
// hint only: the answer can be stale by the time signup runs.
func (c *Client) CheckUsername(ctx context.Context, username string) (bool, error) {
	params := url.Values{}
	params.Set("username", username)

	var env UsernameEnvelope
	if err := c.getJSON(ctx, pathCheckUsername, params, &env); err != nil {
		return false, err
	}
	return env.Available, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed",
			zap.String("path", req.URL.Path),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure StatusEnvelope
		if json.Unmarshal(data, &failure) == nil && failure.Message != "" {
			return &APIError{Status: resp.StatusCode, Message: failure.Message}
		}
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: non-JSON body: %v", ErrUnavailable, err)
	}
	return nil
}
