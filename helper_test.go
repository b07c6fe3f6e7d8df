package ccsession

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/httpapi"
)

// fakeBackend emulates the PHP endpoints for coordinator tests. Handlers
// read their behavior from the struct fields under the mutex, so tests can
// reconfigure responses mid-flight.
type fakeBackend struct {
	srv *httptest.Server

	mu sync.Mutex
	// sessionUser is the account that owns the session cookie; nil means
	// anonymous.
	sessionUser *RawUser
	// failSession makes check_session.php answer 500.
	failSession bool
	// sessionGate, when set, parks check_session.php requests until the
	// gate is released.
	sessionGate *blockOnce
	// failSessionAfterLink arms failSession when a link is saved.
	failSessionAfterLink bool
	// failLogout makes logout.php answer 500.
	failLogout bool

	// credentials accepted by login.php, keyed by email.
	passwords map[string]string
	loginUser *RawUser

	signupStatus  string
	signupCalls   int
	expectedOTP   string
	verifyUser    *RawUser
	resendCalls   int
	linkStatus    string
	linkCalls     int
	linkedByEmail map[string][]string
	flowEmails    map[string]string
	changedEmail  string
	changedPass   string
	googleUser    *RawUser
	setPassUser   *RawUser
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		passwords:     map[string]string{},
		linkedByEmail: map[string][]string{},
		flowEmails:    map[string]string{},
		signupStatus:  httpapi.StatusSuccess,
		linkStatus:    httpapi.StatusSuccess,
		expectedOTP:   "123456",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/check_session.php", b.handleCheckSession)
	mux.HandleFunc("/login.php", b.handleLogin)
	mux.HandleFunc("/logout.php", b.handleLogout)
	mux.HandleFunc("/signup.php", b.handleSignup)
	mux.HandleFunc("/verify_otp.php", b.handleVerifyOTP)
	mux.HandleFunc("/save_linked_account.php", b.handleSaveLinked)
	mux.HandleFunc("/get_linked_accounts.php", b.handleLinkedAccounts)
	mux.HandleFunc("/forgot_password.php", b.handleForgotPassword)
	mux.HandleFunc("/change_password.php", b.handleChangePassword)
	mux.HandleFunc("/set_password.php", b.handleSetPassword)
	mux.HandleFunc("/google_login.php", b.handleGoogleLogin)
	mux.HandleFunc("/flow_state.php", b.handleFlowState)

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) setSession(u *RawUser) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionUser = u
}

func (b *fakeBackend) handleCheckSession(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	fail := b.failSession
	user := b.sessionUser
	gate := b.sessionGate
	b.mu.Unlock()

	if gate != nil {
		gate.wait()
	}
	if fail {
		http.Error(w, `{"status":"error","message":"server exploded"}`, http.StatusInternalServerError)
		return
	}
	if user == nil {
		writeJSON(w, httpapi.SessionEnvelope{Status: httpapi.StatusSuccess, LoggedIn: false})
		return
	}
	writeJSON(w, httpapi.SessionEnvelope{Status: httpapi.StatusSuccess, LoggedIn: true, User: user})
}

func (b *fakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	b.mu.Lock()
	want, known := b.passwords[email]
	user := b.loginUser
	b.mu.Unlock()

	if !known || want != password {
		writeJSON(w, httpapi.AuthEnvelope{Status: httpapi.StatusError, Message: "Invalid email or password"})
		return
	}
	b.setSession(user)
	writeJSON(w, httpapi.AuthEnvelope{Status: httpapi.StatusSuccess, User: user})
}

func (b *fakeBackend) handleLogout(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	fail := b.failLogout
	b.sessionUser = nil
	b.mu.Unlock()

	if fail {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, httpapi.StatusEnvelope{Status: httpapi.StatusSuccess})
}

func (b *fakeBackend) handleSignup(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.signupCalls++
	status := b.signupStatus
	b.mu.Unlock()

	if status == httpapi.StatusSuccess {
		writeJSON(w, httpapi.StatusEnvelope{Status: status, Message: "otp sent"})
		return
	}
	writeJSON(w, httpapi.StatusEnvelope{Status: status, Message: "email already registered"})
}

func (b *fakeBackend) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	if r.PostFormValue("action") == "resend" {
		b.mu.Lock()
		b.resendCalls++
		b.mu.Unlock()
		writeJSON(w, httpapi.StatusEnvelope{Status: httpapi.StatusSuccess})
		return
	}

	b.mu.Lock()
	want := b.expectedOTP
	user := b.verifyUser
	b.mu.Unlock()

	if r.PostFormValue("code") != want {
		writeJSON(w, httpapi.AuthEnvelope{Status: httpapi.StatusError, Message: "wrong code"})
		return
	}
	if user != nil {
		b.setSession(user)
	}
	writeJSON(w, httpapi.AuthEnvelope{Status: httpapi.StatusSuccess, User: user})
}

func (b *fakeBackend) handleSaveLinked(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	original := r.PostFormValue("original_user_email")
	account := r.PostFormValue("account_email")

	b.mu.Lock()
	b.linkCalls++
	status := b.linkStatus
	if status == httpapi.StatusSuccess {
		b.linkedByEmail[original] = append(b.linkedByEmail[original], account)
	}
	if b.failSessionAfterLink {
		b.failSession = true
	}
	b.mu.Unlock()

	if status == httpapi.StatusError {
		writeJSON(w, httpapi.StatusEnvelope{Status: status, Message: "could not save"})
		return
	}
	writeJSON(w, httpapi.StatusEnvelope{Status: status})
}

func (b *fakeBackend) handleLinkedAccounts(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	b.mu.Lock()
	accounts := append([]string(nil), b.linkedByEmail[email]...)
	b.mu.Unlock()

	writeJSON(w, httpapi.AccountsEnvelope{Status: httpapi.StatusSuccess, Accounts: accounts})
}

func (b *fakeBackend) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, httpapi.StatusEnvelope{Status: httpapi.StatusSuccess, Message: "otp sent"})
}

func (b *fakeBackend) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	b.mu.Lock()
	b.changedEmail = r.PostFormValue("email")
	b.changedPass = r.PostFormValue("password")
	b.mu.Unlock()
	writeJSON(w, httpapi.StatusEnvelope{Status: httpapi.StatusSuccess})
}

func (b *fakeBackend) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	user := b.setPassUser
	b.mu.Unlock()

	if user != nil {
		b.setSession(user)
	}
	writeJSON(w, httpapi.AuthEnvelope{Status: httpapi.StatusSuccess, User: user})
}

func (b *fakeBackend) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	user := b.googleUser
	b.mu.Unlock()

	if user == nil {
		writeJSON(w, httpapi.GoogleEnvelope{Status: httpapi.StatusGoogleUnknown})
		return
	}
	b.setSession(user)
	writeJSON(w, httpapi.GoogleEnvelope{Status: httpapi.StatusGoogleKnown, User: user})
}

func (b *fakeBackend) handleFlowState(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")

	b.mu.Lock()
	email := b.flowEmails[key]
	b.mu.Unlock()

	if email == "" {
		writeJSON(w, httpapi.FlowEnvelope{Status: httpapi.StatusError, Message: "no pending flow"})
		return
	}
	writeJSON(w, httpapi.FlowEnvelope{Status: httpapi.StatusSuccess, Email: email})
}

func rawAlice() RawUser {
	return RawUser{
		ID:     float64(7),
		Email:  "alice@example.com",
		Name:   "Alice",
		Role:   "user",
		Avatar: "https://cdn.example.com/alice.png",
	}
}

func rawBob() RawUser {
	return RawUser{
		ID:    "12",
		Email: "bob@example.com",
		Name:  "Bob",
		Role:  "admin",
	}
}

func ptr(u RawUser) *RawUser { return &u }

func newTestCoordinator(t *testing.T, backend *fakeBackend, opts ...func(*Builder)) *Coordinator {
	t.Helper()

	b := New()
	for _, opt := range opts {
		opt(b)
	}
	b.WithBaseURL(backend.srv.URL + "/").
		WithMetricsEnabled(true).
		WithLatencyHistograms(true)

	c, err := b.Build()
	if err != nil {
		t.Fatalf("Build = %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func counter(t *testing.T, c *Coordinator, id MetricID) uint64 {
	t.Helper()
	return c.MetricsSnapshot().Counters[id]
}

// blockOnce makes the next check_session.php request park until release is
// closed, signalling started when the handler is reached.
type blockOnce struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockOnce() *blockOnce {
	return &blockOnce{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blockOnce) wait() {
	b.once.Do(func() {
		close(b.started)
		<-b.release
	})
}
