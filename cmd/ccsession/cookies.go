package main

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"time"
)

// storedCookie is the serializable subset of http.Cookie the CLI needs to
// carry the PHP session between invocations.
type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Domain  string    `json:"domain,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
	Secure  bool      `json:"secure,omitempty"`
}

// cookieFile persists the jar's cookies for one base URL.
type cookieFile struct {
	path string
	base *url.URL
	jar  http.CookieJar
}

func newCookieFile(path, baseURL string, jar http.CookieJar) (*cookieFile, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	f := &cookieFile{path: path, base: base, jar: jar}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *cookieFile) load() error {
	payload, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	var stored []storedCookie
	if err := json.Unmarshal(payload, &stored); err != nil {
		// A corrupt cookie file means a fresh session, not a fatal error.
		return nil
	}

	now := time.Now()
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, s := range stored {
		if !s.Expires.IsZero() && s.Expires.Before(now) {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:    s.Name,
			Value:   s.Value,
			Path:    s.Path,
			Domain:  s.Domain,
			Expires: s.Expires,
			Secure:  s.Secure,
		})
	}
	f.jar.SetCookies(f.base, cookies)
	return nil
}

func (f *cookieFile) save() error {
	cookies := f.jar.Cookies(f.base)
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Expires: c.Expires,
			Secure:  c.Secure,
		})
	}

	payload, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, payload, 0o600)
}
