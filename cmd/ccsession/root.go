package main

import (
	"errors"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	ccsession "github.com/Harshit-Bhuju/CultureConnect-sub001"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/cache"
)

var (
	flagBaseURL string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "ccsession",
	Short:         "CultureConnect session client",
	Long:          "Log in to CultureConnect, inspect the active session, link accounts, and log out.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// A .env next to the binary is convenient for development; absence is fine.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", os.Getenv("CC_API_BASE_URL"), "backend base URL (env CC_API_BASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(logoutCmd)
}

// stateDir is where the session cookie and user snapshot live between
// invocations.
func stateDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "ccsession")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// session bundles the coordinator with the cookie persistence that must
// run after the command finishes.
type session struct {
	coordinator *ccsession.Coordinator
	cookies     *cookieFile
	logger      *zap.Logger
}

func (s *session) close() {
	if err := s.cookies.save(); err != nil {
		s.logger.Warn("cookie save failed", zap.Error(err))
	}
	s.coordinator.Close()
	_ = s.logger.Sync()
}

func openSession() (*session, error) {
	if flagBaseURL == "" {
		return nil, errors.New("backend base URL required: set --base-url or CC_API_BASE_URL")
	}

	logger := zap.NewNop()
	if flagVerbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}

	dir, err := stateDir()
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	cookies, err := newCookieFile(filepath.Join(dir, "cookies.json"), flagBaseURL, jar)
	if err != nil {
		return nil, err
	}

	cfg := ccsession.DefaultConfig()
	cfg.API.BaseURL = flagBaseURL
	cfg.API.UserAgent = "ccsession-cli"
	if assets := os.Getenv("CC_ASSET_BASE_URL"); assets != "" {
		cfg.Assets.BaseURL = assets
	}

	coordinator, err := ccsession.New().
		WithConfig(cfg).
		WithHTTPClient(&http.Client{Jar: jar, Timeout: 15 * time.Second}).
		WithCache(cache.NewFile(filepath.Join(dir, "user.json"))).
		WithLogger(logger).
		Build()
	if err != nil {
		return nil, err
	}

	return &session{coordinator: coordinator, cookies: cookies, logger: logger}, nil
}
