// Package auth obtains OAuth credentials for the Search Console API.
//
// A stored token is either usable (valid, or refreshable with its refresh
// token) or needs authorization, in which case an injected Authorizer runs
// the interactive step. Tokens obtained either way are written back to the
// token file.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scope is the read-only Search Console scope used for URL inspection.
const Scope = "https://www.googleapis.com/auth/webmasters.readonly"

// ErrNeedsAuthorization is returned when no usable token exists and no
// Authorizer was configured.
var ErrNeedsAuthorization = errors.New("token needs interactive authorization")

// State is the usability of a stored token.
type State int

const (
	StateNeedsAuthorization State = iota
	StateValid
	StateRefreshable
)

func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateRefreshable:
		return "refreshable"
	default:
		return "needs-authorization"
	}
}

// Classify decides what must happen before tok can be used.
func Classify(tok *oauth2.Token) State {
	switch {
	case tok == nil:
		return StateNeedsAuthorization
	case tok.Valid():
		return StateValid
	case tok.RefreshToken != "":
		return StateRefreshable
	default:
		return StateNeedsAuthorization
	}
}

// Authorizer runs the interactive authorization step and returns a new token.
type Authorizer interface {
	Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)

func (f AuthorizerFunc) Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	return f(ctx, cfg)
}

// LoadConfig reads a client-secret JSON file ("installed" or "web" client).
func LoadConfig(credentialsPath string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("error reading client secret file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, Scope)
	if err != nil {
		return nil, fmt.Errorf("error parsing client secret file %s: %w", credentialsPath, err)
	}
	return cfg, nil
}

type Flow struct {
	config     *oauth2.Config
	store      *TokenStore
	authorizer Authorizer
	logger     *slog.Logger
}

// NewFlow builds a flow. authorizer may be nil, in which case a token that
// needs authorization yields ErrNeedsAuthorization.
func NewFlow(cfg *oauth2.Config, store *TokenStore, authorizer Authorizer, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{config: cfg, store: store, authorizer: authorizer, logger: logger}
}

// Token returns a usable token, refreshing or authorizing as needed.
func (f *Flow) Token(ctx context.Context) (*oauth2.Token, error) {
	tok, err := f.store.Load()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.logger.Warn("Ignoring unreadable token file", "path", f.store.Path(), "error", err)
		}
		tok = nil
	}

	state := Classify(tok)
	f.logger.Debug("Token state", "path", f.store.Path(), "state", state.String())

	switch state {
	case StateValid:
		return tok, nil
	case StateRefreshable:
		fresh, err := f.config.TokenSource(ctx, tok).Token()
		if err != nil {
			return nil, fmt.Errorf("failed to refresh token: %w", err)
		}
		tok = fresh
	default:
		if f.authorizer == nil {
			return nil, ErrNeedsAuthorization
		}
		fresh, err := f.authorizer.Authorize(ctx, f.config)
		if err != nil {
			return nil, fmt.Errorf("authorization failed: %w", err)
		}
		tok = fresh
	}

	if err := f.store.Save(tok); err != nil {
		return nil, err
	}
	f.logger.Info("Saved token", "path", f.store.Path())
	return tok, nil
}

// Client returns an HTTP client that authorizes requests and persists any
// token refreshed during the run.
func (f *Flow) Client(ctx context.Context) (*http.Client, error) {
	tok, err := f.Token(ctx)
	if err != nil {
		return nil, err
	}
	src := &savingSource{
		base:   f.config.TokenSource(ctx, tok),
		store:  f.store,
		logger: f.logger,
		last:   tok.AccessToken,
	}
	return oauth2.NewClient(ctx, src), nil
}

type savingSource struct {
	base   oauth2.TokenSource
	store  *TokenStore
	logger *slog.Logger

	mu   sync.Mutex
	last string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.store.Save(tok); err != nil {
			s.logger.Warn("Failed to save refreshed token", "error", err)
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}
