package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// LoopbackAuthorizer is the installed-app flow: it listens on a random local
// port, shows the consent URL and waits for the redirect carrying the code.
type LoopbackAuthorizer struct {
	// Prompt shows the consent URL. Defaults to printing it on stderr.
	Prompt func(authURL string)
	// Timeout bounds the wait for the redirect. Zero means no limit.
	Timeout time.Duration
}

type callback struct {
	code string
	err  error
}

func (a *LoopbackAuthorizer) Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to listen for redirect: %w", err)
	}
	c := *cfg
	c.RedirectURL = fmt.Sprintf("http://localhost:%d/", ln.Addr().(*net.TCPAddr).Port)

	state, err := randomState()
	if err != nil {
		_ = ln.Close()
		return nil, err
	}

	results := make(chan callback, 1)
	send := func(cb callback) {
		select {
		case results <- cb:
		default:
		}
	}
	srv := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" {
				http.NotFound(w, r)
				return
			}
			q := r.URL.Query()
			switch {
			case q.Get("error") != "":
				http.Error(w, "Authorization was denied. You may close this window.", http.StatusForbidden)
				send(callback{err: fmt.Errorf("authorization denied: %s", q.Get("error"))})
			case q.Get("state") != state:
				http.Error(w, "State mismatch.", http.StatusBadRequest)
				send(callback{err: errors.New("authorization state mismatch")})
			case q.Get("code") == "":
				http.Error(w, "Missing code.", http.StatusBadRequest)
				send(callback{err: errors.New("authorization redirect without code")})
			default:
				fmt.Fprintln(w, "Authorization complete. You may close this window.")
				send(callback{code: q.Get("code")})
			}
		}),
	}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	prompt := a.Prompt
	if prompt == nil {
		prompt = func(u string) {
			fmt.Fprintf(os.Stderr, "Open this URL in your browser to authorize access:\n\n  %s\n\n", u)
		}
	}
	prompt(c.AuthCodeURL(state, oauth2.AccessTypeOffline))

	waitCtx := ctx
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	var cb callback
	select {
	case cb = <-results:
	case <-waitCtx.Done():
		return nil, fmt.Errorf("waiting for authorization: %w", waitCtx.Err())
	}
	if cb.err != nil {
		return nil, cb.err
	}

	tok, err := c.Exchange(ctx, cb.code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tok, nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
