package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

// TokenStore persists one OAuth token as JSON on disk.
type TokenStore struct {
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

func (s *TokenStore) Path() string { return s.path }

// fileToken reads both the oauth2.Token layout and the authorized-user layout
// written by Google's Python client ("token" instead of "access_token").
type fileToken struct {
	AccessToken  string    `json:"access_token"`
	Token        string    `json:"token"`
	TokenType    string    `json:"token_type"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry"`
}

// Load reads the stored token. A missing file returns an error satisfying
// errors.Is(err, fs.ErrNotExist).
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("error reading token file: %w", err)
	}

	var ft fileToken
	if err := json.Unmarshal(data, &ft); err != nil {
		return nil, fmt.Errorf("error decoding token file %s: %w", s.path, err)
	}
	access := ft.AccessToken
	if access == "" {
		access = ft.Token
	}
	return &oauth2.Token{
		AccessToken:  access,
		TokenType:    ft.TokenType,
		RefreshToken: ft.RefreshToken,
		Expiry:       ft.Expiry,
	}, nil
}

// Save writes tok with owner-only permissions, replacing any previous token.
func (s *TokenStore) Save(tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding token: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("error creating token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("error setting token file mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("error writing token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("error saving token file: %w", err)
	}
	return nil
}
