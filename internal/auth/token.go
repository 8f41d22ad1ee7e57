package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// SaveToken saves a token to a file path, overwriting any previous state.
func SaveToken(path string, token *oauth2.Token) error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPerm); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, tokenFilePerm)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}

// LoadToken retrieves a token from a local file.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// EnsureValid returns a usable token. A still-valid token is returned as is.
// An expired token with a refresh token is exchanged at the token endpoint
// and the refreshed state is persisted to tokenPath. An expired token with
// no refresh token is an error; nothing is written in that case.
func EnsureValid(ctx context.Context, config *oauth2.Config, tok *oauth2.Token, tokenPath string) (*oauth2.Token, error) {
	if tok.Valid() {
		return tok, nil
	}

	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("token expired and no refresh token available")
	}

	refreshed, err := config.TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("unable to refresh token: %v", err)
	}

	if err := SaveToken(tokenPath, refreshed); err != nil {
		return nil, err
	}

	return refreshed, nil
}
