package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestSaveAndLoadToken(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "nested", "token.json")

	tok := &oauth2.Token{
		AccessToken:  "access-123",
		RefreshToken: "refresh-456",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}

	if err := SaveToken(tokenPath, tok); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	loaded, err := LoadToken(tokenPath)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}

	if loaded.AccessToken != tok.AccessToken {
		t.Errorf("AccessToken = %q, want %q", loaded.AccessToken, tok.AccessToken)
	}
	if loaded.RefreshToken != tok.RefreshToken {
		t.Errorf("RefreshToken = %q, want %q", loaded.RefreshToken, tok.RefreshToken)
	}
}

func TestLoadTokenMissing(t *testing.T) {
	if _, err := LoadToken(filepath.Join(t.TempDir(), "token.json")); err == nil {
		t.Fatal("expected error for missing token file")
	}
}

func TestEnsureValidStillValid(t *testing.T) {
	tok := &oauth2.Token{
		AccessToken: "still-good",
		Expiry:      time.Now().Add(time.Hour),
	}

	got, err := EnsureValid(context.Background(), &oauth2.Config{}, tok, filepath.Join(t.TempDir(), "token.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AccessToken != "still-good" {
		t.Errorf("AccessToken = %q, want %q", got.AccessToken, "still-good")
	}
}

func TestEnsureValidRefreshes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.FormValue("grant_type"); got != "" && got != "refresh_token" {
			t.Errorf("grant_type = %q, want refresh_token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600,"refresh_token":"refresh-456"}`)
	}))
	defer ts.Close()

	config := &oauth2.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		Endpoint:     oauth2.Endpoint{TokenURL: ts.URL},
	}

	expired := &oauth2.Token{
		AccessToken:  "stale-token",
		RefreshToken: "refresh-456",
		Expiry:       time.Now().Add(-time.Hour),
	}

	tokenPath := filepath.Join(t.TempDir(), "token.json")

	got, err := EnsureValid(context.Background(), config, expired, tokenPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AccessToken != "fresh-token" {
		t.Errorf("AccessToken = %q, want %q", got.AccessToken, "fresh-token")
	}

	// Refreshed state must be persisted
	persisted, err := LoadToken(tokenPath)
	if err != nil {
		t.Fatalf("refreshed token was not persisted: %v", err)
	}
	if persisted.AccessToken != "fresh-token" {
		t.Errorf("persisted AccessToken = %q, want %q", persisted.AccessToken, "fresh-token")
	}
}

func TestEnsureValidNoRefreshToken(t *testing.T) {
	expired := &oauth2.Token{
		AccessToken: "stale-token",
		Expiry:      time.Now().Add(-time.Hour),
	}

	tokenPath := filepath.Join(t.TempDir(), "token.json")

	if _, err := EnsureValid(context.Background(), &oauth2.Config{}, expired, tokenPath); err == nil {
		t.Fatal("expected error for expired token without refresh token")
	}

	// Nothing must be written on failure
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Errorf("token file should not exist, stat err = %v", err)
	}
}

func TestEnsureValidRefreshEndpointFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	}))
	defer ts.Close()

	config := &oauth2.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		Endpoint:     oauth2.Endpoint{TokenURL: ts.URL},
	}

	expired := &oauth2.Token{
		AccessToken:  "stale-token",
		RefreshToken: "revoked",
		Expiry:       time.Now().Add(-time.Hour),
	}

	tokenPath := filepath.Join(t.TempDir(), "token.json")

	if _, err := EnsureValid(context.Background(), config, expired, tokenPath); err == nil {
		t.Fatal("expected error when refresh endpoint rejects the grant")
	}

	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Errorf("token file should not exist, stat err = %v", err)
	}
}
