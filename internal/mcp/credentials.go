package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// OAuthCredentials holds the Google OAuth client credentials.
type OAuthCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// LoadOAuthCredentials loads Google OAuth client credentials from Secret
// Manager or a local file, in that order.
func LoadOAuthCredentials(secretName, secretProject, credentialFile string) (*OAuthCredentials, error) {
	// Try Secret Manager first
	if secretName != "" && secretProject != "" {
		creds, err := loadFromSecretManager(secretName, secretProject)
		if err != nil {
			slog.Warn("failed to load credentials from Secret Manager, trying local file",
				"error", err, "secret_name", secretName)
		} else {
			slog.Info("loaded OAuth credentials from Secret Manager", "secret_name", secretName)
			return creds, nil
		}
	}

	// Fall back to local file
	if credentialFile != "" {
		return loadFromFile(credentialFile)
	}

	// Try default locations
	for _, path := range []string{"client_secret.json", "credentials.json"} {
		if _, err := os.Stat(path); err == nil {
			return loadFromFile(path)
		}
	}

	return nil, fmt.Errorf("no OAuth credentials found: set --secret-name/--secret-project or --credential-file")
}

func loadFromSecretManager(secretName, projectID string) (*OAuthCredentials, error) {
	ctx := context.Background()
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create secret manager client: %w", err)
	}
	defer client.Close()

	name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, secretName)
	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return nil, fmt.Errorf("access secret %s: %w", name, err)
	}

	return parseCredentials(result.Payload.Data)
}

func loadFromFile(path string) (*OAuthCredentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credential file %s: %w", path, err)
	}

	slog.Info("loaded OAuth credentials from local file", "path", path)
	return parseCredentials(data)
}

func parseCredentials(data []byte) (*OAuthCredentials, error) {
	// Try standard Google credentials format first: {"web": {...}} or {"installed": {...}}
	var wrapper struct {
		Web struct {
			ClientID     string `json:"client_id"`
			ClientSecret string `json:"client_secret"`
		} `json:"web"`
		Installed struct {
			ClientID     string `json:"client_id"`
			ClientSecret string `json:"client_secret"`
		} `json:"installed"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil {
		if wrapper.Web.ClientID != "" {
			return &OAuthCredentials{
				ClientID:     wrapper.Web.ClientID,
				ClientSecret: wrapper.Web.ClientSecret,
			}, nil
		}
		if wrapper.Installed.ClientID != "" {
			return &OAuthCredentials{
				ClientID:     wrapper.Installed.ClientID,
				ClientSecret: wrapper.Installed.ClientSecret,
			}, nil
		}
	}

	// Try flat format: {"client_id": ..., "client_secret": ...}
	var creds OAuthCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("credentials missing client_id or client_secret")
	}
	return &creds, nil
}
