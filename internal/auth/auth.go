// Package auth provides OAuth2 authentication for the Google Drive API.
// Supports two modes:
//   - CLI mode: client secrets and tokens from local files
//   - MCP mode: OAuth config and access token injected via context
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Context keys for MCP mode token injection.
type contextKey string

const (
	ctxKeyOAuthConfig contextKey = "oauth_config"
	ctxKeyAccessToken contextKey = "access_token"
)

const (
	// File permissions
	configDirPerm = 0755
	tokenFilePerm = 0600

	// Default config paths
	DefaultConfigDirName   = ".pushdrive"
	DefaultTokenFileName   = "token.json"
	DefaultSettingsName    = "settings.json"
	DefaultSecretsFileName = "client_secret.json"

	// Environment variable names
	EnvConfigDir   = "PUSHDRIVE_CONFIG_DIR"
	EnvSecretsPath = "PUSHDRIVE_CREDENTIALS_PATH"
)

// Scopes requested from Google on first authorization.
var Scopes = []string{
	drive.DriveFileScope,
	drive.DriveMetadataReadonlyScope,
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"openid",
}

// ErrNotAuthenticated is returned when no usable token exists. It marks a
// blocking precondition: the caller must run the interactive auth flow.
var ErrNotAuthenticated = errors.New("not authenticated")

// Config holds the configuration paths for authentication.
type Config struct {
	ConfigDir   string
	SecretsPath string
}

// NewConfig creates a new Config with priority: CLI args > env vars > defaults.
func NewConfig(cliConfigDir, cliSecretsPath string) *Config {
	cfg := &Config{}

	// Determine config directory: CLI > Env > Default
	if cliConfigDir != "" {
		cfg.ConfigDir = cliConfigDir
	} else if envDir := os.Getenv(EnvConfigDir); envDir != "" {
		cfg.ConfigDir = envDir
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			cfg.ConfigDir = DefaultConfigDirName
		} else {
			cfg.ConfigDir = filepath.Join(home, DefaultConfigDirName)
		}
	}

	// Determine client secrets path: CLI > Env > Default lookup
	if cliSecretsPath != "" {
		cfg.SecretsPath = cliSecretsPath
	} else if envSecrets := os.Getenv(EnvSecretsPath); envSecrets != "" {
		cfg.SecretsPath = envSecrets
	}
	// If still empty, will be resolved by GetSecretsPath

	return cfg
}

// GetTokenPath returns the token file path.
func (c *Config) GetTokenPath() string {
	return filepath.Join(c.ConfigDir, DefaultTokenFileName)
}

// GetSettingsPath returns the settings file path.
func (c *Config) GetSettingsPath() string {
	return filepath.Join(c.ConfigDir, DefaultSettingsName)
}

// GetSecretsPath returns the client secrets file path.
func (c *Config) GetSecretsPath() (string, error) {
	// If explicitly set via CLI or env, use it
	if c.SecretsPath != "" {
		if _, err := os.Stat(c.SecretsPath); err == nil {
			return c.SecretsPath, nil
		}
		return "", fmt.Errorf("client secrets file not found at %s", c.SecretsPath)
	}

	// Try current directory first
	if _, err := os.Stat(DefaultSecretsFileName); err == nil {
		return DefaultSecretsFileName, nil
	}

	// Try config directory
	configPath := filepath.Join(c.ConfigDir, DefaultSecretsFileName)
	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or %s", DefaultSecretsFileName, c.ConfigDir)
}

// LoadOAuthConfig reads the client secrets file and builds the OAuth2 config.
func LoadOAuthConfig(cfg *Config) (*oauth2.Config, error) {
	secretsPath, err := cfg.GetSecretsPath()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(secretsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secrets file: %v", err)
	}

	config, err := google.ConfigFromJSON(b, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secrets file: %v", err)
	}

	return config, nil
}

// WithOAuthConfig injects an OAuth2 config into the context (MCP mode).
func WithOAuthConfig(ctx context.Context, config *oauth2.Config) context.Context {
	return context.WithValue(ctx, ctxKeyOAuthConfig, config)
}

// GetOAuthConfigFromContext retrieves the OAuth2 config from context.
func GetOAuthConfigFromContext(ctx context.Context) (*oauth2.Config, bool) {
	config, ok := ctx.Value(ctxKeyOAuthConfig).(*oauth2.Config)
	return config, ok
}

// WithAccessToken injects an OAuth2 token into the context (MCP mode).
func WithAccessToken(ctx context.Context, token *oauth2.Token) context.Context {
	return context.WithValue(ctx, ctxKeyAccessToken, token)
}

// GetAccessTokenFromContext retrieves the OAuth2 token from context.
func GetAccessTokenFromContext(ctx context.Context) (*oauth2.Token, bool) {
	token, ok := ctx.Value(ctxKeyAccessToken).(*oauth2.Token)
	return token, ok
}

// GetClientFromContext creates an HTTP client from context-injected credentials.
// Returns nil if no credentials are in the context.
func GetClientFromContext(ctx context.Context) *http.Client {
	config, hasConfig := GetOAuthConfigFromContext(ctx)
	token, hasToken := GetAccessTokenFromContext(ctx)
	if hasConfig && hasToken {
		return config.Client(ctx, token)
	}
	return nil
}

// GetAuthenticatedService returns an authenticated Drive service from the
// stored token, refreshing it when expired. It never starts an interactive
// flow: a missing or unrefreshable token yields ErrNotAuthenticated.
func GetAuthenticatedService(cfg *Config) (*drive.Service, error) {
	return GetAuthenticatedServiceWithContext(context.Background(), cfg)
}

// GetAuthenticatedServiceWithContext returns an authenticated Drive service.
// In MCP mode (context has OAuth config + token), uses context credentials.
// In CLI mode, uses file-based credentials.
func GetAuthenticatedServiceWithContext(ctx context.Context, cfg *Config) (*drive.Service, error) {
	// MCP mode: check context for injected credentials
	if client := GetClientFromContext(ctx); client != nil {
		srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
		if err != nil {
			return nil, fmt.Errorf("unable to create Drive client: %v", err)
		}
		return srv, nil
	}

	// CLI mode: file-based credentials
	config, err := LoadOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	tokenPath := cfg.GetTokenPath()
	tok, err := LoadToken(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("%w: no stored token, run the auth command first", ErrNotAuthenticated)
	}

	tok, err = EnsureValid(ctx, config, tok, tokenPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	client := config.Client(ctx, tok)
	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive client: %v", err)
	}

	return srv, nil
}
