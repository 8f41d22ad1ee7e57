// Package mcp implements the MCP HTTP Streamable server exposing the
// Google Drive upload operations as tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"pushdrive/internal/auth"
)

// ServerConfig holds the MCP server configuration.
type ServerConfig struct {
	Host           string
	Port           int
	BaseURL        string
	SecretName     string
	SecretProject  string
	CredentialFile string
}

// Server is the MCP HTTP Streamable server.
type Server struct {
	config      *ServerConfig
	mcpServer   *server.MCPServer
	oauthConfig *oauth2.Config
	httpServer  *http.Server
}

// NewServer creates and configures the MCP server.
func NewServer(cfg *ServerConfig) (*Server, error) {
	setupLogging()

	// Load OAuth client credentials
	creds, err := LoadOAuthCredentials(cfg.SecretName, cfg.SecretProject, cfg.CredentialFile)
	if err != nil {
		return nil, fmt.Errorf("load OAuth credentials: %w", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Scopes:       auth.Scopes,
		Endpoint:     google.Endpoint,
	}

	mcpSrv := server.NewMCPServer(
		"pushdrive-mcp-server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s := &Server{
		config:      cfg,
		mcpServer:   mcpSrv,
		oauthConfig: oauthConfig,
	}

	s.registerPingTool()
	RegisterUploadTools(s)

	return s, nil
}

// Start starts the MCP server with graceful shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	// Create the StreamableHTTP server with auth context injection
	streamableServer := server.NewStreamableHTTPServer(s.mcpServer,
		server.WithEndpointPath("/mcp"),
		server.WithHTTPContextFunc(s.httpContextFunc),
	)

	mux := http.NewServeMux()

	// Health endpoint (no auth)
	mux.HandleFunc("GET /health", handleHealth)

	// MCP endpoint (Bearer token enforced by the middleware)
	mux.Handle("/mcp", s.authMiddleware(streamableServer))

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("shutdown signal received, shutting down gracefully")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting MCP server", "addr", addr, "base_url", s.config.BaseURL)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// validateAccessToken checks a bearer token and returns the OAuth config and
// token for Drive API calls. The token is a Google access token obtained by
// the MCP client out-of-band.
func (s *Server) validateAccessToken(accessToken string) (*oauth2.Config, *oauth2.Token, error) {
	if accessToken == "" {
		return nil, nil, fmt.Errorf("empty access token")
	}

	token := &oauth2.Token{AccessToken: accessToken}
	return s.oauthConfig, token, nil
}

// httpContextFunc injects auth context from the HTTP request into the MCP
// context. Called by the mcp-go SDK for each request to the /mcp endpoint.
func (s *Server) httpContextFunc(ctx context.Context, r *http.Request) context.Context {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ctx
	}

	accessToken := strings.TrimPrefix(authHeader, "Bearer ")

	oauthConfig, token, err := s.validateAccessToken(accessToken)
	if err != nil {
		slog.Warn("invalid access token", "error", err)
		return ctx
	}

	ctx = auth.WithOAuthConfig(ctx, oauthConfig)
	ctx = auth.WithAccessToken(ctx, token)

	return ctx
}

// authMiddleware wraps an HTTP handler to enforce Bearer token authentication.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		accessToken := strings.TrimPrefix(authHeader, "Bearer ")
		if _, _, err := s.validateAccessToken(accessToken); err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// registerPingTool registers the ping tool for connectivity testing.
func (s *Server) registerPingTool() {
	tool := mcp.NewTool("ping",
		mcp.WithDescription("Test MCP connectivity. Returns pong with current server time."),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result := mcp.NewToolResultText(fmt.Sprintf(`{"message":"pong","time":"%s"}`, time.Now().Format(time.RFC3339)))
		slog.Info("tool call", "tool", "ping", "duration", time.Since(start))
		return result, nil
	})
}

// handleHealth handles the /health endpoint.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// setupLogging configures slog based on environment.
func setupLogging() {
	var handler slog.Handler

	if os.Getenv("ENVIRONMENT") == "prd" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: parseLogLevel(os.Getenv("LOG_LEVEL")),
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: parseLogLevel(os.Getenv("LOG_LEVEL")),
		})
	}

	slog.SetDefault(slog.New(handler))
}

// parseLogLevel parses a log level string.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
