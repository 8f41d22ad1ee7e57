package auth

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	// OAuth loopback server configuration
	oauthServerPort    = ":8080"
	oauthCallbackPath  = "/oauth2callback"
	oauthRedirectURL   = "http://localhost:8080/oauth2callback"
	oauthServerTimeout = 5 * time.Second
	oauthTimeout       = 3 * time.Minute
	oauthServerStartup = 100 * time.Millisecond
)

// GetTokenFromWeb requests a token from the web using a local loopback server.
func GetTokenFromWeb(config *oauth2.Config) (*oauth2.Token, error) {
	// Use localhost with configured port
	config.RedirectURL = oauthRedirectURL

	// Buffered so a redirect arriving after the timeout cannot leave the
	// handler goroutine blocked on the send
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	// Start local HTTP server
	mux := http.NewServeMux()
	server := &http.Server{Addr: oauthServerPort, Handler: mux}
	mux.HandleFunc(oauthCallbackPath, callbackHandler(codeChan, errChan))

	// Start server in background
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait a moment for server to start
	time.Sleep(oauthServerStartup)

	// Generate auth URL
	authURL := config.AuthCodeURL("state-token",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	fmt.Printf("Opening browser for authentication...\n")
	fmt.Printf("If browser doesn't open, visit:\n%v\n\n", authURL)

	openBrowser(authURL)

	// Wait for auth code or error
	var code string
	select {
	case code = <-codeChan:
		// Success
	case err := <-errChan:
		return nil, err
	case <-time.After(oauthTimeout):
		return nil, fmt.Errorf("authentication timeout after %v", oauthTimeout)
	}

	// Shutdown server
	ctx, cancel := context.WithTimeout(context.Background(), oauthServerTimeout)
	defer cancel()
	_ = server.Shutdown(ctx)

	// Exchange code for token
	tok, err := config.Exchange(context.Background(), code)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %v", err)
	}

	return tok, nil
}

// callbackHandler handles the OAuth redirect, delivering the authorization
// code or an error on the given channels. The channels must be buffered:
// the handler may run after the caller has stopped receiving.
func callbackHandler(codeChan chan<- string, errChan chan<- error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no code in callback")
			return
		}

		// Send success message to browser
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `
			<html>
			<body>
				<h1>Authentication successful!</h1>
				<p>You can close this window and return to the terminal.</p>
			</body>
			</html>
		`)

		codeChan <- code
	}
}

// GetTokenManual prints the authorization URL and blocks on a prompt for the
// pasted code. For environments without an accessible browser or loopback.
func GetTokenManual(config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("Please visit this URL to authorize the application:")
	fmt.Println(authURL)
	fmt.Println(strings.Repeat("=", 50) + "\n")

	fmt.Print("Enter the authorization code: ")
	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %v", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("empty authorization code")
	}

	tok, err := config.Exchange(context.Background(), code)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange authorization code: %v", err)
	}

	return tok, nil
}

// openBrowser tries to open the system browser on the auth URL.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}

	if cmd != nil {
		_ = cmd.Start()
	}
}
