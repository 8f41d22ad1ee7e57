package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"pushdrive/internal/auth"
)

// AuthCmd returns the auth command.
func AuthCmd() *cobra.Command {
	var manual bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Drive",
		Long: `Run the interactive OAuth2 flow and store the resulting token.

By default a local loopback server receives the authorization code after the
browser consent screen. Use --manual on headless machines to paste the code
instead.

Examples:
  pushdrive auth
  pushdrive auth --manual`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printInfo("Starting authentication process...")

			config, err := auth.LoadOAuthConfig(globalCfg)
			if err != nil {
				printError("%v", err)
				printError("Please download it from Google Cloud Console")
				return nil
			}

			var tok *oauth2.Token
			if manual {
				tok, err = auth.GetTokenManual(config)
			} else {
				tok, err = auth.GetTokenFromWeb(config)
			}
			if err != nil {
				printError("Authentication failed: %v", err)
				return nil
			}

			if err := auth.SaveToken(globalCfg.GetTokenPath(), tok); err != nil {
				printError("Unable to save token: %v", err)
				return nil
			}

			printSuccess("Authentication successful! Credentials saved.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&manual, "manual", false, "Use manual code entry (for headless environments)")
	return cmd
}

// StatusCmd returns the status command.
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check authentication status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checkAuth()
			return nil
		},
	}
}
