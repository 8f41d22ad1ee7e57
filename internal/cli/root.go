// Package cli implements the pushdrive subcommands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pushdrive/internal/auth"
	"pushdrive/internal/drive"
	"pushdrive/internal/telemetry"
)

var (
	configDirFlag string
	secretsFlag   string
	traceFlag     bool

	globalCfg     *auth.Config
	traceShutdown func(context.Context) error
)

// SetupRootCommand registers the global flags and the pre/post-run hooks.
func SetupRootCommand(root *cobra.Command) {
	root.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "Directory holding token.json and settings.json")
	root.PersistentFlags().StringVar(&secretsFlag, "credentials", "", "Path to the OAuth client secrets file")
	root.PersistentFlags().BoolVar(&traceFlag, "trace", false, "Emit OpenTelemetry spans to stdout")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		globalCfg = auth.NewConfig(configDirFlag, secretsFlag)

		if traceFlag {
			shutdown, err := telemetry.Init()
			if err != nil {
				return fmt.Errorf("enable tracing: %w", err)
			}
			traceShutdown = shutdown
		}
		return nil
	}

	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if traceShutdown != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = traceShutdown(ctx)
		}
	}
}

// getService builds the Drive service from the stored token and settings.
func getService() (*drive.Service, error) {
	srv, err := auth.GetAuthenticatedService(globalCfg)
	if err != nil {
		return nil, err
	}

	defaultFolder := auth.LoadDefaultFolder(globalCfg.GetSettingsPath())
	return drive.NewService(srv, defaultFolder), nil
}

// checkAuth reports the authentication state and returns the service when
// authenticated.
func checkAuth() (*drive.Service, bool) {
	svc, err := getService()
	if err != nil {
		printWarning("Not authenticated. Please run: pushdrive auth")
		return nil, false
	}

	printSuccess("Authenticated with Google Drive")
	if id := svc.DefaultFolderID(); id != "" {
		printInfo("Default folder ID: %s", id)
	}
	return svc, true
}

func printSuccess(format string, a ...interface{}) {
	color.Green("[OK] "+format, a...)
}

func printError(format string, a ...interface{}) {
	color.Red("[ERROR] "+format, a...)
}

func printInfo(format string, a ...interface{}) {
	color.Blue("[INFO] "+format, a...)
}

func printWarning(format string, a ...interface{}) {
	color.Yellow("[WARNING] "+format, a...)
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
