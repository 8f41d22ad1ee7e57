// Package main is the entry point for the pushdrive-subfolder command,
// a non-interactive uploader meant for scripts and cron jobs.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pushdrive/internal/auth"
	"pushdrive/internal/drive"
)

var (
	parentFolderID string
	subfolderName  string
	pattern        string
	configDir      string
	secretsPath    string
)

// Seams for tests; production wiring stays here.
var (
	newDriveService = func(cfg *auth.Config) (*drive.Service, error) {
		srv, err := auth.GetAuthenticatedService(cfg)
		if err != nil {
			return nil, err
		}
		return drive.NewService(srv, ""), nil
	}

	uploadDirectory = func(ctx context.Context, svc *drive.Service, localDir string) (*drive.BatchResult, error) {
		return drive.NewSubfolderUploader(svc).UploadDirectory(ctx, localDir, parentFolderID, subfolderName, pattern)
	}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pushdrive-subfolder LOCAL_DIR",
		Short: "Upload a directory's files into a Google Drive subfolder",
		Long: "Uploads every file in LOCAL_DIR matching the pattern into a named " +
			"subfolder of a Drive folder, creating the subfolder when absent.",
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringVar(&parentFolderID, "parent-folder", "", "Parent folder ID in Google Drive")
	rootCmd.Flags().StringVar(&subfolderName, "subfolder-name", "", "Name of the subfolder to find or create")
	rootCmd.Flags().StringVar(&pattern, "pattern", "*", "Shallow file pattern, e.g. *.png")
	rootCmd.Flags().StringVar(&configDir, "config-dir", "", "Directory holding token.json and settings.json")
	rootCmd.Flags().StringVar(&secretsPath, "credentials", "", "Path to the OAuth client secrets file")
	rootCmd.MarkFlagRequired("parent-folder")
	rootCmd.MarkFlagRequired("subfolder-name")

	// Exit code contract: 0 when the batch ran, even with per-file
	// failures; 1 for operation-level failures (auth, missing directory,
	// subfolder resolution).
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	localDir := args[0]

	cfg := auth.NewConfig(configDir, secretsPath)
	svc, err := newDriveService(cfg)
	if err != nil {
		return fmt.Errorf("not authenticated, please run pushdrive auth first: %v", err)
	}

	result, err := uploadDirectory(context.Background(), svc, localDir)
	if err != nil {
		return err
	}

	color.Green("Uploaded %d/%d files to %s (folder ID %s)",
		result.Uploaded, result.Total, result.SubfolderName, result.SubfolderID)

	// Per-file failures are reported but do not fail the run
	if len(result.FailedFiles) > 0 {
		color.Red("Failed files:")
		for _, f := range result.FailedFiles {
			color.Red("  %s", f)
		}
	}

	return nil
}
