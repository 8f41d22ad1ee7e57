// Package main is the entry point for the pushdrive command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pushdrive/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pushdrive",
		Short: "Google Drive upload tool",
		Long:  "A command-line tool for uploading files to Google Drive",
	}

	// Setup global flags and pre-run hook
	cli.SetupRootCommand(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(cli.AuthCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.SetFolderCmd())
	rootCmd.AddCommand(cli.UploadCmd())
	rootCmd.AddCommand(cli.BatchCmd())
	rootCmd.AddCommand(cli.MCPCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
