package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pushdrive/internal/auth"
	"pushdrive/internal/drive"
)

// SetFolderCmd returns the set-folder command.
func SetFolderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-folder",
		Short: "Set the default upload folder",
		Long:  "Interactively choose a Google Drive folder and store it as the default upload target.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ok := checkAuth()
			if !ok {
				return nil
			}

			folderID := selectFolder(cmd.Context(), svc)
			if folderID == "" {
				printWarning("No folder selected")
				return nil
			}

			if err := auth.SaveDefaultFolder(globalCfg.GetSettingsPath(), folderID); err != nil {
				printError("Unable to save default folder: %v", err)
				return nil
			}

			printSuccess("Default folder set: %s", folderID)
			return nil
		},
	}
}

// selectFolder runs the interactive folder chooser. Returns the chosen
// folder ID, or empty when the user bails out or listing fails.
func selectFolder(ctx context.Context, svc *drive.Service) string {
	printInfo("Fetching folders from Google Drive...")

	folders, err := svc.ListFolders(ctx, "")
	if err != nil {
		printError("Error selecting folder: %v", err)
		return ""
	}

	reader := bufio.NewReader(os.Stdin)

	if len(folders) == 0 {
		printWarning("No folders found in your Google Drive")
		fmt.Print("Would you like to create a new folder? (y/n): ")
		if strings.ToLower(readLine(reader)) != "y" {
			return ""
		}
		return createFolderPrompt(ctx, svc, reader)
	}

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("Available Folders:")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("%-5s %-40s\n", "#", "Folder Name")
	fmt.Println(strings.Repeat("-", 50))
	for i, folder := range folders {
		fmt.Printf("%-5d %-40s\n", i+1, folder.Name)
	}
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("%-5d %-40s\n", 0, "Create new folder")
	fmt.Println(strings.Repeat("=", 50))

	for {
		fmt.Print("\nSelect folder number (or 0 to create new): ")
		line := readLine(reader)
		if line == "" {
			return ""
		}

		choice, err := strconv.Atoi(line)
		if err != nil {
			printError("Please enter a valid number.")
			continue
		}

		switch {
		case choice == 0:
			return createFolderPrompt(ctx, svc, reader)
		case choice >= 1 && choice <= len(folders):
			return folders[choice-1].ID
		default:
			printError("Invalid selection. Please try again.")
		}
	}
}

func createFolderPrompt(ctx context.Context, svc *drive.Service, reader *bufio.Reader) string {
	fmt.Print("Enter new folder name: ")
	name := readLine(reader)
	if name == "" {
		return ""
	}

	folder, err := svc.CreateFolder(ctx, name, "")
	if err != nil {
		printError("Unable to create folder: %v", err)
		return ""
	}
	return folder.ID
}
