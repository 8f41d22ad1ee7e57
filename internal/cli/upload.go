package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"pushdrive/internal/auth"
	"pushdrive/internal/drive"
	"pushdrive/internal/telemetry"
)

// UploadCmd returns the upload command.
func UploadCmd() *cobra.Command {
	var folderFlag string

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a file to Google Drive",
		Long: `Upload a single file to Google Drive.

The target folder is the --folder flag, the stored default, or an
interactive chooser when neither is set.

Examples:
  pushdrive upload report.pdf
  pushdrive upload report.pdf --folder 1a2b3c4d5e`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := telemetry.Start(cmd.Context(), "upload",
				attribute.String("file", args[0]))
			defer span.End()

			svc, ok := checkAuth()
			if !ok {
				return nil
			}

			path := args[0]
			stat, err := os.Stat(path)
			if err != nil {
				printError("File not found: %s", path)
				return nil
			}

			target, ok := resolveTargetFolder(ctx, svc, folderFlag, true)
			if !ok {
				printError("Upload cancelled - no folder selected")
				return nil
			}

			printInfo("Uploading: %s (%d bytes)", filepath.Base(path), stat.Size())

			result, err := svc.Upload(ctx, drive.UploadRequest{
				Path:         path,
				FolderID:     target,
				ShowProgress: true,
			})
			if err != nil {
				printError("Upload failed: %v", err)
				return nil
			}
			if !result.Success {
				printError("Upload failed: %s", result.Err)
				return nil
			}

			printSuccess("File uploaded successfully!")
			printInfo("File ID: %s", result.FileID)
			printInfo("View link: %s", result.WebViewLink)
			return nil
		},
	}

	cmd.Flags().StringVar(&folderFlag, "folder", "", "Target folder ID (optional)")
	return cmd
}

// BatchCmd returns the batch command.
func BatchCmd() *cobra.Command {
	var (
		patternFlag string
		folderFlag  string
	)

	cmd := &cobra.Command{
		Use:   "batch DIRECTORY",
		Short: "Upload multiple files from a directory",
		Long: `Upload the files in a directory matching a pattern. Matching is shallow.
Individual failures are reported and the batch keeps going.

Examples:
  pushdrive batch ./exports
  pushdrive batch ./exports --pattern "*.pdf"
  pushdrive batch ./exports --pattern "*.png" --folder 1a2b3c4d5e`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := telemetry.Start(cmd.Context(), "batch",
				attribute.String("dir", args[0]),
				attribute.String("pattern", patternFlag))
			defer span.End()

			svc, ok := checkAuth()
			if !ok {
				return nil
			}

			dir := args[0]
			stat, err := os.Stat(dir)
			if err != nil || !stat.IsDir() {
				printError("Directory not found: %s", dir)
				return nil
			}

			files, err := matchFiles(dir, patternFlag)
			if err != nil {
				printError("%v", err)
				return nil
			}
			if len(files) == 0 {
				printWarning("No files found matching pattern: %s", patternFlag)
				return nil
			}

			printInfo("Found %d files to upload", len(files))

			target, ok := resolveTargetFolder(ctx, svc, folderFlag, false)
			if !ok {
				printError("Upload cancelled - no folder selected")
				return nil
			}

			bar := progressbar.Default(int64(len(files)), "Uploading files")
			success := 0
			for _, path := range files {
				result, err := svc.Upload(ctx, drive.UploadRequest{Path: path, FolderID: target})
				switch {
				case err != nil:
					printError("Failed to upload %s: %v", path, err)
				case !result.Success:
					printError("Failed to upload %s: %s", path, result.Err)
				default:
					success++
				}
				bar.Add(1)
			}

			printSuccess("Upload complete: %d/%d files uploaded successfully", success, len(files))
			return nil
		},
	}

	cmd.Flags().StringVar(&patternFlag, "pattern", "*", "File pattern (e.g., *.pdf)")
	cmd.Flags().StringVar(&folderFlag, "folder", "", "Target folder ID (optional)")
	return cmd
}

// resolveTargetFolder picks the upload target: explicit flag, then the
// stored default, then the interactive chooser. offerSave adds the
// save-as-default prompt after an interactive choice.
func resolveTargetFolder(ctx context.Context, svc *drive.Service, explicit string, offerSave bool) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if id := svc.DefaultFolderID(); id != "" {
		return id, true
	}

	printInfo("No default folder set. Please select a folder:")
	target := selectFolder(ctx, svc)
	if target == "" {
		return "", false
	}

	if offerSave {
		fmt.Print("Save as default folder? (y/n): ")
		if strings.ToLower(readLine(bufio.NewReader(os.Stdin))) == "y" {
			if err := auth.SaveDefaultFolder(globalCfg.GetSettingsPath(), target); err != nil {
				printWarning("Unable to save default folder: %v", err)
			}
		}
	}

	return target, true
}

// matchFiles returns the regular files in dir matching pattern, shallow.
func matchFiles(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}

	var files []string
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			files = append(files, m)
		}
	}
	return files, nil
}
