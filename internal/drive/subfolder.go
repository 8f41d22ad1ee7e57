package drive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
)

// SubfolderUploader extends the base service with directory-to-subfolder
// uploads. It wraps a Service rather than embedding it so the base operations
// stay the single entry point to the remote API.
type SubfolderUploader struct {
	drive *Service
}

// NewSubfolderUploader wraps an authenticated Service.
func NewSubfolderUploader(s *Service) *SubfolderUploader {
	return &SubfolderUploader{drive: s}
}

// BatchResult aggregates a directory upload.
type BatchResult struct {
	Uploaded       int
	Total          int
	FailedFiles    []string
	SubfolderID    string
	SubfolderName  string
	ParentFolderID string
}

// FindOrCreateSubfolder returns the ID of the subfolder with the given name
// under parentID, creating it when absent. The first match wins when
// duplicate names exist. Known limitation: two concurrent callers can both
// observe "not found" and each create a folder; the lookup and the create
// are not atomic.
func (u *SubfolderUploader) FindOrCreateSubfolder(ctx context.Context, parentID, name string) (string, error) {
	query := fmt.Sprintf("name='%s' and '%s' in parents and mimeType='%s' and trashed=false",
		name, parentID, FolderMimeType)

	files, err := u.drive.api.ListFiles(ctx, query, "", 1)
	if err != nil {
		return "", fmt.Errorf("unable to look up subfolder %q: %w", name, err)
	}

	if len(files) > 0 {
		slog.Info("found existing subfolder", "name", name, "id", files[0].Id)
		return files[0].Id, nil
	}

	folder, err := u.drive.CreateFolder(ctx, name, parentID)
	if err != nil {
		return "", err
	}

	slog.Info("created subfolder", "name", name, "id", folder.ID)
	return folder.ID, nil
}

// UploadDirectory uploads the files in localDir matching pattern into the
// named subfolder of parentID, creating the subfolder when needed. Matching
// is shallow. Per-file failures are recorded and the batch keeps going; a
// directory with zero matches is a zero-upload success.
func (u *SubfolderUploader) UploadDirectory(ctx context.Context, localDir, parentID, subfolderName, pattern string) (*BatchResult, error) {
	stat, err := os.Stat(localDir)
	if err != nil {
		return nil, fmt.Errorf("directory not found: %s", localDir)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", localDir)
	}

	subfolderID, err := u.FindOrCreateSubfolder(ctx, parentID, subfolderName)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		SubfolderID:    subfolderID,
		SubfolderName:  subfolderName,
		ParentFolderID: parentID,
	}

	matches, err := filepath.Glob(filepath.Join(localDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}

	var files []string
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			files = append(files, m)
		}
	}

	if len(files) == 0 {
		slog.Warn("no files found matching pattern", "dir", localDir, "pattern", pattern)
		return result, nil
	}

	result.Total = len(files)
	slog.Info("uploading files to subfolder", "count", len(files), "subfolder", subfolderName)

	bar := progressbar.Default(int64(len(files)), fmt.Sprintf("Uploading to %s", subfolderName))
	for _, path := range files {
		res, err := u.drive.Upload(ctx, UploadRequest{Path: path, FolderID: subfolderID})
		if err != nil || !res.Success {
			if err != nil {
				slog.Error("upload failed", "file", path, "error", err)
			} else {
				slog.Error("upload failed", "file", path, "error", res.Err)
			}
			result.FailedFiles = append(result.FailedFiles, path)
		} else {
			result.Uploaded++
		}
		bar.Add(1)
	}

	slog.Info("upload complete", "uploaded", result.Uploaded, "total", result.Total)
	return result, nil
}
