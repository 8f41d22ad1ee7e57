package drive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFindOrCreateSubfolder(t *testing.T) {
	api := newFakeAPI()
	uploader := NewSubfolderUploader(newTestService(api, ""))

	first, err := uploader.FindOrCreateSubfolder(context.Background(), "parent-1", "screenshots")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first == "" {
		t.Fatal("expected a folder id")
	}

	// Second call must find the folder created by the first
	second, err := uploader.FindOrCreateSubfolder(context.Background(), "parent-1", "screenshots")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second != first {
		t.Errorf("second call created a new folder: %q != %q", second, first)
	}

	// Same name under a different parent is a different folder
	other, err := uploader.FindOrCreateSubfolder(context.Background(), "parent-2", "screenshots")
	if err != nil {
		t.Fatalf("other parent: %v", err)
	}
	if other == first {
		t.Error("subfolder lookup must be scoped to the parent")
	}
}

func TestFindOrCreateSubfolderListError(t *testing.T) {
	api := newFakeAPI()
	api.listErr = errors.New("googleapi: Error 500")
	uploader := NewSubfolderUploader(newTestService(api, ""))

	if _, err := uploader.FindOrCreateSubfolder(context.Background(), "parent-1", "x"); err == nil {
		t.Fatal("expected lookup error to propagate")
	}
}

func TestUploadDirectory(t *testing.T) {
	api := newFakeAPI()
	api.failNames["b.txt"] = true
	uploader := NewSubfolderUploader(newTestService(api, ""))

	dir := t.TempDir()
	writeTempFile(t, dir, "a.txt", "a")
	pathB := writeTempFile(t, dir, "b.txt", "b")
	writeTempFile(t, dir, "c.txt", "c")
	writeTempFile(t, dir, "skip.log", "not matched")

	result, err := uploader.UploadDirectory(context.Background(), dir, "parent-1", "batch", "*.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Total != 3 {
		t.Errorf("Total = %d, want 3", result.Total)
	}
	if result.Uploaded != 2 {
		t.Errorf("Uploaded = %d, want 2", result.Uploaded)
	}
	if len(result.FailedFiles) != 1 || result.FailedFiles[0] != pathB {
		t.Errorf("FailedFiles = %v, want [%s]", result.FailedFiles, pathB)
	}
	if result.SubfolderID == "" || result.SubfolderName != "batch" {
		t.Errorf("subfolder = %q %q", result.SubfolderID, result.SubfolderName)
	}
}

func TestUploadDirectoryNoMatches(t *testing.T) {
	uploader := NewSubfolderUploader(newTestService(newFakeAPI(), ""))

	result, err := uploader.UploadDirectory(context.Background(), t.TempDir(), "parent-1", "empty", "*.png")
	if err != nil {
		t.Fatalf("zero matches must be a non-error: %v", err)
	}
	if result.Total != 0 || result.Uploaded != 0 || len(result.FailedFiles) != 0 {
		t.Errorf("result = %+v, want zero-upload success", result)
	}
	if result.SubfolderID == "" {
		t.Error("subfolder should still be resolved")
	}
}

func TestUploadDirectoryMissingDir(t *testing.T) {
	uploader := NewSubfolderUploader(newTestService(newFakeAPI(), ""))

	if _, err := uploader.UploadDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"), "parent-1", "x", "*"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestUploadDirectorySkipsSubdirectories(t *testing.T) {
	api := newFakeAPI()
	uploader := NewSubfolderUploader(newTestService(api, ""))

	dir := t.TempDir()
	writeTempFile(t, dir, "a.txt", "a")
	if err := os.Mkdir(filepath.Join(dir, "nested.txt"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := uploader.UploadDirectory(context.Background(), dir, "parent-1", "batch", "*.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 || result.Uploaded != 1 {
		t.Errorf("result = %+v, want 1/1", result)
	}
}
