package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pushdrive/internal/auth"
	"pushdrive/internal/drive"
)

func stubServices(t *testing.T, newSvc func(*auth.Config) (*drive.Service, error),
	upload func(context.Context, *drive.Service, string) (*drive.BatchResult, error)) {
	t.Helper()
	origNew, origUpload := newDriveService, uploadDirectory
	t.Cleanup(func() {
		newDriveService, uploadDirectory = origNew, origUpload
	})
	newDriveService = newSvc
	uploadDirectory = upload
}

func TestRunPerFileFailuresAreNotAnError(t *testing.T) {
	stubServices(t,
		func(cfg *auth.Config) (*drive.Service, error) { return nil, nil },
		func(ctx context.Context, svc *drive.Service, localDir string) (*drive.BatchResult, error) {
			return &drive.BatchResult{
				Uploaded:      2,
				Total:         3,
				FailedFiles:   []string{"photos/b.png"},
				SubfolderID:   "sub-1",
				SubfolderName: "2026-08-24",
			}, nil
		})

	if err := run(nil, []string{"photos"}); err != nil {
		t.Fatalf("batch with per-file failures must exit clean, got: %v", err)
	}
}

func TestRunFullSuccess(t *testing.T) {
	stubServices(t,
		func(cfg *auth.Config) (*drive.Service, error) { return nil, nil },
		func(ctx context.Context, svc *drive.Service, localDir string) (*drive.BatchResult, error) {
			return &drive.BatchResult{Uploaded: 3, Total: 3, SubfolderID: "sub-1", SubfolderName: "batch"}, nil
		})

	if err := run(nil, []string{"photos"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunNotAuthenticated(t *testing.T) {
	stubServices(t,
		func(cfg *auth.Config) (*drive.Service, error) { return nil, auth.ErrNotAuthenticated },
		func(ctx context.Context, svc *drive.Service, localDir string) (*drive.BatchResult, error) {
			t.Fatal("upload must not run without authentication")
			return nil, nil
		})

	err := run(nil, []string{"photos"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "please run pushdrive auth first") {
		t.Errorf("error = %v", err)
	}
}

func TestRunUploadFailure(t *testing.T) {
	stubServices(t,
		func(cfg *auth.Config) (*drive.Service, error) { return nil, nil },
		func(ctx context.Context, svc *drive.Service, localDir string) (*drive.BatchResult, error) {
			return nil, errors.New("directory not found: photos")
		})

	if err := run(nil, []string{"photos"}); err == nil {
		t.Fatal("operation-level failure must be an error")
	}
}
