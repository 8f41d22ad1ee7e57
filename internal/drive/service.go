// Package drive provides the Google Drive upload operations.
package drive

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

const (
	// Google Drive MIME types
	FolderMimeType = "application/vnd.google-apps.folder"

	// Fallback content type when the extension is unknown
	defaultMimeType = "application/octet-stream"
)

// Folder is a remote folder reference.
type Folder struct {
	ID   string
	Name string
}

// FileInfo contains file metadata fetched from Drive.
type FileInfo struct {
	ID          string
	Name        string
	MimeType    string
	Size        int64
	WebViewLink string
	Parents     []string
}

// UploadResult is the tagged outcome of a single upload. Success carries the
// remote id, name and view link; failure carries only the error message, so
// a batch can record per-file failures without aborting.
type UploadResult struct {
	Success     bool
	FileID      string
	FileName    string
	WebViewLink string
	Err         string
}

// UploadRequest describes a single upload. Exactly one of Path or Content
// must be set; Content also requires Name.
type UploadRequest struct {
	Path         string
	Content      io.Reader
	Name         string
	MimeType     string
	FolderID     string
	ShowProgress bool
}

// driveAPI is the narrow slice of the Drive v3 surface the service uses.
// Tests substitute an in-memory implementation.
type driveAPI interface {
	ListFiles(ctx context.Context, query, orderBy string, pageSize int64) ([]*driveapi.File, error)
	CreateFile(ctx context.Context, meta *driveapi.File, media io.Reader, contentType string) (*driveapi.File, error)
	GetFile(ctx context.Context, fileID string) (*driveapi.File, error)
}

// googleDriveAPI implements driveAPI against the real Drive v3 client.
type googleDriveAPI struct {
	srv *driveapi.Service
}

func (g *googleDriveAPI) ListFiles(ctx context.Context, query, orderBy string, pageSize int64) ([]*driveapi.File, error) {
	call := g.srv.Files.List().Context(ctx).Q(query).
		Spaces("drive").
		Fields("files(id, name)")
	if orderBy != "" {
		call = call.OrderBy(orderBy)
	}
	if pageSize > 0 {
		call = call.PageSize(pageSize)
	}

	fileList, err := call.Do()
	if err != nil {
		return nil, err
	}
	return fileList.Files, nil
}

func (g *googleDriveAPI) CreateFile(ctx context.Context, meta *driveapi.File, media io.Reader, contentType string) (*driveapi.File, error) {
	call := g.srv.Files.Create(meta).Context(ctx).Fields("id, name, webViewLink")
	if media != nil {
		// ChunkSize forces the resumable upload protocol
		opts := []googleapi.MediaOption{googleapi.ChunkSize(googleapi.DefaultUploadChunkSize)}
		if contentType != "" {
			opts = append(opts, googleapi.ContentType(contentType))
		}
		call = call.Media(media, opts...)
	}
	return call.Do()
}

func (g *googleDriveAPI) GetFile(ctx context.Context, fileID string) (*driveapi.File, error) {
	return g.srv.Files.Get(fileID).Context(ctx).
		Fields("id, name, mimeType, size, webViewLink, parents").Do()
}

// Service wraps the Google Drive API with the upload operations.
type Service struct {
	api             driveAPI
	defaultFolderID string
}

// NewService creates a Service around an authenticated Drive client.
// defaultFolderID is the stored default upload target, empty if unset.
func NewService(srv *driveapi.Service, defaultFolderID string) *Service {
	return &Service{api: &googleDriveAPI{srv: srv}, defaultFolderID: defaultFolderID}
}

// DefaultFolderID returns the stored default upload folder, empty if unset.
func (s *Service) DefaultFolderID() string {
	return s.defaultFolderID
}

// ListFolders lists non-trashed folders, optionally scoped to a parent,
// ordered by name.
func (s *Service) ListFolders(ctx context.Context, parentID string) ([]Folder, error) {
	query := fmt.Sprintf("mimeType='%s' and trashed=false", FolderMimeType)
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", parentID)
	}

	files, err := s.api.ListFiles(ctx, query, "name", 0)
	if err != nil {
		return nil, fmt.Errorf("unable to list folders: %w", err)
	}

	folders := make([]Folder, 0, len(files))
	for _, f := range files {
		folders = append(folders, Folder{ID: f.Id, Name: f.Name})
	}
	return folders, nil
}

// CreateFolder creates a folder, optionally under a parent.
func (s *Service) CreateFolder(ctx context.Context, name, parentID string) (Folder, error) {
	meta := &driveapi.File{
		Name:     name,
		MimeType: FolderMimeType,
	}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	folder, err := s.api.CreateFile(ctx, meta, nil, "")
	if err != nil {
		return Folder{}, fmt.Errorf("unable to create folder %q: %w", name, err)
	}
	return Folder{ID: folder.Id, Name: folder.Name}, nil
}

// Upload uploads a single file from disk or from an in-memory stream.
// Precondition problems (bad arguments, missing local file) are returned as
// errors; remote failures are captured in the result so batch callers can
// keep going.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	if req.Path == "" && req.Content == nil {
		return UploadResult{}, fmt.Errorf("either a file path or a content stream is required")
	}
	if req.Path != "" && req.Content != nil {
		return UploadResult{}, fmt.Errorf("file path and content stream are mutually exclusive")
	}
	if req.Content != nil && req.Name == "" {
		return UploadResult{}, fmt.Errorf("a file name is required when uploading a stream")
	}

	name := req.Name
	mimeType := req.MimeType
	var media io.Reader
	var size int64 = -1

	if req.Path != "" {
		stat, err := os.Stat(req.Path)
		if err != nil {
			return UploadResult{}, fmt.Errorf("file not found: %s", req.Path)
		}
		size = stat.Size()

		f, err := os.Open(req.Path)
		if err != nil {
			return UploadResult{}, fmt.Errorf("unable to open %s: %w", req.Path, err)
		}
		defer f.Close()
		media = f

		if name == "" {
			name = filepath.Base(req.Path)
		}
		if mimeType == "" {
			mimeType = mime.TypeByExtension(filepath.Ext(req.Path))
		}
	} else {
		media = req.Content
	}

	if mimeType == "" {
		mimeType = defaultMimeType
	}

	if req.ShowProgress && size >= 0 {
		bar := progressbar.DefaultBytes(size, fmt.Sprintf("Uploading %s", name))
		media = io.TeeReader(media, bar)
	}

	// Target folder: explicit argument > stored default > Drive root
	folderID := req.FolderID
	if folderID == "" {
		folderID = s.defaultFolderID
	}

	meta := &driveapi.File{Name: name}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}

	created, err := s.api.CreateFile(ctx, meta, media, mimeType)
	if err != nil {
		return UploadResult{Success: false, Err: fmt.Sprintf("upload failed: %v", err)}, nil
	}

	return UploadResult{
		Success:     true,
		FileID:      created.Id,
		FileName:    created.Name,
		WebViewLink: created.WebViewLink,
	}, nil
}

// GetFileInfo fetches metadata for a file. Remote errors propagate.
func (s *Service) GetFileInfo(ctx context.Context, fileID string) (*FileInfo, error) {
	file, err := s.api.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	return &FileInfo{
		ID:          file.Id,
		Name:        file.Name,
		MimeType:    file.MimeType,
		Size:        file.Size,
		WebViewLink: file.WebViewLink,
		Parents:     file.Parents,
	}, nil
}
