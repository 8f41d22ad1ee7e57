package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"pushdrive/internal/auth"
	"pushdrive/internal/drive"
)

// RegisterUploadTools registers the Drive upload tools on the server.
func RegisterUploadTools(s *Server) {
	registerFolderListTool(s)
	registerFolderCreateTool(s)
	registerUploadFileTool(s)
	registerFileInfoTool(s)
	registerSubfolderUploadTool(s)
}

// getDriveService creates an authenticated Drive service from context.
func getDriveService(ctx context.Context) (*drive.Service, error) {
	cfg := auth.NewConfig("", "")
	srv, err := auth.GetAuthenticatedServiceWithContext(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	defaultFolder := auth.LoadDefaultFolder(cfg.GetSettingsPath())
	return drive.NewService(srv, defaultFolder), nil
}

// toolResult returns a JSON-formatted MCP tool result.
func toolResult(data interface{}) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// logToolCall logs a tool invocation and returns the result.
func logToolCall(toolName string, start time.Time, result *mcp.CallToolResult, err error) (*mcp.CallToolResult, error) {
	duration := time.Since(start)
	if err != nil {
		slog.Error("tool call failed", "tool", toolName, "duration", duration, "error", err)
	} else {
		slog.Info("tool call", "tool", toolName, "duration", duration)
	}
	return result, err
}

func registerFolderListTool(s *Server) {
	tool := mcp.NewTool("drive_folder_list",
		mcp.WithDescription("List non-trashed Google Drive folders ordered by name, optionally scoped to a parent folder."),
		mcp.WithString("parentId", mcp.Description("Parent folder ID to scope the listing (optional)")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		parentID, _ := req.GetArguments()["parentId"].(string)

		driveSrv, err := getDriveService(ctx)
		if err != nil {
			return logToolCall("drive_folder_list", start, nil, err)
		}

		folders, err := driveSrv.ListFolders(ctx, parentID)
		if err != nil {
			return logToolCall("drive_folder_list", start, nil, fmt.Errorf("list folders failed: %w", err))
		}

		results := make([]map[string]interface{}, 0, len(folders))
		for _, f := range folders {
			results = append(results, map[string]interface{}{
				"id":   f.ID,
				"name": f.Name,
			})
		}

		result, err := toolResult(results)
		return logToolCall("drive_folder_list", start, result, err)
	})
}

func registerFolderCreateTool(s *Server) {
	tool := mcp.NewTool("drive_folder_create",
		mcp.WithDescription("Create a folder in Google Drive, optionally under a parent folder."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the folder to create")),
		mcp.WithString("parentId", mcp.Description("Parent folder ID (optional, root when omitted)")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		name, _ := req.GetArguments()["name"].(string)
		parentID, _ := req.GetArguments()["parentId"].(string)
		if name == "" {
			return logToolCall("drive_folder_create", start, nil, fmt.Errorf("name is required"))
		}

		driveSrv, err := getDriveService(ctx)
		if err != nil {
			return logToolCall("drive_folder_create", start, nil, err)
		}

		folder, err := driveSrv.CreateFolder(ctx, name, parentID)
		if err != nil {
			return logToolCall("drive_folder_create", start, nil, fmt.Errorf("create folder failed: %w", err))
		}

		result, err := toolResult(map[string]interface{}{
			"id":   folder.ID,
			"name": folder.Name,
		})
		return logToolCall("drive_folder_create", start, result, err)
	})
}

func registerUploadFileTool(s *Server) {
	tool := mcp.NewTool("drive_upload_file",
		mcp.WithDescription("Upload a local file to Google Drive. The path is resolved on the server host. Target folder falls back to the stored default, then Drive root."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Local path of the file to upload")),
		mcp.WithString("folderId", mcp.Description("Target folder ID (optional)")),
		mcp.WithString("name", mcp.Description("Remote file name (optional, defaults to the local base name)")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		path, _ := req.GetArguments()["path"].(string)
		folderID, _ := req.GetArguments()["folderId"].(string)
		name, _ := req.GetArguments()["name"].(string)
		if path == "" {
			return logToolCall("drive_upload_file", start, nil, fmt.Errorf("path is required"))
		}

		driveSrv, err := getDriveService(ctx)
		if err != nil {
			return logToolCall("drive_upload_file", start, nil, err)
		}

		uploadResult, err := driveSrv.Upload(ctx, drive.UploadRequest{
			Path:     path,
			Name:     name,
			FolderID: folderID,
		})
		if err != nil {
			return logToolCall("drive_upload_file", start, nil, fmt.Errorf("upload failed: %w", err))
		}

		payload := map[string]interface{}{"success": uploadResult.Success}
		if uploadResult.Success {
			payload["fileId"] = uploadResult.FileID
			payload["fileName"] = uploadResult.FileName
			payload["webViewLink"] = uploadResult.WebViewLink
		} else {
			payload["error"] = uploadResult.Err
		}

		result, err := toolResult(payload)
		return logToolCall("drive_upload_file", start, result, err)
	})
}

func registerFileInfoTool(s *Server) {
	tool := mcp.NewTool("drive_file_info",
		mcp.WithDescription("Fetch metadata for a Google Drive file: name, MIME type, size, view link, parents."),
		mcp.WithString("fileId", mcp.Required(), mcp.Description("Drive file ID")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		fileID, _ := req.GetArguments()["fileId"].(string)
		if fileID == "" {
			return logToolCall("drive_file_info", start, nil, fmt.Errorf("fileId is required"))
		}

		driveSrv, err := getDriveService(ctx)
		if err != nil {
			return logToolCall("drive_file_info", start, nil, err)
		}

		info, err := driveSrv.GetFileInfo(ctx, fileID)
		if err != nil {
			return logToolCall("drive_file_info", start, nil, fmt.Errorf("get file info failed: %w", err))
		}

		result, err := toolResult(map[string]interface{}{
			"id":          info.ID,
			"name":        info.Name,
			"mimeType":    info.MimeType,
			"size":        info.Size,
			"webViewLink": info.WebViewLink,
			"parents":     info.Parents,
		})
		return logToolCall("drive_file_info", start, result, err)
	})
}

func registerSubfolderUploadTool(s *Server) {
	tool := mcp.NewTool("drive_subfolder_upload",
		mcp.WithDescription("Upload a local directory's matching files into a named subfolder of a Drive folder, creating the subfolder when absent. Continues past per-file failures."),
		mcp.WithString("localDir", mcp.Required(), mcp.Description("Local directory to upload from (server host)")),
		mcp.WithString("parentFolderId", mcp.Required(), mcp.Description("Parent folder ID in Google Drive")),
		mcp.WithString("subfolderName", mcp.Required(), mcp.Description("Name of the subfolder to find or create")),
		mcp.WithString("pattern", mcp.Description("Shallow file pattern, e.g. *.png (default: *)")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		localDir, _ := req.GetArguments()["localDir"].(string)
		parentFolderID, _ := req.GetArguments()["parentFolderId"].(string)
		subfolderName, _ := req.GetArguments()["subfolderName"].(string)
		pattern, _ := req.GetArguments()["pattern"].(string)
		if localDir == "" || parentFolderID == "" || subfolderName == "" {
			return logToolCall("drive_subfolder_upload", start, nil,
				fmt.Errorf("localDir, parentFolderId and subfolderName are required"))
		}
		if pattern == "" {
			pattern = "*"
		}

		driveSrv, err := getDriveService(ctx)
		if err != nil {
			return logToolCall("drive_subfolder_upload", start, nil, err)
		}

		batch, err := drive.NewSubfolderUploader(driveSrv).UploadDirectory(ctx, localDir, parentFolderID, subfolderName, pattern)
		if err != nil {
			return logToolCall("drive_subfolder_upload", start, nil, fmt.Errorf("subfolder upload failed: %w", err))
		}

		result, err := toolResult(map[string]interface{}{
			"uploaded":      batch.Uploaded,
			"total":         batch.Total,
			"failedFiles":   batch.FailedFiles,
			"subfolderId":   batch.SubfolderID,
			"subfolderName": batch.SubfolderName,
		})
		return logToolCall("drive_subfolder_upload", start, result, err)
	})
}
