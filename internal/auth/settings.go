package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const settingsKeyDefaultFolder = "default_folder_id"

// LoadDefaultFolder reads the default folder ID from the settings file.
// A missing or unreadable file yields an empty ID: the tool falls back to
// interactive folder selection in that case.
func LoadDefaultFolder(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var settings map[string]interface{}
	if err := json.Unmarshal(data, &settings); err != nil {
		slog.Warn("ignoring malformed settings file", "path", path, "error", err)
		return ""
	}

	id, _ := settings[settingsKeyDefaultFolder].(string)
	return id
}

// SaveDefaultFolder writes the default folder ID to the settings file,
// preserving any unrelated keys already present.
func SaveDefaultFolder(path, folderID string) error {
	settings := map[string]interface{}{}
	if data, err := os.ReadFile(path); err == nil {
		// Unparseable settings are discarded rather than kept broken
		if err := json.Unmarshal(data, &settings); err != nil {
			settings = map[string]interface{}{}
		}
	}

	settings[settingsKeyDefaultFolder] = folderID

	if err := os.MkdirAll(filepath.Dir(path), configDirPerm); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode settings: %w", err)
	}

	if err := os.WriteFile(path, data, tokenFilePerm); err != nil {
		return fmt.Errorf("unable to write settings file: %w", err)
	}

	return nil
}
