package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultFolderMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	if got := LoadDefaultFolder(path); got != "" {
		t.Errorf("LoadDefaultFolder = %q, want empty", got)
	}
}

func TestLoadDefaultFolderMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	os.WriteFile(path, []byte("{not json"), 0600)

	if got := LoadDefaultFolder(path); got != "" {
		t.Errorf("LoadDefaultFolder = %q, want empty for malformed file", got)
	}
}

func TestSaveDefaultFolderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	if err := SaveDefaultFolder(path, "folder-abc"); err != nil {
		t.Fatalf("SaveDefaultFolder: %v", err)
	}

	if got := LoadDefaultFolder(path); got != "folder-abc" {
		t.Errorf("LoadDefaultFolder = %q, want %q", got, "folder-abc")
	}
}

func TestSaveDefaultFolderPreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	os.WriteFile(path, []byte(`{"default_folder_id":"old-id","theme":"dark"}`), 0600)

	if err := SaveDefaultFolder(path, "new-id"); err != nil {
		t.Fatalf("SaveDefaultFolder: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read settings: %v", err)
	}

	var settings map[string]interface{}
	if err := json.Unmarshal(data, &settings); err != nil {
		t.Fatalf("unmarshal settings: %v", err)
	}

	if settings["default_folder_id"] != "new-id" {
		t.Errorf("default_folder_id = %v, want new-id", settings["default_folder_id"])
	}
	if settings["theme"] != "dark" {
		t.Errorf("theme = %v, want dark (unrelated keys must survive)", settings["theme"])
	}
}
