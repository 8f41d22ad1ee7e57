package mcp

import (
	"testing"
)

func TestParseCredentials(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantID  string
		wantErr bool
	}{
		{
			name:   "installed format",
			data:   `{"installed":{"client_id":"installed-id","client_secret":"installed-secret"}}`,
			wantID: "installed-id",
		},
		{
			name:   "web format",
			data:   `{"web":{"client_id":"web-id","client_secret":"web-secret"}}`,
			wantID: "web-id",
		},
		{
			name:   "flat format",
			data:   `{"client_id":"flat-id","client_secret":"flat-secret"}`,
			wantID: "flat-id",
		},
		{
			name:    "missing secret",
			data:    `{"client_id":"only-id"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			data:    `{bad`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := parseCredentials([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if creds.ClientID != tt.wantID {
				t.Errorf("ClientID = %q, want %q", creds.ClientID, tt.wantID)
			}
		})
	}
}

func TestLoadOAuthCredentialsNoSources(t *testing.T) {
	if _, err := LoadOAuthCredentials("", "", "nonexistent-creds.json"); err == nil {
		t.Fatal("expected error when no credential source is available")
	}
}
