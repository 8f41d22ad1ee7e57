package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCallbackHandlerDeliversCode(t *testing.T) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	// No receiver on either channel: the handler must return without
	// blocking, which is what the buffer guarantees after the flow has
	// timed out.
	req := httptest.NewRequest(http.MethodGet, oauthCallbackPath+"?code=auth-code-1", nil)
	w := httptest.NewRecorder()
	callbackHandler(codeChan, errChan)(w, req)

	select {
	case code := <-codeChan:
		if code != "auth-code-1" {
			t.Errorf("code = %q, want auth-code-1", code)
		}
	default:
		t.Fatal("expected code on channel")
	}

	if !strings.Contains(w.Body.String(), "Authentication successful") {
		t.Error("expected success page in response")
	}
}

func TestCallbackHandlerMissingCode(t *testing.T) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	req := httptest.NewRequest(http.MethodGet, oauthCallbackPath, nil)
	w := httptest.NewRecorder()
	callbackHandler(codeChan, errChan)(w, req)

	select {
	case err := <-errChan:
		if err == nil {
			t.Fatal("expected non-nil error")
		}
	default:
		t.Fatal("expected error on channel")
	}

	select {
	case <-codeChan:
		t.Fatal("no code should be delivered")
	default:
	}
}
