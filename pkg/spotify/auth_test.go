package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestTokenService_ClientCredentials tests the ClientCredentials method.
func TestTokenService_ClientCredentials(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		statusCode  int
		wantToken   string
		wantErr     bool
		wantAuthErr bool
		errContains string
	}{
		{
			name:       "success",
			response:   `{"access_token":"test-token-123","token_type":"Bearer","expires_in":3600}`,
			statusCode: http.StatusOK,
			wantToken:  "test-token-123",
		},
		{
			name:        "invalid client",
			response:    `{"error":"invalid_client","error_description":"Invalid client"}`,
			statusCode:  http.StatusBadRequest,
			wantErr:     true,
			wantAuthErr: true,
			errContains: "400 Bad Request",
		},
		{
			name:        "empty access token",
			response:    `{"token_type":"Bearer"}`,
			statusCode:  http.StatusOK,
			wantErr:     true,
			wantAuthErr: true,
			errContains: "empty access token",
		},
		{
			name:        "malformed body",
			response:    `not json`,
			statusCode:  http.StatusOK,
			wantErr:     true,
			errContains: "failed to parse token response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST request, got %s", r.Method)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
					t.Errorf("expected Content-Type application/x-www-form-urlencoded, got %s", ct)
				}

				id, secret, ok := r.BasicAuth()
				if !ok {
					t.Error("expected basic auth credentials")
				}
				if id != "test-id" || secret != "test-secret" {
					t.Errorf("unexpected credentials %q:%q", id, secret)
				}

				if err := r.ParseForm(); err != nil {
					t.Fatalf("failed to parse form: %v", err)
				}
				if gt := r.FormValue("grant_type"); gt != "client_credentials" {
					t.Errorf("expected grant_type client_credentials, got %s", gt)
				}

				w.WriteHeader(tt.statusCode)
				if _, err := w.Write([]byte(tt.response)); err != nil {
					t.Fatalf("failed to write response body: %v", err)
				}
			}))
			defer server.Close()

			client := NewClient(Config{
				ClientID:     "test-id",
				ClientSecret: "test-secret",
				AccountsURL:  server.URL,
			})

			token, err := client.Tokens().ClientCredentials(context.Background())

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var authErr *AuthenticationError
				if tt.wantAuthErr && !errors.As(err, &authErr) {
					t.Errorf("expected *AuthenticationError, got %T", err)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error to contain %q, got %q", tt.errContains, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if token.AccessToken != tt.wantToken {
				t.Errorf("expected token %q, got %q", tt.wantToken, token.AccessToken)
			}
		})
	}
}

// TestTokenService_MissingCredentials verifies no request is made without credentials.
func TestTokenService_MissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		secret string
	}{
		{name: "missing both"},
		{name: "missing secret", id: "id"},
		{name: "missing id", secret: "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("token endpoint should not be called")
			}))
			defer server.Close()

			client := NewClient(Config{
				ClientID:     tt.id,
				ClientSecret: tt.secret,
				AccountsURL:  server.URL,
			})

			_, err := client.Tokens().ClientCredentials(context.Background())
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var authErr *AuthenticationError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected *AuthenticationError, got %T", err)
			}
			if !errors.Is(err, ErrMissingCredentials) {
				t.Errorf("expected error to wrap ErrMissingCredentials, got %v", err)
			}
		})
	}
}
