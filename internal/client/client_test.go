package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jfmyers9/speedrun/internal/game"
	"github.com/jfmyers9/speedrun/internal/store"
)

func TestClientStart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/speedrun/play" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if len(body) != 0 {
			t.Errorf("expected empty body, got %q", body)
		}
		_ = json.NewEncoder(w).Encode(startResponse())
	}))
	defer server.Close()

	c := New(server.URL+"/speedrun/", nil)
	resp, err := c.Start(context.Background())
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if resp.SessionID != "session-1" || resp.StartArtist == nil || resp.StartArtist.ID != "a" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestClientGuess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req game.GuessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Artist == nil || req.Artist.ID != "c" || req.SessionID != "session-1" {
			t.Errorf("unexpected request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(game.Response{
			Status:         game.StatusPlay,
			RelatedArtists: []store.Artist{artistD},
		})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	resp, err := c.Guess(context.Background(), game.GuessRequest{Artist: &artistC, SessionID: "session-1"})
	if err != nil {
		t.Fatalf("Guess failed: %v", err)
	}
	if len(resp.RelatedArtists) != 1 || resp.RelatedArtists[0] != artistD {
		t.Errorf("unexpected related artists: %+v", resp.RelatedArtists)
	}
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "json message", status: http.StatusNotFound, body: `{"message":"session x not found"}`, message: "session x not found"},
		{name: "no body", status: http.StatusBadGateway, body: "", message: "server returned 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := New(server.URL, nil).Start(context.Background())

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Error() != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, apiErr.Error())
			}
		})
	}
}
