package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jfmyers9/speedrun/pkg/spotify"
	"github.com/rs/zerolog"
)

// fakeSpotify serves the token, related-artists and search endpoints.
type fakeSpotify struct {
	tokens   atomic.Int32
	searches atomic.Int32
	server   *httptest.Server
}

func newFakeSpotify(t *testing.T) *fakeSpotify {
	t.Helper()

	f := &fakeSpotify{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		n := f.tokens.Add(1)
		fmt.Fprintf(w, `{"access_token":"token-%d","token_type":"Bearer","expires_in":3600}`, n)
	})
	mux.HandleFunc("/artists/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if strings.Contains(r.URL.Path, "/missing/") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"status":404,"message":"non existing id"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"artists":[
			{"id":"r1","name":"Related One","images":[{"url":"https://img/r1","height":300,"width":300}]},
			{"id":"r2","name":"Related Two","images":[]}
		]}`))
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		f.searches.Add(1)
		switch q := r.URL.Query().Get("q"); q {
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "nobody":
			_, _ = w.Write([]byte(`{"artists":{"items":[]}}`))
		default:
			fmt.Fprintf(w, `{"artists":{"items":[{"id":"id-%s","name":"%s","images":[]}]}}`, q, strings.ToUpper(q))
		}
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSpotify) client(id, secret string) *spotify.Client {
	return spotify.NewClient(spotify.Config{
		ClientID:     id,
		ClientSecret: secret,
		BaseURL:      f.server.URL,
		AccountsURL:  f.server.URL + "/api/token",
	})
}

func TestRelatedArtists(t *testing.T) {
	fake := newFakeSpotify(t)
	c := New(fake.client("id", "secret"), 0, zerolog.Nop())
	ctx := context.Background()

	t.Run("fetches a token when none given", func(t *testing.T) {
		artists, err := c.RelatedArtists(ctx, "seed", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(artists) != 2 {
			t.Fatalf("expected 2 artists, got %d", len(artists))
		}
		if artists[0].ID != "r1" || artists[0].ImageURL != "https://img/r1" {
			t.Errorf("unexpected artist %+v", artists[0])
		}
		if fake.tokens.Load() != 1 {
			t.Errorf("expected 1 token request, got %d", fake.tokens.Load())
		}
	})

	t.Run("reuses a supplied token", func(t *testing.T) {
		before := fake.tokens.Load()
		if _, err := c.RelatedArtists(ctx, "seed", "supplied"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fake.tokens.Load() != before {
			t.Error("expected no token request when a token is supplied")
		}
	})

	t.Run("propagates upstream errors", func(t *testing.T) {
		_, err := c.RelatedArtists(ctx, "missing", "supplied")
		var apiErr *spotify.Error
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 *spotify.Error, got %v", err)
		}
	})
}

func TestRelatedArtistsMissingCredentials(t *testing.T) {
	fake := newFakeSpotify(t)
	c := New(fake.client("", ""), 0, zerolog.Nop())

	_, err := c.RelatedArtists(context.Background(), "seed", "")
	var authErr *spotify.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *spotify.AuthenticationError, got %v", err)
	}
	if fake.tokens.Load() != 0 {
		t.Error("expected no token request without credentials")
	}
}

func TestSearchArtists(t *testing.T) {
	fake := newFakeSpotify(t)
	c := New(fake.client("id", "secret"), 0, zerolog.Nop())

	artists, err := c.SearchArtists(context.Background(), []string{"daft", "nobody", "broken", "justice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(artists) != 2 {
		t.Fatalf("expected 2 matches, got %d: %+v", len(artists), artists)
	}
	if artists[0].ID != "id-daft" || artists[0].Name != "DAFT" {
		t.Errorf("unexpected first match %+v", artists[0])
	}
	if artists[1].ID != "id-justice" {
		t.Errorf("unexpected second match %+v", artists[1])
	}
	if n := fake.searches.Load(); n != 4 {
		t.Errorf("expected 4 search requests, got %d", n)
	}
	if n := fake.tokens.Load(); n != 1 {
		t.Errorf("expected a single token for the whole search, got %d", n)
	}
}

func TestSearchArtistsCancelled(t *testing.T) {
	fake := newFakeSpotify(t)
	// A long interval makes the second name wait on the limiter
	c := New(fake.client("id", "secret"), time.Hour, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	artists, err := c.SearchArtists(ctx, []string{"first", "second"})
	if err == nil {
		t.Fatal("expected error from cancelled search")
	}
	if len(artists) != 1 || artists[0].ID != "id-first" {
		t.Errorf("expected the first match to be returned, got %+v", artists)
	}
}

func TestToArtist(t *testing.T) {
	got := ToArtist(spotify.Artist{
		ID:   "x",
		Name: "X",
		Images: []spotify.Image{
			{URL: "big", Width: 1000, Height: 1000},
			{URL: "small", Width: 64, Height: 64},
			{URL: "mid", Width: 320, Height: 320},
		},
	})
	if got.ID != "x" || got.Name != "X" || got.ImageURL != "mid" {
		t.Errorf("unexpected mapping %+v", got)
	}
}
