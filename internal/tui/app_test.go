package tui

import (
	"strings"
	"testing"

	"github.com/jfmyers9/speedrun/internal/client"
	"github.com/jfmyers9/speedrun/internal/store"
)

var (
	artistA = store.Artist{ID: "a", Name: "Artist A"}
	artistB = store.Artist{ID: "b", Name: "Artist B"}
	artistC = store.Artist{ID: "c", Name: "Artist C"}
)

func TestRenderHeader(t *testing.T) {
	tests := []struct {
		name string
		snap client.Snapshot
		want []string
	}{
		{
			name: "new",
			snap: client.Snapshot{Status: client.StatusNew},
			want: []string{"Press s to start"},
		},
		{
			name: "play",
			snap: client.Snapshot{
				Status:    client.StatusPlay,
				EndArtist: artistB,
				Guesses:   []client.Guess{{Artist: artistA}, {Artist: artistC}},
			},
			want: []string{"Related artists for Artist C", "Find a path to Artist B"},
		},
		{
			name: "win",
			snap: client.Snapshot{
				Status:    client.StatusWin,
				EndArtist: artistB,
				Guesses:   []client.Guess{{Artist: artistA}, {Artist: artistC}, {Artist: artistB}},
			},
			want: []string{"You found Artist B in 2 steps"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderHeader(tt.snap)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("expected header to contain %q, got %q", want, got)
				}
			}
		})
	}
}

func TestRenderPath(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := renderPath(client.Snapshot{Status: client.StatusNew}); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})

	t.Run("in play", func(t *testing.T) {
		got := renderPath(client.Snapshot{
			Status:    client.StatusPlay,
			EndArtist: artistB,
			Guesses:   []client.Guess{{Artist: artistA}, {Artist: artistC}},
		})
		want := "[yellow]1[-] Artist A → Artist C → ... → [gray]Artist B[-]"
		if got != want {
			t.Errorf("renderPath() = %q, want %q", got, want)
		}
	})

	t.Run("won", func(t *testing.T) {
		got := renderPath(client.Snapshot{
			Status:    client.StatusWin,
			EndArtist: artistB,
			Guesses:   []client.Guess{{Artist: artistA}, {Artist: artistB}},
		})
		want := "[yellow]1[-] Artist A → [green::b]Artist B[-:-:-]"
		if got != want {
			t.Errorf("renderPath() = %q, want %q", got, want)
		}
	})
}

func TestTruncateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "short", input: "Björk", want: "Björk"},
		{name: "exact", input: strings.Repeat("a", maxNameWidth), want: strings.Repeat("a", maxNameWidth)},
		{name: "long", input: strings.Repeat("a", 30), want: strings.Repeat("a", maxNameWidth-3) + "..."},
		{name: "wide", input: strings.Repeat("坂", 20), want: strings.Repeat("坂", 10) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateName(tt.input); got != tt.want {
				t.Errorf("truncateName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
