package client

import (
	"errors"
	"testing"

	"github.com/jfmyers9/speedrun/internal/game"
	"github.com/jfmyers9/speedrun/internal/store"
)

var (
	artistA = store.Artist{ID: "a", Name: "Artist A", ImageURL: "https://img/a"}
	artistB = store.Artist{ID: "b", Name: "Artist B", ImageURL: "https://img/b"}
	artistC = store.Artist{ID: "c", Name: "Artist C", ImageURL: "https://img/c"}
	artistD = store.Artist{ID: "d", Name: "Artist D", ImageURL: "https://img/d"}
)

func startResponse() *game.Response {
	return &game.Response{
		Status:         game.StatusPlay,
		StartArtist:    &artistA,
		EndArtist:      &artistB,
		RelatedArtists: []store.Artist{artistC, artistD},
		SessionID:      "session-1",
		Token:          "tok",
	}
}

func startedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession()
	if err := s.Begin(startResponse()); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	return s
}

func TestSessionBegin(t *testing.T) {
	s := startedSession(t)
	snap := s.Snapshot()

	if snap.Status != StatusPlay {
		t.Errorf("expected status play, got %s", snap.Status)
	}
	if snap.EndArtist != artistB {
		t.Errorf("expected end artist B, got %+v", snap.EndArtist)
	}
	current, ok := snap.Current()
	if !ok {
		t.Fatal("expected a current guess")
	}
	if current.Artist != artistA || len(current.Related) != 2 {
		t.Errorf("unexpected current guess: %+v", current)
	}
	if !s.timer.Running() {
		t.Error("expected timer to run during play")
	}
}

func TestSessionBeginIncomplete(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*game.Response)
	}{
		{name: "missing start", modify: func(r *game.Response) { r.StartArtist = nil }},
		{name: "missing end", modify: func(r *game.Response) { r.EndArtist = nil }},
		{name: "missing session", modify: func(r *game.Response) { r.SessionID = "" }},
		{name: "missing token", modify: func(r *game.Response) { r.Token = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := startResponse()
			tt.modify(resp)

			s := NewSession()
			err := s.Begin(resp)
			if !errors.Is(err, ErrIncompleteResponse) {
				t.Fatalf("expected ErrIncompleteResponse, got %v", err)
			}
			if s.Snapshot().Status != StatusNew {
				t.Error("expected session to stay new")
			}
		})
	}
}

func TestSessionRequest(t *testing.T) {
	if _, err := NewSession().Request(artistC); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("expected ErrNotPlaying before start, got %v", err)
	}

	s := startedSession(t)
	req, err := s.Request(artistC)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if req.SessionID != "session-1" || req.Token != "tok" {
		t.Errorf("expected session parameters, got %+v", req)
	}
	if req.Artist == nil || *req.Artist != artistC {
		t.Errorf("expected artist C, got %+v", req.Artist)
	}
}

func TestSessionAdvanceAndWin(t *testing.T) {
	s := startedSession(t)

	err := s.Advance(artistC, &game.Response{Status: game.StatusPlay, RelatedArtists: []store.Artist{artistB}})
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	current, _ := s.Snapshot().Current()
	if current.Artist != artistC || len(current.Related) != 1 {
		t.Errorf("unexpected current guess: %+v", current)
	}

	if err := s.Advance(artistB, &game.Response{Status: game.StatusWin}); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	snap := s.Snapshot()
	if snap.Status != StatusWin {
		t.Errorf("expected status win, got %s", snap.Status)
	}
	if len(snap.Guesses) != 3 {
		t.Fatalf("expected 3 guesses on the path, got %d", len(snap.Guesses))
	}
	if s.timer.Running() {
		t.Error("expected timer to stop on win")
	}

	if err := s.Advance(artistC, &game.Response{Status: game.StatusPlay}); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("expected ErrNotPlaying after win, got %v", err)
	}
}

func TestSessionAdvanceUnexpectedStatus(t *testing.T) {
	s := startedSession(t)

	if err := s.Advance(artistC, &game.Response{Status: "bogus"}); !errors.Is(err, ErrIncompleteResponse) {
		t.Fatalf("expected ErrIncompleteResponse, got %v", err)
	}
	if s.Snapshot().Status != StatusNew {
		t.Error("expected session to reset")
	}
}

func TestSessionBack(t *testing.T) {
	s := startedSession(t)
	_ = s.Advance(artistC, &game.Response{Status: game.StatusPlay, RelatedArtists: []store.Artist{artistD}})
	_ = s.Advance(artistD, &game.Response{Status: game.StatusPlay, RelatedArtists: []store.Artist{artistA}})

	if err := s.Back(5); err == nil {
		t.Error("expected error for out of range guess")
	}

	if err := s.Back(1); err != nil {
		t.Fatalf("Back failed: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.Guesses) != 2 {
		t.Fatalf("expected 2 guesses, got %d", len(snap.Guesses))
	}
	current, _ := snap.Current()
	if current.Artist != artistC {
		t.Errorf("expected to be back at C, got %+v", current.Artist)
	}
	if snap.Status != StatusPlay {
		t.Errorf("expected status play, got %s", snap.Status)
	}
}

func TestSessionPendingPausesTimer(t *testing.T) {
	s := startedSession(t)

	done := s.Pending()
	if s.timer.Running() {
		t.Error("expected timer paused while pending")
	}
	done()
	if !s.timer.Running() {
		t.Error("expected timer to resume")
	}

	s.Reset()
	done = s.Pending()
	done()
	if s.timer.Running() {
		t.Error("expected timer to stay paused outside of play")
	}
}

func TestSessionReset(t *testing.T) {
	s := startedSession(t)
	s.Reset()

	snap := s.Snapshot()
	if snap.Status != StatusNew || len(snap.Guesses) != 0 || snap.Elapsed != "00:00" {
		t.Errorf("expected a fresh session, got %+v", snap)
	}
	if _, ok := snap.Current(); ok {
		t.Error("expected no current guess")
	}
}
