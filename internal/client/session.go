package client

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jfmyers9/speedrun/internal/game"
	"github.com/jfmyers9/speedrun/internal/store"
)

// Status is the client-side game phase.
type Status string

const (
	StatusNew  Status = "new"
	StatusPlay Status = "play"
	StatusWin  Status = "win"
)

var (
	// ErrIncompleteResponse is returned when the server omits fields the
	// game cannot continue without.
	ErrIncompleteResponse = errors.New("did not receive session data from the server")

	// ErrNotPlaying is returned for moves outside of a running game.
	ErrNotPlaying = errors.New("no game in progress")
)

// Guess is one step on the player's path: the artist picked and the
// related artists offered for it.
type Guess struct {
	Artist  store.Artist
	Related []store.Artist
}

// Snapshot is a copy of the session state for rendering.
type Snapshot struct {
	Status    Status
	EndArtist store.Artist
	Guesses   []Guess
	Elapsed   string
}

// Current returns the latest guess, or false before the game starts.
func (s Snapshot) Current() (Guess, bool) {
	if len(s.Guesses) == 0 {
		return Guess{}, false
	}
	return s.Guesses[len(s.Guesses)-1], true
}

// Session tracks one player's game. The timer runs only while a game is in
// play and no request is pending.
type Session struct {
	mu        sync.Mutex
	status    Status
	sessionID string
	token     string
	endArtist store.Artist
	guesses   []Guess
	timer     *Stopwatch
}

// NewSession creates a Session in the new state.
func NewSession() *Session {
	return &Session{status: StatusNew, timer: NewStopwatch()}
}

// Begin applies the response to a start request.
func (s *Session) Begin(resp *game.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if resp == nil || resp.StartArtist == nil || resp.EndArtist == nil {
		s.resetLocked()
		return fmt.Errorf("did not receive artists from the server: %w", ErrIncompleteResponse)
	}
	if resp.SessionID == "" || resp.Token == "" {
		s.resetLocked()
		return ErrIncompleteResponse
	}

	s.status = StatusPlay
	s.sessionID = resp.SessionID
	s.token = resp.Token
	s.endArtist = *resp.EndArtist
	s.guesses = []Guess{{Artist: *resp.StartArtist, Related: nonNil(resp.RelatedArtists)}}
	s.timer.Reset()
	s.timer.Resume()

	return nil
}

// Request builds the guess request for artist, which must be one of the
// artists offered so far.
func (s *Session) Request(artist store.Artist) (game.GuessRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPlay {
		return game.GuessRequest{}, ErrNotPlaying
	}
	return game.GuessRequest{
		Artist:    &artist,
		SessionID: s.sessionID,
		Token:     s.token,
	}, nil
}

// Advance applies the response to a guess of artist.
func (s *Session) Advance(artist store.Artist, resp *game.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPlay {
		return ErrNotPlaying
	}
	if resp == nil {
		s.resetLocked()
		return ErrIncompleteResponse
	}

	switch resp.Status {
	case game.StatusWin:
		s.guesses = append(s.guesses, Guess{Artist: artist, Related: []store.Artist{}})
		s.status = StatusWin
		s.timer.Pause()
	case game.StatusPlay:
		s.guesses = append(s.guesses, Guess{Artist: artist, Related: nonNil(resp.RelatedArtists)})
	default:
		s.resetLocked()
		return fmt.Errorf("unexpected status %q: %w", resp.Status, ErrIncompleteResponse)
	}

	return nil
}

// Back returns to the guess at index i, dropping every later guess. The
// start artist is index 0.
func (s *Session) Back(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPlay {
		return ErrNotPlaying
	}
	if i < 0 || i >= len(s.guesses) {
		return fmt.Errorf("no guess at position %d", i)
	}

	s.guesses = s.guesses[:i+1]
	return nil
}

// Pending pauses the timer while a request is in flight, and resumes it
// when done is called.
func (s *Session) Pending() (done func()) {
	s.timer.Pause()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.status == StatusPlay {
			s.timer.Resume()
		}
	}
}

// Reset abandons the current game.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.status = StatusNew
	s.sessionID = ""
	s.token = ""
	s.endArtist = store.Artist{}
	s.guesses = nil
	s.timer.Reset()
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	guesses := make([]Guess, len(s.guesses))
	copy(guesses, s.guesses)

	return Snapshot{
		Status:    s.status,
		EndArtist: s.endArtist,
		Guesses:   guesses,
		Elapsed:   FormatElapsed(s.timer.Elapsed()),
	}
}

func nonNil(artists []store.Artist) []store.Artist {
	if artists == nil {
		return []store.Artist{}
	}
	return artists
}
