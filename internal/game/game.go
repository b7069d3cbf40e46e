// Package game implements the speedrun session flow: starting a session
// between two random artists, resolving guesses, and recording plays.
package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jfmyers9/speedrun/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Response statuses.
const (
	StatusPlay = "play"
	StatusWin  = "win"
)

// Store is the persistence the game needs.
type Store interface {
	RandomArtists(ctx context.Context, n int) ([]store.Artist, error)
	CreateArtists(ctx context.Context, artists []store.Artist) (int64, error)
	ListArtists(ctx context.Context) ([]store.Artist, error)
	CreateSession(ctx context.Context, startArtistID, endArtistID string) (*store.Session, error)
	DiscardSession(ctx context.Context, id string) error
	GetSession(ctx context.Context, id string) (*store.Session, error)
	AddPlay(ctx context.Context, sessionID, artistID string, relatedArtistIDs []string) (int64, error)
	Plays(ctx context.Context, sessionID string) ([]store.Play, error)
}

// Catalog is the slice of the Spotify catalog the game uses directly.
type Catalog interface {
	Token(ctx context.Context) (string, error)
	SearchArtists(ctx context.Context, names []string) ([]store.Artist, error)
}

// Resolver produces the related artists of an artist.
type Resolver interface {
	Resolve(ctx context.Context, artistID, token string) ([]store.Artist, error)
}

// Config holds game settings.
type Config struct {
	// RelatedLimit caps the related artists offered per turn. Zero means
	// no cap.
	RelatedLimit int
}

// Response is the body of a play response. Start fills every field, a
// guess only Status and RelatedArtists.
type Response struct {
	Status         string         `json:"status"`
	StartArtist    *store.Artist  `json:"startArtist,omitempty"`
	EndArtist      *store.Artist  `json:"endArtist,omitempty"`
	RelatedArtists []store.Artist `json:"relatedArtists,omitempty"`
	SessionID      string         `json:"sessionId,omitempty"`
	Token          string         `json:"token,omitempty"`
}

// MarshalJSON always includes relatedArtists in a play response, even when
// empty, and leaves it out of a win.
func (r Response) MarshalJSON() ([]byte, error) {
	type response Response
	if r.Status != StatusPlay {
		return json.Marshal(response(r))
	}

	related := r.RelatedArtists
	if related == nil {
		related = []store.Artist{}
	}
	return json.Marshal(struct {
		response
		RelatedArtists []store.Artist `json:"relatedArtists"`
	}{response(r), related})
}

// GuessRequest is a player's pick. The artist may be given by id alone or as
// a full record, in which case it is stored if not already known.
type GuessRequest struct {
	ArtistID  string        `json:"artistId"`
	Artist    *store.Artist `json:"artist,omitempty"`
	SessionID string        `json:"sessionId"`
	Token     string        `json:"token"`
}

// artistID returns the guessed artist id from whichever field carries it.
func (r GuessRequest) artistID() string {
	if id := strings.TrimSpace(r.ArtistID); id != "" {
		return id
	}
	if r.Artist != nil {
		return strings.TrimSpace(r.Artist.ID)
	}
	return ""
}

// Service runs games.
type Service struct {
	store    Store
	catalog  Catalog
	resolver Resolver
	config   Config
	logger   zerolog.Logger
}

// New creates a game Service.
func New(cfg Config, st Store, catalog Catalog, resolver Resolver, logger zerolog.Logger) *Service {
	return &Service{
		store:    st,
		catalog:  catalog,
		resolver: resolver,
		config:   cfg,
		logger:   logger.With().Str("component", "game").Logger(),
	}
}

// Start begins a new session between two distinct random artists and
// returns the start artist's related artists along with a token the client
// can hand back on later guesses.
func (s *Service) Start(ctx context.Context) (*Response, error) {
	picks, err := s.store.RandomArtists(ctx, 2)
	if err != nil {
		return nil, &ServerError{Message: "failed to pick artists", Err: err}
	}
	if len(picks) < 2 {
		return nil, &ServerError{Message: "not enough artists to start a session"}
	}
	start, end := picks[0], picks[1]

	var (
		session *store.Session
		token   string
		related []store.Artist
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		session, err = s.store.CreateSession(gctx, start.ID, end.ID)
		if err != nil {
			return &ServerError{Message: "failed to create session", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if token, err = s.catalog.Token(gctx); err != nil {
			return err
		}
		related, err = s.resolver.Resolve(gctx, start.ID, token)
		return err
	})
	if err := g.Wait(); err != nil {
		if session != nil {
			s.discard(ctx, session.ID)
		}
		return nil, err
	}

	related = s.truncate(related)
	if _, err := s.store.AddPlay(ctx, session.ID, start.ID, store.IDs(related)); err != nil {
		s.discard(ctx, session.ID)
		return nil, &ServerError{Message: "failed to record play", Err: err}
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Str("start", start.Name).
		Str("end", end.Name).
		Msg("Session started")

	return &Response{
		Status:         StatusPlay,
		StartArtist:    &start,
		EndArtist:      &end,
		RelatedArtists: related,
		SessionID:      session.ID,
		Token:          token,
	}, nil
}

// discard removes a session whose start could not be completed. Failures
// are only logged; an orphaned session is never played.
func (s *Service) discard(ctx context.Context, sessionID string) {
	if err := s.store.DiscardSession(context.WithoutCancel(ctx), sessionID); err != nil {
		s.logger.Warn().
			Err(err).
			Str("session_id", sessionID).
			Msg("Failed to discard unstarted session")
	}
}

// Guess records a pick within a session. Picking the end artist wins;
// anything else yields the next set of related artists.
func (s *Service) Guess(ctx context.Context, req GuessRequest) (*Response, error) {
	artistID := req.artistID()
	if artistID == "" {
		return nil, &ValidationError{Message: "artist id is required"}
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, &ValidationError{Message: "session id is required"}
	}

	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if req.Artist != nil {
		artist := normalize(*req.Artist)
		artist.ID = artistID
		if valid(artist) {
			if _, err := s.store.CreateArtists(ctx, []store.Artist{artist}); err != nil {
				return nil, &ServerError{Message: "failed to store artist", Err: err}
			}
		}
	}

	log := s.logger.With().
		Str("session_id", session.ID).
		Str("artist_id", artistID).
		Logger()

	// The guess is on record before it is judged or resolved
	if _, err := s.store.AddPlay(ctx, session.ID, artistID, nil); err != nil {
		return nil, &ServerError{Message: "failed to record play", Err: err}
	}

	if artistID == session.EndArtistID {
		log.Info().Msg("Session won")
		return &Response{Status: StatusWin}, nil
	}

	related, err := s.resolver.Resolve(ctx, artistID, req.Token)
	if err != nil {
		return nil, err
	}
	related = s.truncate(related)

	log.Debug().Int("related", len(related)).Msg("Guess recorded")

	return &Response{
		Status:         StatusPlay,
		RelatedArtists: related,
	}, nil
}

// Plays returns the recorded plays of a session, oldest first.
func (s *Service) Plays(ctx context.Context, sessionID string) ([]store.Play, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, &ValidationError{Message: "session id is required"}
	}

	if _, err := s.session(ctx, sessionID); err != nil {
		return nil, err
	}

	plays, err := s.store.Plays(ctx, sessionID)
	if err != nil {
		return nil, &ServerError{Message: "failed to list plays", Err: err}
	}
	if plays == nil {
		plays = []store.Play{}
	}
	return plays, nil
}

func (s *Service) session(ctx context.Context, id string) (*store.Session, error) {
	session, err := s.store.GetSession(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Resource: "session", ID: id}
	}
	if err != nil {
		return nil, &ServerError{Message: "failed to load session", Err: err}
	}
	return session, nil
}

func (s *Service) truncate(related []store.Artist) []store.Artist {
	if related == nil {
		related = []store.Artist{}
	}
	if s.config.RelatedLimit > 0 && len(related) > s.config.RelatedLimit {
		return related[:s.config.RelatedLimit]
	}
	return related
}

// SearchArtists looks up each name in the Spotify catalog. Names that match
// nothing are skipped.
func (s *Service) SearchArtists(ctx context.Context, names []string) ([]store.Artist, error) {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			cleaned = append(cleaned, name)
		}
	}
	if len(cleaned) == 0 {
		return nil, &ValidationError{Message: "at least one name is required"}
	}

	artists, err := s.catalog.SearchArtists(ctx, cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to search artists: %w", err)
	}
	return artists, nil
}

// BulkCreateArtists stores artists, skipping ids already present, and
// returns how many were inserted. If any entry is invalid nothing is stored
// and the returned ValidationError lists every invalid entry.
func (s *Service) BulkCreateArtists(ctx context.Context, artists []store.Artist) (int64, error) {
	var (
		cleaned = make([]store.Artist, 0, len(artists))
		invalid []InvalidArtist
	)
	for i, a := range artists {
		a = normalize(a)
		if !valid(a) {
			invalid = append(invalid, InvalidArtist{Index: i, Artist: artists[i]})
			continue
		}
		cleaned = append(cleaned, a)
	}

	if len(invalid) > 0 {
		return 0, &ValidationError{
			Message: "artists must have a non-empty id, name and imageUrl",
			Invalid: invalid,
		}
	}

	count, err := s.store.CreateArtists(ctx, cleaned)
	if err != nil {
		return 0, &ServerError{Message: "failed to create artists", Err: err}
	}

	s.logger.Info().
		Int("requested", len(artists)).
		Int64("inserted", count).
		Msg("Bulk created artists")

	return count, nil
}

// ListArtists returns every stored artist ordered by name.
func (s *Service) ListArtists(ctx context.Context) ([]store.Artist, error) {
	artists, err := s.store.ListArtists(ctx)
	if err != nil {
		return nil, &ServerError{Message: "failed to list artists", Err: err}
	}
	if artists == nil {
		artists = []store.Artist{}
	}
	return artists, nil
}

func normalize(a store.Artist) store.Artist {
	return store.Artist{
		ID:       strings.TrimSpace(a.ID),
		Name:     strings.TrimSpace(a.Name),
		ImageURL: strings.TrimSpace(a.ImageURL),
	}
}

func valid(a store.Artist) bool {
	return a.ID != "" && a.Name != "" && a.ImageURL != ""
}
