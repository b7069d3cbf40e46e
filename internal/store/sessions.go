package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrSameArtist is returned when a session would start and end on one artist.
var ErrSameArtist = errors.New("start and end artist must differ")

// Session is one game with a fixed start and end artist.
type Session struct {
	ID            string    `json:"id"`
	StartArtistID string    `json:"startArtistId"`
	EndArtistID   string    `json:"endArtistId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Play is one recorded guess within a session.
type Play struct {
	ID               int64     `json:"id"`
	SessionID        string    `json:"sessionId"`
	ArtistID         string    `json:"artistId"`
	RelatedArtistIDs []string  `json:"relatedArtistIds"` // Artists offered at session start; empty for guesses
	CreatedAt        time.Time `json:"createdAt"`
}

// CreateSession records a new session and returns it.
func (s *Store) CreateSession(ctx context.Context, startArtistID, endArtistID string) (*Session, error) {
	if startArtistID == endArtistID {
		return nil, ErrSameArtist
	}

	session := &Session{
		ID:            uuid.NewString(),
		StartArtistID: startArtistID,
		EndArtistID:   endArtistID,
		CreatedAt:     time.Now(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, start_artist_id, end_artist_id, created_at)
		VALUES (?, ?, ?, ?)
	`, session.ID, session.StartArtistID, session.EndArtistID, session.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	return session, nil
}

// DiscardSession deletes a session that has no plays yet. A session with
// recorded plays is left alone and reported as ErrNotFound.
func (s *Store) DiscardSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE id = ? AND NOT EXISTS (SELECT 1 FROM plays WHERE session_id = ?)
	`, id, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("unplayed session %s: %w", id, ErrNotFound)
	}

	return nil
}

// GetSession returns the session with the given id, or ErrNotFound.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	var (
		session   Session
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, start_artist_id, end_artist_id, created_at
		FROM sessions WHERE id = ?
	`, id).Scan(&session.ID, &session.StartArtistID, &session.EndArtistID, &createdAt)
	if err != nil {
		return nil, notFound(err, "session %s", id)
	}

	session.CreatedAt = time.Unix(createdAt, 0)
	return &session, nil
}

// AddPlay appends a play to a session's history.
func (s *Store) AddPlay(ctx context.Context, sessionID, artistID string, relatedArtistIDs []string) (int64, error) {
	if relatedArtistIDs == nil {
		relatedArtistIDs = []string{}
	}
	related, err := json.Marshal(relatedArtistIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to encode related artist ids: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO plays (session_id, artist_id, related_artist_ids, created_at)
		VALUES (?, ?, ?, ?)
	`, sessionID, artistID, string(related), time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert play: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}

	return id, nil
}

// Plays returns a session's plays in the order they were recorded.
func (s *Store) Plays(ctx context.Context, sessionID string) ([]Play, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, artist_id, related_artist_ids, created_at
		FROM plays
		WHERE session_id = ?
		ORDER BY id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	var plays []Play
	for rows.Next() {
		var (
			p         Play
			related   string
			createdAt int64
		)
		if err := rows.Scan(&p.ID, &p.SessionID, &p.ArtistID, &related, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		if err := json.Unmarshal([]byte(related), &p.RelatedArtistIDs); err != nil {
			return nil, fmt.Errorf("failed to decode related artist ids of play %d: %w", p.ID, err)
		}
		p.CreatedAt = time.Unix(createdAt, 0)
		plays = append(plays, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plays: %w", err)
	}

	return plays, nil
}
