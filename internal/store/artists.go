package store

import (
	"context"
	"fmt"
)

// Artist is a music artist as shown to players.
type Artist struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// IDs returns the identifiers of artists, in order.
func IDs(artists []Artist) []string {
	ids := make([]string, len(artists))
	for i, a := range artists {
		ids[i] = a.ID
	}
	return ids
}

// CreateArtists inserts artists in a single transaction, skipping any whose
// id already exists. It returns the number of rows actually inserted.
func (s *Store) CreateArtists(ctx context.Context, artists []Artist) (int64, error) {
	if len(artists) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO artists (id, name, image_url) VALUES (?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	var created int64
	for _, a := range artists {
		result, err := stmt.ExecContext(ctx, a.ID, a.Name, a.ImageURL)
		if err != nil {
			return 0, fmt.Errorf("failed to insert artist %s: %w", a.ID, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		created += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return created, nil
}

// GetArtist returns the artist with the given id, or ErrNotFound.
func (s *Store) GetArtist(ctx context.Context, id string) (*Artist, error) {
	var a Artist
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, image_url FROM artists WHERE id = ?", id,
	).Scan(&a.ID, &a.Name, &a.ImageURL)
	if err != nil {
		return nil, notFound(err, "artist %s", id)
	}
	return &a, nil
}

// RandomArtists returns up to n distinct artists in random order.
func (s *Store) RandomArtists(ctx context.Context, n int) ([]Artist, error) {
	return s.queryArtists(ctx, "SELECT id, name, image_url FROM artists ORDER BY RANDOM() LIMIT ?", n)
}

// ListArtists returns every stored artist ordered by name.
func (s *Store) ListArtists(ctx context.Context) ([]Artist, error) {
	return s.queryArtists(ctx, "SELECT id, name, image_url FROM artists ORDER BY name COLLATE NOCASE, id")
}

// CountArtists returns the number of stored artists.
func (s *Store) CountArtists(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM artists").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count artists: %w", err)
	}
	return count, nil
}

func (s *Store) queryArtists(ctx context.Context, query string, args ...any) ([]Artist, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	artists := []Artist{}
	for rows.Next() {
		var a Artist
		if err := rows.Scan(&a.ID, &a.Name, &a.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating artists: %w", err)
	}

	return artists, nil
}
