package store

import (
	"context"
	"fmt"
)

// RelatedArtists returns the cached related artists of sourceID in the order
// they were stored. An empty slice means the cache has nothing for it.
func (s *Store) RelatedArtists(ctx context.Context, sourceID string) ([]Artist, error) {
	return s.queryArtists(ctx, `
		SELECT a.id, a.name, a.image_url
		FROM related_artists r
		JOIN artists a ON a.id = r.related_id
		WHERE r.source_id = ?
		ORDER BY r.position ASC
	`, sourceID)
}

// ReplaceRelatedArtists overwrites the cached related artists of sourceID.
//
// Related artists missing from the artists table are created; existing ones
// are left untouched. The previous association is deleted wholesale, so with
// concurrent writers for the same source the last commit wins and nothing is
// merged.
func (s *Store) ReplaceRelatedArtists(ctx context.Context, sourceID string, related []Artist) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insertArtist, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO artists (id, name, image_url) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer insertArtist.Close()

	if _, err := tx.ExecContext(ctx, "DELETE FROM related_artists WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("failed to clear related artists of %s: %w", sourceID, err)
	}

	insertRelated, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO related_artists (source_id, related_id, position) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer insertRelated.Close()

	for i, a := range related {
		if _, err := insertArtist.ExecContext(ctx, a.ID, a.Name, a.ImageURL); err != nil {
			return fmt.Errorf("failed to insert artist %s: %w", a.ID, err)
		}
		if _, err := insertRelated.ExecContext(ctx, sourceID, a.ID, i); err != nil {
			return fmt.Errorf("failed to relate %s to %s: %w", a.ID, sourceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
