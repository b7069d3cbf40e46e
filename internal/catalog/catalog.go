// Package catalog adapts the Spotify Web API client to the game's artist
// model: token retrieval, related-artist lookups and throttled name search.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jfmyers9/speedrun/internal/store"
	"github.com/jfmyers9/speedrun/pkg/spotify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultSearchInterval spaces out search requests to stay clear of rate limits.
const DefaultSearchInterval = time.Second

// Client wraps the Spotify API client
type Client struct {
	client  *spotify.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// New creates a catalog client. Search requests issued through it, from any
// goroutine, are spaced at least searchInterval apart; zero disables
// throttling.
func New(client *spotify.Client, searchInterval time.Duration, logger zerolog.Logger) *Client {
	limit := rate.Inf
	if searchInterval > 0 {
		limit = rate.Every(searchInterval)
	}

	return &Client{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With().Str("component", "catalog").Logger(),
	}
}

// Token fetches a fresh bearer token. Tokens are never cached.
func (c *Client) Token(ctx context.Context) (string, error) {
	token, err := c.client.Tokens().ClientCredentials(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	return token.AccessToken, nil
}

// RelatedArtists fetches the related artists of artistID from Spotify. When
// token is empty a new one is requested first.
func (c *Client) RelatedArtists(ctx context.Context, artistID, token string) ([]store.Artist, error) {
	if token == "" {
		var err error
		if token, err = c.Token(ctx); err != nil {
			return nil, err
		}
	}

	related, err := c.client.Artists().Related(ctx, token, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch related artists of %s: %w", artistID, err)
	}

	artists := make([]store.Artist, 0, len(related))
	for _, a := range related {
		artists = append(artists, ToArtist(a))
	}
	return artists, nil
}

// SearchArtists resolves each name to its best Spotify match.
//
// Names without a match, or whose lookup fails, are logged and skipped.
// Only a failure to obtain a token or a cancelled ctx aborts the search.
func (c *Client) SearchArtists(ctx context.Context, names []string) ([]store.Artist, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	results := []store.Artist{}
	for i, name := range names {
		if err := c.limiter.Wait(ctx); err != nil {
			return results, fmt.Errorf("search interrupted: %w", err)
		}

		found, err := c.client.Artists().Search(ctx, token, name, 1)
		if err != nil {
			if ctx.Err() != nil {
				return results, fmt.Errorf("search interrupted: %w", ctx.Err())
			}
			c.logger.Warn().Err(err).Str("name", name).Msg("Error searching for artist")
			continue
		}

		if len(found) == 0 {
			c.logger.Info().Str("name", name).Msg("No artist found")
			continue
		}

		artist := ToArtist(found[0])
		c.logger.Info().
			Str("progress", fmt.Sprintf("%d/%d", i+1, len(names))).
			Str("name", name).
			Str("match", artist.Name).
			Str("id", artist.ID).
			Msg("Matched artist")
		results = append(results, artist)
	}

	return results, nil
}

// ToArtist maps a Spotify artist to the stored representation.
func ToArtist(a spotify.Artist) store.Artist {
	return store.Artist{
		ID:       a.ID,
		Name:     a.Name,
		ImageURL: a.ImageURL(),
	}
}
