package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// PreferredImageSize is the edge length, in pixels, that ImageURL aims for.
const PreferredImageSize = 300

// ArtistService provides artist lookups.
type ArtistService struct {
	client *Client
}

// Related returns the artists Spotify considers similar to artistID.
func (s *ArtistService) Related(ctx context.Context, token, artistID string) ([]Artist, error) {
	if artistID == "" {
		return nil, fmt.Errorf("spotify: artist id is required")
	}

	var resp RelatedArtistsResponse
	path := "/artists/" + url.PathEscape(artistID) + "/related-artists"
	if err := s.client.get(ctx, token, path, nil, &resp); err != nil {
		return nil, err
	}

	return resp.Artists, nil
}

// Search looks up artists by free-text query, returning at most limit items.
func (s *ArtistService) Search(ctx context.Context, token, query string, limit int) ([]Artist, error) {
	if limit <= 0 {
		limit = 1
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "artist")
	params.Set("limit", strconv.Itoa(limit))

	var resp ArtistSearchResponse
	if err := s.client.get(ctx, token, "/search", params, &resp); err != nil {
		return nil, err
	}

	return resp.Artists.Items, nil
}

// ImageURL picks the image whose dimensions are closest to a square of
// PreferredImageSize pixels. It returns "" when the artist has no images.
func (a Artist) ImageURL() string {
	var (
		best     string
		bestDiff = -1
	)
	for _, img := range a.Images {
		diff := abs(img.Width-PreferredImageSize) + abs(img.Height-PreferredImageSize)
		if bestDiff < 0 || diff < bestDiff {
			best = img.URL
			bestDiff = diff
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
