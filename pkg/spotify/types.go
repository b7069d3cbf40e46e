package spotify

// Token is a bearer token from the client credentials flow.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // Seconds
}

// Image is one rendition of an artist picture.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Artist is the full artist object returned by the Web API.
type Artist struct {
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Followers struct {
		Href  *string `json:"href"`
		Total int     `json:"total"`
	} `json:"followers"`
	Genres     []string `json:"genres"`
	Href       string   `json:"href"`
	ID         string   `json:"id"`
	Images     []Image  `json:"images"`
	Name       string   `json:"name"`
	Popularity int      `json:"popularity"`
	Type       string   `json:"type"`
	URI        string   `json:"uri"`
}

// RelatedArtistsResponse is the body of GET /artists/{id}/related-artists.
type RelatedArtistsResponse struct {
	Artists []Artist `json:"artists"`
}

// Paging is the envelope around paged search results.
type Paging[T any] struct {
	Href     string  `json:"href"`
	Limit    int     `json:"limit"`
	Next     *string `json:"next"`
	Offset   int     `json:"offset"`
	Previous *string `json:"previous"`
	Total    int     `json:"total"`
	Items    []T     `json:"items"`
}

// ArtistSearchResponse is the body of GET /search?type=artist.
type ArtistSearchResponse struct {
	Artists Paging[Artist] `json:"artists"`
}
