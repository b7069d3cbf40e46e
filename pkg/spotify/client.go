package spotify

import (
	"net/http"
	"strings"
)

// Config holds client configuration.
type Config struct {
	ClientID     string       // Client credentials id; required for token exchange
	ClientSecret string       // Client credentials secret; required for token exchange
	HTTPClient   *http.Client // Optional: HTTP client (defaults to http.DefaultClient)
	BaseURL      string       // Optional: Web API base URL (used for testing)
	AccountsURL  string       // Optional: token endpoint URL (used for testing)
	Logger       Logger       // Optional: Logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client is the main entry point for Spotify Web API operations.
type Client struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
	baseURL      string
	accountsURL  string
	logger       Logger

	tokens  *TokenService
	artists *ArtistService
}

const (
	// DefaultBaseURL is the default Web API endpoint.
	DefaultBaseURL = "https://api.spotify.com/v1"

	// DefaultAccountsURL is the default client credentials token endpoint.
	DefaultAccountsURL = "https://accounts.spotify.com/api/token"
)

// NewClient creates a new Spotify Web API client.
//
// Missing credentials are not an error here; they surface as an
// *AuthenticationError the first time a token is requested.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	accountsURL := cfg.AccountsURL
	if accountsURL == "" {
		accountsURL = DefaultAccountsURL
	}

	c := &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient,
		baseURL:      baseURL,
		accountsURL:  accountsURL,
		logger:       cfg.Logger,
	}

	c.tokens = &TokenService{client: c}
	c.artists = &ArtistService{client: c}

	return c
}

// Tokens returns the token service.
func (c *Client) Tokens() *TokenService {
	return c.tokens
}

// Artists returns the artist service.
func (c *Client) Artists() *ArtistService {
	return c.artists
}

// HasCredentials reports whether both client id and secret are configured.
func (c *Client) HasCredentials() bool {
	return c.clientID != "" && c.clientSecret != ""
}

func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
