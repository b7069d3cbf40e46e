package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// TokenService exchanges client credentials for bearer tokens.
type TokenService struct {
	client *Client
}

// ClientCredentials performs the OAuth client credentials flow.
//
// The client id and secret are sent using HTTP basic authentication. A new
// token is requested on every call; callers that want to reuse a token
// should hold on to the returned value.
//
// Example:
//
//	token, err := client.Tokens().ClientCredentials(ctx)
//	if err != nil {
//	    var authErr *spotify.AuthenticationError
//	    if errors.As(err, &authErr) {
//	        log.Fatalf("bad credentials: %v", authErr)
//	    }
//	}
func (t *TokenService) ClientCredentials(ctx context.Context) (*Token, error) {
	c := t.client
	if !c.HasCredentials() {
		return nil, &AuthenticationError{Err: ErrMissingCredentials}
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.accountsURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "speedrun/1.0")

	c.logDebugf("spotify: requesting client credentials token")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AuthenticationError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, &AuthenticationError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        fmt.Errorf("empty access token"),
		}
	}

	return &token, nil
}
