// Package spotify provides a small client for the Spotify Web API.
//
// # Overview
//
// Only the parts of the API needed to look up artists are implemented:
// client credentials token exchange, related artists and artist search.
// The client does not cache tokens; every call to ClientCredentials
// performs a fresh exchange.
//
// # Quick Start
//
//	client := spotify.NewClient(spotify.Config{
//	    ClientID:     "your-client-id",
//	    ClientSecret: "your-client-secret",
//	})
//
//	token, err := client.Tokens().ClientCredentials(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	related, err := client.Artists().Related(ctx, token.AccessToken, "0OdUWJ0sBjDrqHygGUXeCF")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Error Handling
//
// Token exchange failures are reported as *AuthenticationError. Any other
// non-success response from the Web API is reported as *Error, carrying the
// HTTP status code and status text:
//
//	_, err := client.Artists().Related(ctx, token, id)
//	var apiErr *spotify.Error
//	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
//	    // unknown artist
//	}
//
// No request is ever retried.
//
// # Configuration
//
// Base URLs and the HTTP client can be overridden, which is how the tests
// point the client at an httptest server:
//
//	client := spotify.NewClient(spotify.Config{
//	    ClientID:     "id",
//	    ClientSecret: "secret",
//	    BaseURL:      server.URL,
//	    AccountsURL:  server.URL + "/api/token",
//	    HTTPClient:   &http.Client{Timeout: 10 * time.Second},
//	})
package spotify
