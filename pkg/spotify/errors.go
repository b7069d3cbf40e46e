package spotify

import (
	"errors"
	"fmt"
)

// Error represents a non-success response from the Web API.
type Error struct {
	StatusCode int    // HTTP status code
	Status     string // HTTP status text, e.g. "404 Not Found"
	Message    string // Message from the error body, if any
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("spotify: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("spotify: %s", e.Status)
}

// Is reports whether target is an *Error with the same status code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode
}

// AuthenticationError is returned when a bearer token cannot be obtained,
// either because credentials are missing or the token endpoint refused them.
type AuthenticationError struct {
	StatusCode int    // Zero when no request was made
	Status     string // Upstream status text
	Err        error
}

func (e *AuthenticationError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("spotify: authentication failed: %v", e.Err)
	case e.Status != "":
		return fmt.Sprintf("spotify: error retrieving access token: %s", e.Status)
	default:
		return "spotify: authentication failed"
	}
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// ErrMissingCredentials is wrapped by the *AuthenticationError returned when
// no client id or secret is configured.
var ErrMissingCredentials = errors.New("missing spotify client id or client secret")

// errorBody is the Web API's regular error object.
type errorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}
