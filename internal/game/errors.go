package game

import (
	"fmt"

	"github.com/jfmyers9/speedrun/internal/store"
)

// ValidationError reports a request that cannot be served as given.
type ValidationError struct {
	Message string
	Invalid []InvalidArtist
}

func (e *ValidationError) Error() string {
	if len(e.Invalid) > 0 {
		return fmt.Sprintf("%s (%d invalid)", e.Message, len(e.Invalid))
	}
	return e.Message
}

// InvalidArtist is a rejected entry of a bulk create, with its position in
// the request.
type InvalidArtist struct {
	Index  int          `json:"index"`
	Artist store.Artist `json:"artist"`
}

// NotFoundError reports a reference to something that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ServerError reports a failure that is not the caller's fault.
type ServerError struct {
	Message string
	Err     error
}

func (e *ServerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
