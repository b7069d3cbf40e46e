package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jfmyers9/speedrun/internal/game"
	"github.com/jfmyers9/speedrun/pkg/spotify"
)

type errorResponse struct {
	Message        string               `json:"message"`
	InvalidArtists []game.InvalidArtist `json:"invalidArtists,omitempty"`
}

// writeError logs err and answers with a status and message for its kind.
// Only validation and not-found messages reach the client verbatim.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *game.ValidationError
		notFound   *game.NotFoundError
		authErr    *spotify.AuthenticationError
		apiErr     *spotify.Error
	)

	status := http.StatusInternalServerError
	resp := errorResponse{Message: "internal server error"}

	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		resp = errorResponse{Message: validation.Message, InvalidArtists: validation.Invalid}
	case errors.As(err, &notFound):
		status = http.StatusNotFound
		resp.Message = notFound.Error()
	case errors.As(err, &authErr):
		status = http.StatusBadGateway
		resp.Message = "failed to authenticate with Spotify"
	case errors.As(err, &apiErr):
		status = http.StatusBadGateway
		resp.Message = "Spotify request failed"
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		resp.Message = "request timed out"
	}

	event := s.logger.Error()
	if status < http.StatusInternalServerError {
		event = s.logger.Info()
	}
	event.
		Err(err).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("Request failed")

	s.writeJSON(w, status, resp)
}
