package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jfmyers9/speedrun/internal/game"
	"github.com/jfmyers9/speedrun/internal/store"
	"github.com/julienschmidt/httprouter"
)

type searchRequest struct {
	Names []string `json:"names"`
}

type bulkCreateRequest struct {
	Artists []store.Artist `json:"artists"`
}

type bulkCreateResponse struct {
	Count int64 `json:"count"`
}

// readBody reads a bounded request body, returning nil for an empty or
// null body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, &game.ValidationError{Message: "failed to read request body"}
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}
	return body, nil
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &game.ValidationError{Message: fmt.Sprintf("invalid request body: %v", err)}
	}
	return nil
}

// servePlay starts a session when the body carries no guess, and resolves
// a guess otherwise.
func (s *Server) servePlay(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req game.GuessRequest
	if body != nil {
		if err := decode(body, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	var resp *game.Response
	if req.ArtistID == "" && req.Artist == nil && req.SessionID == "" && req.Token == "" {
		resp, err = s.game.Start(r.Context())
	} else {
		resp, err = s.game.Guess(r.Context(), req)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// serveSearchArtists runs one throttled Spotify search per name, so a long
// list can take far longer than the server's write timeout.
func (s *Server) serveSearchArtists(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to lift write deadline")
	}

	var req searchRequest
	if body != nil {
		if err := decode(body, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	artists, err := s.game.SearchArtists(r.Context(), req.Names)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, artists)
}

func (s *Server) serveBulkCreate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req bulkCreateRequest
	if body != nil {
		if err := decode(body, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	count, err := s.game.BulkCreateArtists(r.Context(), req.Artists)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, bulkCreateResponse{Count: count})
}

func (s *Server) serveListArtists(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	artists, err := s.game.ListArtists(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, artists)
}

func (s *Server) servePlays(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	plays, err := s.game.Plays(r.Context(), p.ByName("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, plays)
}

func (s *Server) serveHealthCheck(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	securityHeaders(w, s.cfg.scheme() == "https")

	if _, err := w.Write([]byte("Ok\n")); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to write health check")
	}
}

func (s *Server) serveVersion(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	securityHeaders(w, s.cfg.scheme() == "https")

	if _, err := w.Write([]byte("speedrun " + s.cfg.Version + "\n")); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to write version")
	}
}
