package resolver

import (
	"github.com/jfmyers9/speedrun/internal/store"
)

// Source identifies which side of the race produced a Result.
type Source string

const (
	SourceCache    Source = "cache"
	SourceUpstream Source = "upstream"
)

// Outcome classifies a sub-lookup.
type Outcome int

const (
	// OutcomeHit means the lookup succeeded with at least one artist.
	OutcomeHit Outcome = iota
	// OutcomeEmpty means the lookup succeeded with nothing to offer.
	OutcomeEmpty
	// OutcomeFailed means the lookup returned an error.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is what one side of the race reports.
type Result struct {
	Source  Source
	Outcome Outcome
	Artists []store.Artist
	Err     error
}

func newResult(source Source, artists []store.Artist, err error) Result {
	r := Result{Source: source, Artists: artists, Err: err}
	switch {
	case err != nil:
		r.Outcome = OutcomeFailed
		r.Artists = nil
	case len(artists) == 0:
		r.Outcome = OutcomeEmpty
	default:
		r.Outcome = OutcomeHit
	}
	return r
}
