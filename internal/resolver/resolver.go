// Package resolver produces the related artists of an artist by racing the
// local cache against the Spotify API, backfilling the cache whenever the
// API answer is used.
//
// Precedence, per call:
//
//  1. A cache hit that arrives before the API answer wins; the API call is
//     cancelled (or, if not yet started, never made).
//  2. Otherwise the API answer is used. A cache miss or cache failure only
//     means waiting for the API; cache failures are logged.
//  3. An API failure is returned to the caller. There is no fallback to
//     cached data on that path.
//
// Every call gets its own cancellation scope, so concurrent resolutions
// never cancel one another.
package resolver

import (
	"context"
	"time"

	"github.com/jfmyers9/speedrun/internal/store"
	"github.com/rs/zerolog"
)

// Cache is the read side of the related-artist cache.
type Cache interface {
	RelatedArtists(ctx context.Context, sourceID string) ([]store.Artist, error)
}

// Upstream fetches related artists from the live API. An empty token asks
// the implementation to obtain one.
type Upstream interface {
	RelatedArtists(ctx context.Context, artistID, token string) ([]store.Artist, error)
}

// Config holds resolver tuning.
type Config struct {
	// HedgeDelay is how long the cache gets on its own before the API call
	// is started. Zero starts both at once.
	HedgeDelay time.Duration
}

// Resolver races the cache against the API.
type Resolver struct {
	cache    Cache
	upstream Upstream
	backfill *Backfiller
	config   Config
	logger   zerolog.Logger
}

// New creates a Resolver. Results taken from upstream are handed to
// backfill for persistence.
func New(cfg Config, cache Cache, upstream Upstream, backfill *Backfiller, logger zerolog.Logger) *Resolver {
	return &Resolver{
		cache:    cache,
		upstream: upstream,
		backfill: backfill,
		config:   cfg,
		logger:   logger.With().Str("component", "resolver").Logger(),
	}
}

// Resolve returns the related artists of artistID. token may be empty.
func (r *Resolver) Resolve(ctx context.Context, artistID, token string) ([]store.Artist, error) {
	upstreamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := r.logger.With().Str("artist_id", artistID).Logger()

	cached := make(chan Result, 1)
	go func() {
		artists, err := r.cache.RelatedArtists(ctx, artistID)
		cached <- newResult(SourceCache, artists, err)
	}()

	var fetched chan Result
	launch := func() {
		ch := make(chan Result, 1)
		fetched = ch
		go func() {
			artists, err := r.upstream.RelatedArtists(upstreamCtx, artistID, token)
			ch <- newResult(SourceUpstream, artists, err)
		}()
	}

	var hedge <-chan time.Time
	if r.config.HedgeDelay > 0 {
		timer := time.NewTimer(r.config.HedgeDelay)
		defer timer.Stop()
		hedge = timer.C
	} else {
		launch()
	}

	for {
		select {
		case res := <-cached:
			cached = nil

			switch res.Outcome {
			case OutcomeHit:
				log.Debug().Int("count", len(res.Artists)).Msg("Related artists served from cache")
				return res.Artists, nil
			case OutcomeFailed:
				log.Warn().Err(res.Err).Msg("Cache lookup failed, waiting for upstream")
			default:
				log.Debug().Msg("Cache miss")
			}

			if fetched == nil {
				hedge = nil
				launch()
			}

		case <-hedge:
			hedge = nil
			if fetched == nil {
				launch()
			}

		case res := <-fetched:
			return r.useUpstream(log, artistID, res)

		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (r *Resolver) useUpstream(log zerolog.Logger, artistID string, res Result) ([]store.Artist, error) {
	if res.Outcome == OutcomeFailed {
		return nil, res.Err
	}

	log.Debug().
		Int("count", len(res.Artists)).
		Msg("Related artists served from upstream")

	if r.backfill != nil {
		r.backfill.Enqueue(artistID, res.Artists)
	}

	if res.Artists == nil {
		return []store.Artist{}, nil
	}
	return res.Artists, nil
}
