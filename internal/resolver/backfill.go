package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/jfmyers9/speedrun/internal/store"
	"github.com/rs/zerolog"
)

// CacheWriter is the write side of the related-artist cache. Writes replace
// the whole set for a source artist.
type CacheWriter interface {
	ReplaceRelatedArtists(ctx context.Context, sourceID string, related []store.Artist) error
}

const (
	// DefaultQueueSize bounds the number of pending backfill jobs.
	DefaultQueueSize = 64

	writeTimeout = 10 * time.Second
)

type backfillJob struct {
	sourceID string
	related  []store.Artist
}

// Backfiller persists upstream results into the cache on a background
// worker so callers never wait on the write. Failed writes are logged.
type Backfiller struct {
	writer CacheWriter
	jobs   chan backfillJob
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewBackfiller starts a backfill worker with room for queueSize pending
// jobs. Call Close to drain and stop it.
func NewBackfiller(writer CacheWriter, queueSize int, logger zerolog.Logger) *Backfiller {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	b := &Backfiller{
		writer: writer,
		jobs:   make(chan backfillJob, queueSize),
		logger: logger.With().Str("component", "backfill").Logger(),
		done:   make(chan struct{}),
	}

	go b.run()

	return b
}

// Enqueue schedules a cache write for sourceID. It never blocks: when the
// queue is full or the Backfiller is closed the job is dropped with a
// warning and false is returned.
func (b *Backfiller) Enqueue(sourceID string, related []store.Artist) bool {
	job := backfillJob{
		sourceID: sourceID,
		related:  append([]store.Artist(nil), related...),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.logger.Warn().Str("artist_id", sourceID).Msg("Backfill dropped, backfiller closed")
		return false
	}

	select {
	case b.jobs <- job:
		return true
	default:
		b.logger.Warn().Str("artist_id", sourceID).Msg("Backfill dropped, queue full")
		return false
	}
}

// Close stops accepting jobs and waits for queued ones to be written, or
// for ctx to end.
func (b *Backfiller) Close(ctx context.Context) error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.jobs)
	}
	b.mu.Unlock()

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Backfiller) run() {
	defer close(b.done)

	for job := range b.jobs {
		b.write(job)
	}
}

func (b *Backfiller) write(job backfillJob) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	start := time.Now()
	if err := b.writer.ReplaceRelatedArtists(ctx, job.sourceID, job.related); err != nil {
		b.logger.Error().
			Err(err).
			Str("artist_id", job.sourceID).
			Msg("Failed to backfill related artists")
		return
	}

	b.logger.Debug().
		Str("artist_id", job.sourceID).
		Int("count", len(job.related)).
		Dur("took", time.Since(start)).
		Msg("Backfilled related artists")
}
