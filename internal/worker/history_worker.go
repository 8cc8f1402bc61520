package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/musiq-backend/internal/cache"
	"github.com/stemsi/musiq-backend/internal/model"
)

const (
	HistoryBatchSize    = 50
	HistoryBatchTimeout = 2 * time.Second
	HistoryPollTimeout  = 1 * time.Second
	// HistoryRetryBackoff is how long the worker pauses after requeueing
	// rows the database refused.
	HistoryRetryBackoff = 2 * time.Second
)

// GenerationStore persists generation records.
type GenerationStore interface {
	Insert(ctx context.Context, g *model.Generation) error
	InsertBatch(ctx context.Context, batch []*model.Generation) error
}

// HistoryWorker drains the generation queue into Postgres in batches.
type HistoryWorker struct {
	store   GenerationStore
	queue   cache.Queue
	log     zerolog.Logger
	backoff time.Duration
}

func NewHistoryWorker(store GenerationStore, queue cache.Queue, log zerolog.Logger) *HistoryWorker {
	return &HistoryWorker{
		store:   store,
		queue:   queue,
		log:     log.With().Str("component", "history_worker").Logger(),
		backoff: HistoryRetryBackoff,
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start blocks until ctx is cancelled, then flushes what it holds.
func (w *HistoryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("HistoryWorker started")

	batch := make([]*model.Generation, 0, HistoryBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= HistoryBatchSize || time.Since(lastFlush) >= HistoryBatchTimeout) {

			requeued := w.flushSafe(ctx, batch)
			batch = batch[:0]
			if requeued > 0 {
				w.pause(ctx)
			}
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			raw, err := w.queue.Pop(ctx, HistoryPollTimeout)
			if err != nil {
				if !errors.Is(err, cache.ErrQueueEmpty) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("Queue pop error")
				}
				continue
			}

			var g model.Generation
			if err := json.Unmarshal(raw, &g); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &g)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with single-row fallback
// ----------------------------------------------------------------

// flushSafe returns how many rows went back onto the queue.
func (w *HistoryWorker) flushSafe(ctx context.Context, batch []*model.Generation) int {
	if len(batch) == 0 {
		return 0
	}

	if err := w.store.InsertBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("size", len(batch)).Msg("bulk insert failed, using fallback")

		requeued := 0
		for _, g := range batch {
			if err := w.store.Insert(ctx, g); err != nil {
				w.log.Error().Err(err).Str("generation_id", g.ID.String()).Msg("single insert failed, requeueing")
				raw, _ := json.Marshal(g)
				if err := w.queue.Push(ctx, raw); err != nil {
					w.log.Error().Err(err).Msg("requeue failed, record dropped")
					continue
				}
				requeued++
			}
		}
		return requeued
	}

	w.log.Debug().Int("size", len(batch)).Msg("History batch persisted")
	return 0
}

// pause waits out the retry backoff or until ctx ends.
func (w *HistoryWorker) pause(ctx context.Context) {
	w.log.Info().Dur("backoff", w.backoff).Msg("Requeued failed rows, backing off")
	select {
	case <-ctx.Done():
	case <-time.After(w.backoff):
	}
}
