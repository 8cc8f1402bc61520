package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/stemsi/musiq-backend/internal/cache"
	"github.com/stemsi/musiq-backend/internal/model"
)

// GenerationReader loads stored generations.
type GenerationReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Generation, error)
}

// GenerationWriter stores one generation.
type GenerationWriter interface {
	Insert(ctx context.Context, g *model.Generation) error
}

// Recorder hands finished generations to history.
type Recorder interface {
	Record(ctx context.Context, g *model.Generation) error
}

// DirectRecorder writes each generation synchronously.
type DirectRecorder struct {
	store GenerationWriter
}

func NewDirectRecorder(store GenerationWriter) *DirectRecorder {
	return &DirectRecorder{store: store}
}

func (r *DirectRecorder) Record(ctx context.Context, g *model.Generation) error {
	return r.store.Insert(ctx, g)
}

// QueueRecorder enqueues generations for the history worker.
type QueueRecorder struct {
	queue cache.Queue
}

func NewQueueRecorder(queue cache.Queue) *QueueRecorder {
	return &QueueRecorder{queue: queue}
}

func (r *QueueRecorder) Record(ctx context.Context, g *model.Generation) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal generation: %w", err)
	}
	return r.queue.Push(ctx, raw)
}

// NopRecorder drops generations; used when history is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, *model.Generation) error { return nil }
