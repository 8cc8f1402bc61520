package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/musiq-backend/internal/model"
	"github.com/stemsi/musiq-backend/internal/repository"
)

type fakeHistoryStore struct {
	memoryStore
	gotType   model.QuestionType
	gotLimit  int
	gotOffset int
	total     int
}

func (s *fakeHistoryStore) ListPaginated(_ context.Context, qt model.QuestionType, limit, offset int) ([]model.Generation, int, error) {
	s.gotType, s.gotLimit, s.gotOffset = qt, limit, offset
	return nil, s.total, nil
}

func (s *fakeHistoryStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func TestHistoryList(t *testing.T) {
	store := &fakeHistoryStore{total: 45}
	svc := NewHistoryService(store)

	items, pg, err := svc.List(context.Background(), "리듬", 3, 20)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Equal(t, model.QuestionTypeRhythmHarmony, store.gotType)
	assert.Equal(t, 20, store.gotLimit)
	assert.Equal(t, 40, store.gotOffset)
	assert.Equal(t, 3, pg.TotalPages)

	_, pg, err = svc.List(context.Background(), "", 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, pg.Page)
	assert.Equal(t, 100, pg.PerPage)
	assert.Equal(t, model.QuestionType(""), store.gotType)

	_, _, err = svc.List(context.Background(), "발성", 1, 10)
	assert.ErrorIs(t, err, model.ErrUnsupportedQuestionType)
}

func TestHistoryGetDeleteDocument(t *testing.T) {
	g := &model.Generation{ID: uuid.New(), Text: "Q1. 문항"}
	store := &fakeHistoryStore{memoryStore: memoryStore{items: map[uuid.UUID]*model.Generation{g.ID: g}}}
	svc := NewHistoryService(store)

	got, err := svc.Get(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.Text, got.Text)

	doc, err := svc.Document(context.Background(), g.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, doc)

	require.NoError(t, svc.Delete(context.Background(), g.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), g.ID), ErrGenerationNotFound)

	_, err = svc.Get(context.Background(), g.ID)
	assert.ErrorIs(t, err, ErrGenerationNotFound)
}
