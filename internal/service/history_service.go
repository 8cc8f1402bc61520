package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/stemsi/musiq-backend/internal/document"
	"github.com/stemsi/musiq-backend/internal/model"
	"github.com/stemsi/musiq-backend/internal/repository"
	"github.com/stemsi/musiq-backend/internal/response"
)

// HistoryStore is the persistence the history endpoints need.
type HistoryStore interface {
	GenerationReader
	ListPaginated(ctx context.Context, questionType model.QuestionType, limit, offset int) ([]model.Generation, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// HistoryService exposes stored generations to administrators.
type HistoryService struct {
	store HistoryStore
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(store HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// List retrieves generations with pagination, optionally filtered by a
// question type code or label.
func (s *HistoryService) List(ctx context.Context, questionType string, page, perPage int) ([]model.Generation, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	var filter model.QuestionType
	if questionType != "" {
		qt, err := model.ParseQuestionType(questionType)
		if err != nil {
			return nil, nil, err
		}
		filter = qt
	}

	limit := perPage
	offset := (page - 1) * perPage

	items, total, err := s.store.ListPaginated(ctx, filter, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []model.Generation{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return items, pagination, nil
}

// Get retrieves one stored generation.
func (s *HistoryService) Get(ctx context.Context, id uuid.UUID) (*model.Generation, error) {
	g, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrGenerationNotFound
	}
	return g, err
}

// Delete removes one stored generation.
func (s *HistoryService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrGenerationNotFound
	}
	return err
}

// Document re-exports a stored generation as DOCX.
func (s *HistoryService) Document(ctx context.Context, id uuid.UUID) ([]byte, error) {
	g, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return document.Build(document.DefaultHeading, g.Text)
}
