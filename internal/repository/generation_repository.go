package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/musiq-backend/internal/model"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

const generationColumns = `id, question_type, answer_type, text, status, generator,
	rhythm_label, detected_key, audio_name, score_name, created_at`

// GenerationRepository handles generation history data access.
type GenerationRepository struct {
	pool *pgxpool.Pool
}

// NewGenerationRepository creates a new GenerationRepository.
func NewGenerationRepository(pool *pgxpool.Pool) *GenerationRepository {
	return &GenerationRepository{pool: pool}
}

// Insert stores one generation. Re-inserting the same ID is a no-op.
func (r *GenerationRepository) Insert(ctx context.Context, g *model.Generation) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO generations (`+generationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO NOTHING`,
		g.ID, g.QuestionType, g.AnswerType, g.Text, g.Status, g.Generator,
		g.RhythmLabel, g.DetectedKey, g.AudioName, g.ScoreName, g.CreatedAt,
	)
	return err
}

// InsertBatch stores many generations in one statement using UNNEST.
func (r *GenerationRepository) InsertBatch(ctx context.Context, batch []*model.Generation) error {
	if len(batch) == 0 {
		return nil
	}

	n := len(batch)
	ids := make([]uuid.UUID, n)
	questionTypes := make([]string, n)
	answerTypes := make([]string, n)
	texts := make([]string, n)
	statuses := make([]string, n)
	generators := make([]string, n)
	rhythms := make([]string, n)
	keys := make([]string, n)
	audioNames := make([]string, n)
	scoreNames := make([]string, n)
	createdAts := make([]time.Time, n)

	for i, g := range batch {
		ids[i] = g.ID
		questionTypes[i] = string(g.QuestionType)
		answerTypes[i] = string(g.AnswerType)
		texts[i] = g.Text
		statuses[i] = string(g.Status)
		generators[i] = g.Generator
		rhythms[i] = g.RhythmLabel
		keys[i] = g.DetectedKey
		audioNames[i] = g.AudioName
		scoreNames[i] = g.ScoreName
		createdAts[i] = g.CreatedAt
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO generations (`+generationColumns+`)
		SELECT * FROM UNNEST(
			$1::uuid[],
			$2::varchar[],
			$3::varchar[],
			$4::text[],
			$5::varchar[],
			$6::varchar[],
			$7::varchar[],
			$8::varchar[],
			$9::varchar[],
			$10::varchar[],
			$11::timestamptz[]
		)
		ON CONFLICT (id) DO NOTHING`,
		ids, questionTypes, answerTypes, texts, statuses, generators,
		rhythms, keys, audioNames, scoreNames, createdAts,
	)
	return err
}

// GetByID retrieves one generation.
func (r *GenerationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Generation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+generationColumns+` FROM generations WHERE id = $1`, id)
	g, err := scanGeneration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListPaginated retrieves generations newest first, optionally filtered by
// question type.
func (r *GenerationRepository) ListPaginated(ctx context.Context, questionType model.QuestionType, limit, offset int) ([]model.Generation, int, error) {
	where := ""
	var args []interface{}
	if questionType != "" {
		where = ` WHERE question_type = $1`
		args = append(args, questionType)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM generations`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	next := len(args) + 1
	query := `SELECT ` + generationColumns + ` FROM generations` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(next) + ` OFFSET $` + strconv.Itoa(next+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *g)
	}
	return out, total, rows.Err()
}

// Delete removes one generation.
func (r *GenerationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM generations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanGeneration(row pgx.Row) (*model.Generation, error) {
	var g model.Generation
	err := row.Scan(&g.ID, &g.QuestionType, &g.AnswerType, &g.Text, &g.Status, &g.Generator,
		&g.RhythmLabel, &g.DetectedKey, &g.AudioName, &g.ScoreName, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}
