package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stemsi/musiq-backend/internal/audio"
	"github.com/stemsi/musiq-backend/internal/cache"
	"github.com/stemsi/musiq-backend/internal/config"
	"github.com/stemsi/musiq-backend/internal/document"
	"github.com/stemsi/musiq-backend/internal/generator"
	"github.com/stemsi/musiq-backend/internal/model"
	"github.com/stemsi/musiq-backend/internal/repository"
	"github.com/stemsi/musiq-backend/internal/score"
)

// Question generation errors.
var (
	ErrQuestionTypeRequired = errors.New("at least one question type is required")
	ErrGenerationNotFound   = errors.New("generation not found")
)

// Fixed texts shown instead of a question.
const (
	MissingAudioText  = "음원 파일이 업로드되지 않았습니다. 음원(wav/mp3)을 업로드해 주세요."
	MissingScoreText  = "악보 파일이 업로드되지 않았습니다. 악보(xml/musicxml)를 업로드해 주세요."
	FailureTextPrefix = "문항 생성 중 오류가 발생했습니다: "
)

// fallbackGenerator names generations that never reached a generator.
const fallbackGenerator = "fallback"

// Stage is a progress step reported while a generation runs.
type Stage string

const (
	StageAnalyzingAudio Stage = "analyzing_audio"
	StageAnalyzingScore Stage = "analyzing_score"
	StageGenerating     Stage = "generating"
	StageDone           Stage = "done"
)

// ProgressFunc receives stage updates. It may be nil.
type ProgressFunc func(Stage)

// AudioAnalyzer classifies the rhythm of an audio file.
type AudioAnalyzer interface {
	Analyze(ctx context.Context, filename string, data []byte) (*audio.RhythmResult, error)
	Labels() []string
}

// ScoreAnalyzer estimates the key of a score file.
type ScoreAnalyzer interface {
	Analyze(ctx context.Context, filename string, data []byte) (*score.Result, error)
}

// GenerateInput is one form submission. Only the first question type and the
// first answer type are used.
type GenerateInput struct {
	QuestionTypes []string
	AnswerTypes   []string
	Audio         *model.Attachment
	Score         *model.Attachment
}

// QuestionService dispatches a selection to analysis and a generator.
type QuestionService struct {
	cfg      *config.Config
	gen      generator.Generator
	audio    AudioAnalyzer
	score    ScoreAnalyzer
	cache    cache.Cache
	recorder Recorder
	store    GenerationReader
	log      zerolog.Logger
	now      func() time.Time
}

// NewQuestionService creates a new QuestionService. store may be nil when
// history is disabled.
func NewQuestionService(
	cfg *config.Config,
	gen generator.Generator,
	audioAnalyzer AudioAnalyzer,
	scoreAnalyzer ScoreAnalyzer,
	c cache.Cache,
	recorder Recorder,
	store GenerationReader,
	log zerolog.Logger,
) *QuestionService {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &QuestionService{
		cfg:      cfg,
		gen:      gen,
		audio:    audioAnalyzer,
		score:    scoreAnalyzer,
		cache:    c,
		recorder: recorder,
		store:    store,
		log:      log.With().Str("component", "question_service").Logger(),
		now:      time.Now,
	}
}

// Generate runs one generation. Validation problems are returned as errors;
// everything after validation ends in a Generation whose text explains the
// outcome.
func (s *QuestionService) Generate(ctx context.Context, in GenerateInput, progress ProgressFunc) (*model.Generation, error) {
	if progress == nil {
		progress = func(Stage) {}
	}

	qt, at, err := parseSelection(in.QuestionTypes, in.AnswerTypes)
	if err != nil {
		return nil, err
	}
	info, _ := qt.Info()

	g := &model.Generation{
		ID:           uuid.New(),
		QuestionType: qt,
		AnswerType:   at,
		Generator:    s.gen.Name(),
		CreatedAt:    s.now().UTC(),
	}
	if in.Audio != nil {
		g.AudioName = in.Audio.Filename
	}
	if in.Score != nil {
		g.ScoreName = in.Score.Filename
	}

	var missing []string
	if info.RequiresAudio && in.Audio == nil {
		missing = append(missing, MissingAudioText)
	}
	if info.RequiresScore && in.Score == nil {
		missing = append(missing, MissingScoreText)
	}
	if len(missing) > 0 {
		g.Text = strings.Join(missing, "\n")
		g.Status = model.GenerationStatusFallback
		g.Generator = fallbackGenerator
		return s.finish(ctx, g, progress), nil
	}

	text, err := s.produce(ctx, g, info, at, in, progress)
	if err != nil {
		s.log.Warn().Err(err).
			Str("generation_id", g.ID.String()).
			Str("question_type", string(qt)).
			Msg("Generation failed")
		g.Text = FailureTextPrefix + err.Error()
		g.Status = model.GenerationStatusFailed
		return s.finish(ctx, g, progress), nil
	}

	g.Text = text
	g.Status = model.GenerationStatusGenerated
	return s.finish(ctx, g, progress), nil
}

func parseSelection(questionTypes, answerTypes []string) (model.QuestionType, model.AnswerType, error) {
	first := func(values []string) string {
		for _, v := range values {
			if strings.TrimSpace(v) != "" {
				return v
			}
		}
		return ""
	}

	rawQT := first(questionTypes)
	if rawQT == "" {
		return "", "", ErrQuestionTypeRequired
	}
	qt, err := model.ParseQuestionType(rawQT)
	if err != nil {
		return "", "", err
	}

	at := model.DefaultAnswerType
	if rawAT := first(answerTypes); rawAT != "" {
		if at, err = model.ParseAnswerType(rawAT); err != nil {
			return "", "", err
		}
	}
	return qt, at, nil
}

func (s *QuestionService) produce(
	ctx context.Context,
	g *model.Generation,
	info model.QuestionTypeInfo,
	at model.AnswerType,
	in GenerateInput,
	progress ProgressFunc,
) (string, error) {
	var facts generator.Facts

	if info.RequiresAudio {
		progress(StageAnalyzingAudio)
		rhythm, err := s.analyzeAudio(ctx, in.Audio)
		if err != nil {
			return "", fmt.Errorf("음원 분석 실패: %w", err)
		}
		facts.RhythmLabel = rhythm.Label
		facts.RhythmLabels = s.audio.Labels()
		facts.BPM = rhythm.Features.BPM
		g.RhythmLabel = rhythm.Label
	}

	if info.RequiresScore {
		progress(StageAnalyzingScore)
		res, err := s.analyzeScore(ctx, in.Score)
		if err != nil {
			return "", fmt.Errorf("악보 분석 실패: %w", err)
		}
		key := res.Key
		facts.Key = &key
		facts.TimeSignature = res.TimeSignature
		facts.ScoreTitle = res.Title
		g.DetectedKey = res.KeyName
	}

	progress(StageGenerating)
	prompt, err := generator.BuildPrompt(g.QuestionType, at, facts)
	if err != nil {
		return "", err
	}
	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", generator.ErrInvalidResponse
	}
	return text, nil
}

// analyzeAudio is cached by content hash. Results of the random fallback
// classifier are not cached.
func (s *QuestionService) analyzeAudio(ctx context.Context, att *model.Attachment) (*audio.RhythmResult, error) {
	key := config.CacheKey.AudioAnalysisKey(contentHash(att.Data))

	var cached audio.RhythmResult
	if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
		return &cached, nil
	}

	res, err := s.audio.Analyze(ctx, att.Filename, att.Data)
	if err != nil {
		return nil, err
	}
	if res.Classifier != "random" {
		if err := cache.SetJSON(ctx, s.cache, key, res, s.cfg.AnalysisCacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache audio analysis")
		}
	}
	return res, nil
}

func (s *QuestionService) analyzeScore(ctx context.Context, att *model.Attachment) (*score.Result, error) {
	key := config.CacheKey.ScoreAnalysisKey(contentHash(att.Data))

	var cached score.Result
	if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
		return &cached, nil
	}

	res, err := s.score.Analyze(ctx, att.Filename, att.Data)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, s.cache, key, res, s.cfg.AnalysisCacheTTL); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache score analysis")
	}
	return res, nil
}

// finish caches the generation for download and hands it to the recorder.
// Neither failure changes the result.
func (s *QuestionService) finish(ctx context.Context, g *model.Generation, progress ProgressFunc) *model.Generation {
	if err := cache.SetJSON(ctx, s.cache, config.CacheKey.GenerationKey(g.ID.String()), g, s.cfg.DocumentTTL); err != nil {
		s.log.Warn().Err(err).Str("generation_id", g.ID.String()).Msg("Failed to cache generation")
	}
	if err := s.recorder.Record(ctx, g); err != nil {
		s.log.Warn().Err(err).Str("generation_id", g.ID.String()).Msg("Failed to record generation")
	}

	s.log.Info().
		Str("generation_id", g.ID.String()).
		Str("question_type", string(g.QuestionType)).
		Str("answer_type", string(g.AnswerType)).
		Str("status", string(g.Status)).
		Str("generator", g.Generator).
		Msg("Generation finished")

	progress(StageDone)
	return g
}

// Get returns a recent generation from the cache, falling back to history.
func (s *QuestionService) Get(ctx context.Context, id uuid.UUID) (*model.Generation, error) {
	var g model.Generation
	err := cache.GetJSON(ctx, s.cache, config.CacheKey.GenerationKey(id.String()), &g)
	if err == nil {
		return &g, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn().Err(err).Msg("Generation cache read failed")
	}

	if s.store != nil {
		stored, err := s.store.GetByID(ctx, id)
		if err == nil {
			return stored, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrGenerationNotFound
}

// Document renders a generation as a DOCX file.
func (s *QuestionService) Document(ctx context.Context, id uuid.UUID) ([]byte, error) {
	g, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return document.Build(document.DefaultHeading, g.Text)
}

// ExportText renders arbitrary text as a DOCX file.
func (s *QuestionService) ExportText(text string) ([]byte, error) {
	return document.Build(document.DefaultHeading, text)
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
