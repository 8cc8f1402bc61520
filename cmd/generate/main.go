package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/stemsi/musiq-backend/internal/audio"
	"github.com/stemsi/musiq-backend/internal/cache"
	"github.com/stemsi/musiq-backend/internal/config"
	"github.com/stemsi/musiq-backend/internal/document"
	"github.com/stemsi/musiq-backend/internal/generator"
	"github.com/stemsi/musiq-backend/internal/logger"
	"github.com/stemsi/musiq-backend/internal/model"
	"github.com/stemsi/musiq-backend/internal/score"
	"github.com/stemsi/musiq-backend/internal/service"
)

func main() {
	var (
		questionType = flag.String("type", "", "Question type code or label (e.g. MUSIC_HISTORY, 리듬)")
		answerType   = flag.String("answer", "", "Answer type code or label (default MC_TEXT)")
		audioPath    = flag.String("audio", "", "Audio file (.wav, .mp3)")
		scorePath    = flag.String("score", "", "Score file (.xml, .musicxml, .mxl)")
		outPath      = flag.String("out", document.Filename, "Output DOCX path")
	)
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─── Read Inputs ───────────────────────────────────────────────────
	in := service.GenerateInput{
		QuestionTypes: []string{*questionType},
		AnswerTypes:   []string{*answerType},
	}
	var err error
	if in.Audio, err = readAttachment(*audioPath, model.UploadKindAudio); err != nil {
		log.Fatal().Err(err).Msg("Invalid audio file")
	}
	if in.Score, err = readAttachment(*scorePath, model.UploadKindScore); err != nil {
		log.Fatal().Err(err).Msg("Invalid score file")
	}

	// ─── Initialize Pipeline ───────────────────────────────────────────
	gen, err := generator.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize question generator")
	}
	audioAnalyzer := audio.NewAnalyzer(
		audio.NewDecoder(cfg.FFmpegPath),
		audio.LoadClassifier(cfg.RhythmModelPath, log),
		log,
	)
	questionService := service.NewQuestionService(cfg, gen, audioAnalyzer, score.NewAnalyzer(log),
		cache.NewMemoryCache(16), nil, nil, log)

	// ─── Generate ──────────────────────────────────────────────────────
	g, err := questionService.Generate(ctx, in, func(s service.Stage) {
		log.Debug().Str("stage", string(s)).Msg("Progress")
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	doc, err := questionService.ExportText(g.Text)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build document")
	}
	if err := os.WriteFile(*outPath, doc, 0o644); err != nil {
		log.Fatal().Err(err).Str("path", *outPath).Msg("Failed to write document")
	}

	fmt.Println(g.Text)
	log.Info().
		Str("status", string(g.Status)).
		Str("generator", g.Generator).
		Str("out", *outPath).
		Msg("Document written")
}

// readAttachment loads an optional input file and checks its extension.
func readAttachment(path string, want model.UploadKind) (*model.Attachment, error) {
	if path == "" {
		return nil, nil
	}
	kind, err := service.KindOf(path)
	if err != nil {
		return nil, err
	}
	if kind != want {
		return nil, fmt.Errorf("%w: %s is not %s", service.ErrUploadKindMismatch, path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &model.Attachment{Filename: filepath.Base(path), Data: data}, nil
}
