package generator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stemsi/musiq-backend/internal/config"
)

// New builds the generator selected by cfg.Generator.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Generator, error) {
	switch cfg.Generator {
	case "", config.GeneratorStatic:
		return NewStaticGenerator(), nil
	case config.GeneratorHuggingFace:
		return NewHuggingFaceGenerator(cfg.HFAPIURL, cfg.HFAPIToken, cfg.HFTimeout, log)
	case config.GeneratorGemini:
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	default:
		return nil, fmt.Errorf("%w: unknown generator %q", ErrInvalidConfig, cfg.Generator)
	}
}
