package audio

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// maxAnalysisSeconds caps how much of a clip is analysed.
const maxAnalysisSeconds = 60

// RhythmResult is the outcome of analysing one audio file.
type RhythmResult struct {
	Label      string   `json:"label"`
	Classifier string   `json:"classifier"`
	Features   Features `json:"features"`
	Duration   float64  `json:"duration_seconds"`
}

// Analyzer decodes audio, extracts rhythm features and classifies them.
type Analyzer struct {
	decoder    *Decoder
	classifier Classifier
	log        zerolog.Logger
}

// NewAnalyzer wires a decoder and classifier together.
func NewAnalyzer(decoder *Decoder, classifier Classifier, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		decoder:    decoder,
		classifier: classifier,
		log:        log.With().Str("component", "audio_analyzer").Logger(),
	}
}

// Labels returns the labels the classifier can produce.
func (a *Analyzer) Labels() []string { return a.classifier.Labels() }

// Analyze runs the full rhythm pipeline on one uploaded file.
func (a *Analyzer) Analyze(ctx context.Context, filename string, data []byte) (*RhythmResult, error) {
	samples, sr, err := a.decoder.Decode(ctx, filename, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	if limit := maxAnalysisSeconds * sr; len(samples) > limit {
		samples = samples[:limit]
	}

	features, err := Extract(samples, sr)
	if err != nil {
		return nil, err
	}

	label, err := a.classifier.Classify(features)
	if err != nil {
		return nil, fmt.Errorf("classify rhythm: %w", err)
	}

	a.log.Debug().
		Str("file", filename).
		Float64("bpm", features.BPM).
		Float64("triple_ratio", features.TripleRatio).
		Float64("swing_ratio", features.SwingRatio).
		Str("label", label).
		Msg("Rhythm analysed")

	return &RhythmResult{
		Label:      label,
		Classifier: a.classifier.Name(),
		Features:   features,
		Duration:   float64(len(samples)) / float64(sr),
	}, nil
}

// LoadClassifier loads the centroid model at path, falling back to a random
// classifier when path is empty or the model cannot be used.
func LoadClassifier(path string, log zerolog.Logger) Classifier {
	if path == "" {
		log.Warn().Msg("RHYTHM_MODEL_PATH not set, using random rhythm classifier")
		return NewRandomClassifier(DefaultLabels, nil)
	}
	model, err := LoadModel(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Rhythm model unavailable, using random rhythm classifier")
		return NewRandomClassifier(DefaultLabels, nil)
	}
	log.Info().Str("path", path).Strs("labels", model.Labels()).Msg("Rhythm model loaded")
	return model
}
