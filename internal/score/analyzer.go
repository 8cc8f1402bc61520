package score

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// How the key of a score was determined.
const (
	MethodSignature = "signature"
	MethodProfile   = "profile"
)

// Result summarises one analysed score.
type Result struct {
	Key           Key     `json:"key"`
	KeyName       string  `json:"key_name"`
	KeyNameEN     string  `json:"key_name_en"`
	Method        string  `json:"method"`
	Confidence    float64 `json:"confidence"`
	Title         string  `json:"title,omitempty"`
	Composer      string  `json:"composer,omitempty"`
	TimeSignature string  `json:"time_signature,omitempty"`
	Measures      int     `json:"measures"`
	NoteCount     int     `json:"note_count"`
}

// Analyzer estimates the key of uploaded scores.
type Analyzer struct {
	log zerolog.Logger
}

// NewAnalyzer creates a score Analyzer.
func NewAnalyzer(log zerolog.Logger) *Analyzer {
	return &Analyzer{log: log.With().Str("component", "score_analyzer").Logger()}
}

// Analyze parses a score and estimates its key. A written key signature wins
// over the pitch-class profile.
func (a *Analyzer) Analyze(ctx context.Context, filename string, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := Load(filename, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	res := &Result{
		Title:         doc.Title,
		Composer:      doc.Composer,
		TimeSignature: doc.TimeSignature,
		Measures:      doc.Measures,
		NoteCount:     len(doc.Notes),
	}

	key, ok := Key{}, false
	if doc.KeySignature != nil {
		key, ok = KeyFromSignature(*doc.KeySignature)
	}
	if ok {
		res.Method = MethodSignature
		res.Confidence = 1
	} else {
		key, res.Confidence = EstimateKey(doc.Notes)
		res.Method = MethodProfile
	}
	res.Key = key
	res.KeyName = key.Korean()
	res.KeyNameEN = key.English()

	a.log.Debug().
		Str("file", filename).
		Str("key", res.KeyNameEN).
		Str("method", res.Method).
		Int("notes", res.NoteCount).
		Msg("Score analysed")

	return res, nil
}
