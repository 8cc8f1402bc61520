package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// maxResponseBytes caps how much of an inference response is read.
const maxResponseBytes = 1 << 20

// HuggingFaceGenerator calls a hosted text-generation inference endpoint.
type HuggingFaceGenerator struct {
	url        string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type inferenceResult struct {
	GeneratedText string `json:"generated_text"`
}

// NewHuggingFaceGenerator creates a generator for the endpoint at url. A zero
// timeout leaves requests bounded only by the caller's context.
func NewHuggingFaceGenerator(url, token string, timeout time.Duration, log zerolog.Logger) (*HuggingFaceGenerator, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: inference API URL cannot be empty", ErrInvalidConfig)
	}
	return &HuggingFaceGenerator{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "hf_generator").Logger(),
	}, nil
}

// Generate posts the prompt once and returns the first generated text. The
// echoed prompt, if any, is stripped.
func (g *HuggingFaceGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	body, err := json.Marshal(inferenceRequest{Inputs: p.Text})
	if err != nil {
		return "", fmt.Errorf("encode inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrGenerationFailed, err)
	}

	g.log.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Int("bytes", len(raw)).
		Msg("Inference API responded")

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var results []inferenceResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("%w: empty result list", ErrInvalidResponse)
	}

	text := strings.TrimSpace(strings.TrimPrefix(results[0].GeneratedText, p.Text))
	if text == "" {
		return "", fmt.Errorf("%w: empty generated_text", ErrInvalidResponse)
	}
	return text, nil
}

// Name identifies the generator in generation records.
func (g *HuggingFaceGenerator) Name() string { return "huggingface" }
