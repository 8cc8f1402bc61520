package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"github.com/stemsi/musiq-backend/internal/model"
	"github.com/stemsi/musiq-backend/internal/score"
)

// Common errors returned by generators.
var (
	// ErrGenerationFailed is returned when a backend call fails outright.
	ErrGenerationFailed = errors.New("question generation failed")

	// ErrInvalidResponse is returned when a backend answers with nothing usable.
	ErrInvalidResponse = errors.New("invalid response from generator")

	// ErrContentBlocked is returned when the model refuses the prompt.
	ErrContentBlocked = errors.New("content blocked by model safety filters")

	// ErrInvalidConfig is returned when a generator cannot be constructed.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// Generator turns a prompt into question text.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
	Name() string
}

// Facts are the analysis results a question can be built around.
type Facts struct {
	RhythmLabel   string
	RhythmLabels  []string
	BPM           float64
	Key           *score.Key
	TimeSignature string
	ScoreTitle    string
}

// Prompt carries the selections and analysis facts for one generation.
// Text is the instruction sent to remote models.
type Prompt struct {
	QuestionType model.QuestionType
	AnswerType   model.AnswerType
	Facts        Facts
	Text         string
}

const promptTemplate = `다음 조건에 맞는 음악 평가 문항을 한국어로 한 개 작성하세요.
문항 유형: {{.QuestionLabel}}
정답 유형: {{.AnswerLabel}}
{{- if .Facts.RhythmLabel}}
음원 분석 결과: {{.Facts.RhythmLabel}} (약 {{printf "%.0f" .Facts.BPM}} BPM)
{{- end}}
{{- if .KeyName}}
악보 분석 결과: {{.KeyName}}{{if .Facts.TimeSignature}}, {{.Facts.TimeSignature}} 박자{{end}}
{{- end}}
{{- if .Facts.ScoreTitle}}
곡명: {{.Facts.ScoreTitle}}
{{- end}}
아래 예시와 같은 형식으로 문항과 정답만 출력하세요.

{{.Example}}
`

var promptTmpl = template.Must(template.New("question").Parse(promptTemplate))

// BuildPrompt assembles a Prompt and renders its instruction text, using the
// canned rendering of the same selections as the format example.
func BuildPrompt(qt model.QuestionType, at model.AnswerType, facts Facts) (Prompt, error) {
	p := Prompt{QuestionType: qt, AnswerType: at, Facts: facts}

	item, err := ItemFor(p)
	if err != nil {
		return Prompt{}, err
	}

	keyName := ""
	if facts.Key != nil {
		keyName = facts.Key.Korean()
	}

	var buf bytes.Buffer
	err = promptTmpl.Execute(&buf, struct {
		QuestionLabel string
		AnswerLabel   string
		KeyName       string
		Facts         Facts
		Example       string
	}{
		QuestionLabel: qt.Label(),
		AnswerLabel:   at.Label(),
		KeyName:       keyName,
		Facts:         facts,
		Example:       item.Render(at),
	})
	if err != nil {
		return Prompt{}, fmt.Errorf("render prompt: %w", err)
	}
	p.Text = buf.String()
	return p, nil
}
