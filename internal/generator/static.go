package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/stemsi/musiq-backend/internal/model"
	"github.com/stemsi/musiq-backend/internal/score"
)

var optionLetters = []string{"A", "B", "C", "D"}

// Item is a four-option question before it is rendered for an answer type.
type Item struct {
	Stem    string
	Options []string
	Correct int
}

// Answer returns the text of the correct option.
func (it Item) Answer() string { return it.Options[it.Correct] }

// Render formats the item for the chosen answer type. Unknown answer types
// render as multiple choice text.
func (it Item) Render(at model.AnswerType) string {
	var b strings.Builder
	switch at {
	case model.AnswerTypeTrueFalse:
		fmt.Fprintf(&b, "Q1. %s\n→ \"%s\" (O/X)\n정답: O", it.Stem, it.Answer())
	case model.AnswerTypeFreeResponse:
		fmt.Fprintf(&b, "Q1. %s (단답형으로 서술하시오)\n모범 답안: %s", it.Stem, it.Answer())
	default:
		b.WriteString("Q1. " + it.Stem + "\n")
		if at == model.AnswerTypeMCNotation {
			b.WriteString("(보기는 악보로 제시됩니다)\n")
		}
		for i, opt := range it.Options {
			fmt.Fprintf(&b, "- %s) %s\n", optionLetters[i], opt)
		}
		b.WriteString("정답: " + optionLetters[it.Correct])
	}
	return b.String()
}

// Canned items per category.
var (
	historyItem = Item{
		Stem:    "다음 중 고전주의 음악에 속하는 작곡가는 누구인가요?",
		Options: []string{"바흐", "모차르트", "드뷔시", "브람스"},
		Correct: 1,
	}
	rhythmItem = Item{
		Stem:    "음원에서 들리는 리듬 유형은 무엇인가요?",
		Options: []string{"셔플 리듬", "보사노바", "마칭 드럼", "왈츠"},
		Correct: 3,
	}
	scoreItem = Item{
		Stem:    "아래 악보의 조성은 무엇인가요?",
		Options: []string{"다장조", "사단조", "가단조", "바장조"},
		Correct: 0,
	}
	comprehensiveItem = Item{
		Stem:    "악보와 음원을 참고하여 곡의 스타일로 가장 적절한 것은?",
		Options: []string{"바로크", "고전주의", "낭만주의", "현대음악"},
		Correct: 2,
	}
)

// ItemFor returns the item for p's category, rebuilt around any analysis
// facts p carries.
func ItemFor(p Prompt) (Item, error) {
	f := p.Facts
	switch p.QuestionType {
	case model.QuestionTypeMusicHistory:
		return historyItem, nil
	case model.QuestionTypeRhythmHarmony:
		if f.RhythmLabel == "" {
			return rhythmItem, nil
		}
		return rhythmQuestion(f.RhythmLabel, f.RhythmLabels), nil
	case model.QuestionTypeScoreEvaluation:
		if f.Key == nil {
			return scoreItem, nil
		}
		return keyQuestion(*f.Key), nil
	case model.QuestionTypeComprehensive:
		if f.Key == nil || f.RhythmLabel == "" {
			return comprehensiveItem, nil
		}
		return comprehensiveQuestion(*f.Key, f.RhythmLabel, f.RhythmLabels), nil
	default:
		return Item{}, model.ErrUnsupportedQuestionType
	}
}

// rhythmQuestion keeps the canned option order and marks the detected label.
// A label outside the option set replaces the last distractor.
func rhythmQuestion(label string, labels []string) Item {
	opts := rhythmOptions(labels)
	for i, opt := range opts {
		if opt == label {
			return Item{Stem: rhythmItem.Stem, Options: opts, Correct: i}
		}
	}
	opts[len(opts)-1] = label
	return Item{Stem: rhythmItem.Stem, Options: opts, Correct: len(opts) - 1}
}

func rhythmOptions(labels []string) []string {
	src := labels
	if len(src) < len(optionLetters) {
		src = rhythmItem.Options
	}
	opts := make([]string, len(optionLetters))
	copy(opts, src)
	return opts
}

// keyQuestion offers the detected key against its relative, parallel and
// dominant keys. The correct slot is fixed per tonic so repeated uploads of
// the same score give the same question.
func keyQuestion(k score.Key) Item {
	distractors := []string{k.Dominant().Korean(), k.Relative().Korean(), k.Parallel().Korean()}
	slot := k.PitchClass % len(optionLetters)
	return Item{
		Stem:    scoreItem.Stem,
		Options: placeAnswer(k.Korean(), distractors, slot),
		Correct: slot,
	}
}

func comprehensiveQuestion(k score.Key, label string, labels []string) Item {
	other := ""
	for _, l := range rhythmOptions(labels) {
		if l != label {
			other = l
			break
		}
	}
	pair := func(key, rhythm string) string { return key + ", " + rhythm }

	distractors := []string{
		pair(k.Relative().Korean(), label),
		pair(k.Korean(), other),
		pair(k.Dominant().Korean(), other),
	}
	slot := (k.PitchClass + len(label)) % len(optionLetters)
	return Item{
		Stem:    "악보와 음원을 참고할 때, 이 곡의 조성과 리듬으로 가장 적절한 것은?",
		Options: placeAnswer(pair(k.Korean(), label), distractors, slot),
		Correct: slot,
	}
}

func placeAnswer(answer string, distractors []string, slot int) []string {
	opts := make([]string, 0, len(distractors)+1)
	opts = append(opts, distractors[:slot]...)
	opts = append(opts, answer)
	opts = append(opts, distractors[slot:]...)
	return opts
}

// StaticGenerator renders canned items. It never calls out and never fails
// for a known category.
type StaticGenerator struct{}

// NewStaticGenerator creates a StaticGenerator.
func NewStaticGenerator() *StaticGenerator { return &StaticGenerator{} }

// Generate renders the item for p.
func (g *StaticGenerator) Generate(_ context.Context, p Prompt) (string, error) {
	item, err := ItemFor(p)
	if err != nil {
		return "", err
	}
	return item.Render(p.AnswerType), nil
}

// Name identifies the generator in generation records.
func (g *StaticGenerator) Name() string { return "static" }
