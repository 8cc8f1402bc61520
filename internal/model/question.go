package model

import (
	"errors"
	"strings"
)

// ErrUnsupportedQuestionType is returned when a selection matches no catalog entry.
var (
	ErrUnsupportedQuestionType = errors.New("unsupported question type")
	ErrUnsupportedAnswerType   = errors.New("unsupported answer type")
)

// QuestionType is one of the four fixed quiz categories.
type QuestionType string

const (
	QuestionTypeMusicHistory    QuestionType = "MUSIC_HISTORY"
	QuestionTypeRhythmHarmony   QuestionType = "RHYTHM_HARMONY"
	QuestionTypeScoreEvaluation QuestionType = "SCORE_EVALUATION"
	QuestionTypeComprehensive   QuestionType = "COMPREHENSIVE"
)

// AnswerType is one of the four fixed response formats.
type AnswerType string

const (
	AnswerTypeTrueFalse    AnswerType = "TRUE_FALSE"
	AnswerTypeMCText       AnswerType = "MC_TEXT"
	AnswerTypeMCNotation   AnswerType = "MC_NOTATION"
	AnswerTypeFreeResponse AnswerType = "FREE_RESPONSE"
)

// QuestionTypeInfo describes a category as shown on the form.
type QuestionTypeInfo struct {
	Code          QuestionType `json:"code"`
	Label         string       `json:"label"`
	Keyword       string       `json:"-"`
	RequiresAudio bool         `json:"requires_audio"`
	RequiresScore bool         `json:"requires_score"`
}

// AnswerTypeInfo describes a response format as shown on the form.
type AnswerTypeInfo struct {
	Code    AnswerType `json:"code"`
	Label   string     `json:"label"`
	Keyword string     `json:"-"`
}

// QuestionTypes lists the categories in form order.
var QuestionTypes = []QuestionTypeInfo{
	{Code: QuestionTypeMusicHistory, Label: "유형 1: 음악사 (텍스트)", Keyword: "음악사"},
	{Code: QuestionTypeRhythmHarmony, Label: "유형 2: 리듬/화성 (텍스트+청음)", Keyword: "리듬", RequiresAudio: true},
	{Code: QuestionTypeScoreEvaluation, Label: "유형 3: 악보평가 (텍스트+악보)", Keyword: "악보평가", RequiresScore: true},
	{Code: QuestionTypeComprehensive, Label: "유형 4: 종합평가 (텍스트+청음+악보)", Keyword: "종합평가", RequiresAudio: true, RequiresScore: true},
}

// AnswerTypes lists the response formats in form order.
var AnswerTypes = []AnswerTypeInfo{
	{Code: AnswerTypeTrueFalse, Label: "유형 1: O/X 형", Keyword: "O/X"},
	{Code: AnswerTypeMCText, Label: "유형 2: 객관식 (텍스트형)", Keyword: "텍스트형"},
	{Code: AnswerTypeMCNotation, Label: "유형 3: 객관식 (악보형)", Keyword: "악보형"},
	{Code: AnswerTypeFreeResponse, Label: "유형 4: 주관식 (단답/서술형)", Keyword: "주관식"},
}

// DefaultAnswerType is used when the form carries no answer format.
const DefaultAnswerType = AnswerTypeMCText

// Info returns the catalog entry for t.
func (t QuestionType) Info() (QuestionTypeInfo, bool) {
	for _, info := range QuestionTypes {
		if info.Code == t {
			return info, true
		}
	}
	return QuestionTypeInfo{}, false
}

// Label returns the form label, or the raw code for unknown values.
func (t QuestionType) Label() string {
	if info, ok := t.Info(); ok {
		return info.Label
	}
	return string(t)
}

// Label returns the form label, or the raw code for unknown values.
func (a AnswerType) Label() string {
	for _, info := range AnswerTypes {
		if info.Code == a {
			return info.Label
		}
	}
	return string(a)
}

// ParseQuestionType accepts a code, a full label, or any text containing the
// category keyword.
func ParseQuestionType(raw string) (QuestionType, error) {
	s := strings.TrimSpace(raw)
	for _, info := range QuestionTypes {
		if strings.EqualFold(s, string(info.Code)) || s == info.Label {
			return info.Code, nil
		}
	}
	for _, info := range QuestionTypes {
		if strings.Contains(s, info.Keyword) {
			return info.Code, nil
		}
	}
	return "", ErrUnsupportedQuestionType
}

// ParseAnswerType accepts a code, a full label, or any text containing the
// format keyword.
func ParseAnswerType(raw string) (AnswerType, error) {
	s := strings.TrimSpace(raw)
	for _, info := range AnswerTypes {
		if strings.EqualFold(s, string(info.Code)) || s == info.Label {
			return info.Code, nil
		}
	}
	for _, info := range AnswerTypes {
		if strings.Contains(s, info.Keyword) {
			return info.Code, nil
		}
	}
	return "", ErrUnsupportedAnswerType
}
