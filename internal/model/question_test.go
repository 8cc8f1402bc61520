package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestionType(t *testing.T) {
	cases := map[string]QuestionType{
		"MUSIC_HISTORY":                   QuestionTypeMusicHistory,
		"rhythm_harmony":                  QuestionTypeRhythmHarmony,
		"유형 3: 악보평가 (텍스트+악보)":            QuestionTypeScoreEvaluation,
		"유형 4: 종합평가 (텍스트+청음+악보)":         QuestionTypeComprehensive,
		"리듬":                              QuestionTypeRhythmHarmony,
		"  음악사  ":                         QuestionTypeMusicHistory,
	}
	for raw, want := range cases {
		got, err := ParseQuestionType(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseQuestionType("재즈 즉흥")
	assert.ErrorIs(t, err, ErrUnsupportedQuestionType)
}

func TestParseAnswerType(t *testing.T) {
	cases := map[string]AnswerType{
		"TRUE_FALSE":          AnswerTypeTrueFalse,
		"유형 2: 객관식 (텍스트형)":   AnswerTypeMCText,
		"유형 3: 객관식 (악보형)":    AnswerTypeMCNotation,
		"주관식":                 AnswerTypeFreeResponse,
	}
	for raw, want := range cases {
		got, err := ParseAnswerType(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseAnswerType("")
	assert.ErrorIs(t, err, ErrUnsupportedAnswerType)
}

func TestCatalogRequirements(t *testing.T) {
	info, ok := QuestionTypeComprehensive.Info()
	require.True(t, ok)
	assert.True(t, info.RequiresAudio)
	assert.True(t, info.RequiresScore)

	info, ok = QuestionTypeMusicHistory.Info()
	require.True(t, ok)
	assert.False(t, info.RequiresAudio || info.RequiresScore)

	assert.Equal(t, "UNKNOWN", QuestionType("UNKNOWN").Label())
	assert.Equal(t, "유형 1: O/X 형", AnswerTypeTrueFalse.Label())
}
