package model

import (
	"time"

	"github.com/google/uuid"
)

// GenerationStatus tells how the question text was produced.
type GenerationStatus string

const (
	// GenerationStatusGenerated means the generator produced the text.
	GenerationStatusGenerated GenerationStatus = "GENERATED"
	// GenerationStatusFallback means a required file was missing and the
	// fixed fallback text was used.
	GenerationStatusFallback GenerationStatus = "FALLBACK"
	// GenerationStatusFailed means a step failed and the text carries the error.
	GenerationStatusFailed GenerationStatus = "FAILED"
)

// Generation is one generated question. Text is never empty.
type Generation struct {
	ID           uuid.UUID        `json:"id"`
	QuestionType QuestionType     `json:"question_type"`
	AnswerType   AnswerType       `json:"answer_type"`
	Text         string           `json:"text"`
	Status       GenerationStatus `json:"status"`
	Generator    string           `json:"generator"`
	RhythmLabel  string           `json:"rhythm_label,omitempty"`
	DetectedKey  string           `json:"detected_key,omitempty"`
	AudioName    string           `json:"audio_name,omitempty"`
	ScoreName    string           `json:"score_name,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// Attachment is an uploaded file held in memory for one request.
type Attachment struct {
	Filename string
	Data     []byte
}

// GenerateRequest is the JSON payload for generation. Files are referenced by
// the IDs returned from the media upload endpoint.
type GenerateRequest struct {
	QuestionTypes []string `json:"question_types" form:"question_types" binding:"omitempty,max=4,dive,max=100"`
	AnswerTypes   []string `json:"answer_types" form:"answer_types" binding:"omitempty,max=4,dive,max=100"`
	AudioUploadID string   `json:"audio_upload_id" form:"audio_upload_id" binding:"omitempty,uuid"`
	ScoreUploadID string   `json:"score_upload_id" form:"score_upload_id" binding:"omitempty,uuid"`
}

// ExportDocumentRequest is the payload for exporting arbitrary text.
type ExportDocumentRequest struct {
	Text string `json:"text" binding:"required,min=1,max=20000"`
}

// GenerationResponse wraps a generation with its download URL.
type GenerationResponse struct {
	Generation  *Generation `json:"generation"`
	DocumentURL string      `json:"document_url"`
}

// HistoryQuery filters the admin history listing.
type HistoryQuery struct {
	QuestionType string `form:"question_type" binding:"omitempty,question_type"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PerPage      int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}
