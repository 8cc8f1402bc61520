package websocket

import "github.com/stemsi/musiq-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionGenerate Action = "generate"
	ActionPing     Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// GenerateRequest asks for one generation. Files must be uploaded first and
// referenced by upload ID.
type GenerateRequest struct {
	Action        Action   `json:"action"`
	QuestionTypes []string `json:"question_types"`
	AnswerTypes   []string `json:"answer_types"`
	AudioUploadID string   `json:"audio_upload_id"`
	ScoreUploadID string   `json:"score_upload_id"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventProgress  Event = "progress"
	EventGenerated Event = "generated"
	EventPong      Event = "pong"
)

// ProgressResponse reports one stage of a running generation.
type ProgressResponse struct {
	Event Event  `json:"event"`
	Stage string `json:"stage"`
}

// GeneratedResponse carries the finished generation.
type GeneratedResponse struct {
	Event       Event             `json:"event"`
	Generation  *model.Generation `json:"generation"`
	DocumentURL string            `json:"document_url"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
