package model

import "github.com/google/uuid"

// UploadKind separates audio recordings from score files.
type UploadKind string

const (
	UploadKindAudio UploadKind = "AUDIO"
	UploadKindScore UploadKind = "SCORE"
)

// Upload describes a stored media file.
type Upload struct {
	ID       uuid.UUID  `json:"upload_id"`
	Kind     UploadKind `json:"kind"`
	Filename string     `json:"filename"`
	Size     int64      `json:"size"`
}
