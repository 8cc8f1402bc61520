package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/stemsi/musiq-backend/internal/config"
	"github.com/stemsi/musiq-backend/internal/model"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUploadNotFound      = errors.New("upload not found")
	ErrUploadKindMismatch  = errors.New("upload kind mismatch")
)

// Allowed extensions per upload kind.
var allowedExtensions = map[string]model.UploadKind{
	".wav":      model.UploadKindAudio,
	".mp3":      model.UploadKindAudio,
	".xml":      model.UploadKindScore,
	".musicxml": model.UploadKindScore,
	".mxl":      model.UploadKindScore,
}

// KindOf returns the upload kind for a filename's extension.
func KindOf(filename string) (model.UploadKind, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	kind, ok := allowedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedFileType, ext, strings.Join(allowedTypes(), ", "))
	}
	return kind, nil
}

// MediaService handles audio and score uploads.
type MediaService struct {
	cfg *config.Config
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{cfg: cfg}
}

// ReadUpload validates a multipart file and reads it into memory.
// An empty want accepts either kind.
func (s *MediaService) ReadUpload(file multipart.File, header *multipart.FileHeader, want model.UploadKind) (*model.Attachment, model.UploadKind, error) {
	kind, err := KindOf(header.Filename)
	if err != nil {
		return nil, "", err
	}
	if want != "" && kind != want {
		return nil, "", fmt.Errorf("%w: %s is not %s", ErrUploadKindMismatch, header.Filename, want)
	}
	if header.Size > s.cfg.MaxUploadBytes {
		return nil, "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, "", fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.cfg.MaxUploadBytes)
	}

	return &model.Attachment{Filename: truncateFilename(filepath.Base(header.Filename), maxFilenameBytes), Data: data}, kind, nil
}

// SaveUpload stores an uploaded file under a UUID so later requests can
// reference it by ID.
func (s *MediaService) SaveUpload(file multipart.File, header *multipart.FileHeader) (*model.Upload, error) {
	att, kind, err := s.ReadUpload(file, header, "")
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	id := uuid.New()
	prefix := id.String() + "_"
	destPath := filepath.Join(s.cfg.UploadDir, prefix+truncateFilename(sanitizeFilename(att.Filename), maxFilenameBytes-len(prefix)))
	if err := os.WriteFile(destPath, att.Data, 0o644); err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}

	return &model.Upload{
		ID:       id,
		Kind:     kind,
		Filename: att.Filename,
		Size:     int64(len(att.Data)),
	}, nil
}

// LoadUpload reads a stored upload back and checks its kind.
func (s *MediaService) LoadUpload(id uuid.UUID, want model.UploadKind) (*model.Attachment, error) {
	prefix := id.String() + "_"
	matches, err := filepath.Glob(filepath.Join(s.cfg.UploadDir, prefix+"*"))
	if err != nil {
		return nil, fmt.Errorf("find upload: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrUploadNotFound
	}

	name := strings.TrimPrefix(filepath.Base(matches[0]), prefix)
	kind, err := KindOf(name)
	if err != nil {
		return nil, err
	}
	if want != "" && kind != want {
		return nil, fmt.Errorf("%w: %s is not %s", ErrUploadKindMismatch, name, want)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &model.Attachment{Filename: name, Data: data}, nil
}

// sanitizeFilename keeps letters, digits, dot, dash and underscore.
// maxFilenameBytes matches both the history name columns and the usual
// file system name limit.
const maxFilenameBytes = 255

// truncateFilename shortens name to at most max bytes on a rune boundary,
// keeping the extension.
func truncateFilename(name string, max int) string {
	if len(name) <= max {
		return name
	}
	ext := filepath.Ext(name)
	if len(ext) >= max {
		ext = ""
	}
	stem := name[:len(name)-len(ext)]
	cut := max - len(ext)
	for cut > 0 && !utf8.RuneStart(stem[cut]) {
		cut--
	}
	return stem[:cut] + ext
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r > 127:
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if strings.Trim(out, "._") == "" {
		return "upload" + strings.ToLower(filepath.Ext(name))
	}
	return out
}

func allowedTypes() []string {
	types := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		types = append(types, ext)
	}
	sort.Strings(types)
	return types
}
