package validation

import (
	"errors"
	"strings"
)

const (
	MaxVideoSize = 100 * 1024 * 1024 // 100MB
)

// User-facing messages; the session shows them verbatim in its error state.
var (
	ErrInvalidFileType = errors.New("Invalid file type. Please upload a video file.")
	ErrFileTooLarge    = errors.New("File size exceeds 100MB limit.")
)

// ValidateVideo checks the selection guard: a video/* MIME type no larger than MaxVideoSize.
func ValidateVideo(contentType string, size int64) error {
	if !IsVideoType(contentType) {
		return ErrInvalidFileType
	}
	if size > MaxVideoSize {
		return ErrFileTooLarge
	}
	return nil
}

// IsVideoType reports whether contentType belongs to the video category.
func IsVideoType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "video/")
}

// GuessContentType maps common video extensions when the client sent no Content-Type.
func GuessContentType(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx == -1 {
		return "application/octet-stream"
	}

	ext := strings.ToLower(filename[idx+1:])

	typeMap := map[string]string{
		"mp4":  "video/mp4",
		"m4v":  "video/x-m4v",
		"mov":  "video/quicktime",
		"webm": "video/webm",
		"mkv":  "video/x-matroska",
		"avi":  "video/x-msvideo",
		"mpeg": "video/mpeg",
		"mpg":  "video/mpeg",
		"3gp":  "video/3gpp",
	}

	if ct, ok := typeMap[ext]; ok {
		return ct
	}

	return "application/octet-stream"
}
