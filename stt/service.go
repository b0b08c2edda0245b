package stt

import (
	"context"
	"strings"
)

// DefaultLanguage is the transcription language hint used when none is given.
const DefaultLanguage = "en"

// Service transcribes one audio segment to text.
// This interface abstracts the transcription providers (OpenAI Whisper,
// Deepgram) so callers never see provider-specific response shapes.
type Service interface {
	// Name returns the provider identifier (for logging and metrics).
	Name() string

	// Transcribe converts an audio segment to text.
	// An empty transcript with a nil error is possible; the Gateway treats it
	// as a failure of this provider.
	Transcribe(ctx context.Context, audio []byte, cfg TranscriptionConfig) (string, error)
}

// TranscriptionConfig describes one captured audio segment.
type TranscriptionConfig struct {
	// ContentType is the MIME type of the segment as captured,
	// e.g. "audio/webm;codecs=opus". Default: "audio/webm".
	ContentType string

	// Language is a hint for the transcription language (e.g. "en", "es").
	Language string

	// Model overrides the provider's default model.
	Model string
}

// extensionByContentType maps a segment's MIME type to the container extension
// Whisper expects in the multipart filename. Unmapped types fall back to webm.
var extensionByContentType = map[string]string{
	"audio/webm":  "webm",
	"audio/ogg":   "ogg",
	"audio/mp4":   "mp4",
	"audio/mpeg":  "mp3",
	"audio/wav":   "wav",
	"audio/x-wav": "wav",
	"audio/flac":  "flac",
}

// FileExtension returns the container extension for a content type.
// Codec parameters ("audio/webm;codecs=opus") are stripped before lookup.
func FileExtension(contentType string) string {
	base := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if ext, ok := extensionByContentType[base]; ok {
		return ext
	}
	return "webm"
}

// normalizeContentType fills in the default content type for blank values.
func normalizeContentType(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return "audio/webm"
	}
	return contentType
}
