package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/ParloraLabs/SurveyKit/credentials"
)

const (
	whisperBaseURL  = "https://api.openai.com/v1"
	whisperEndpoint = "/audio/transcriptions"

	// ModelWhisper1 is the OpenAI Whisper model for transcription.
	ModelWhisper1 = "whisper-1"

	// Default timeout for Whisper requests.
	defaultWhisperTimeout = 60 * time.Second

	// HTTP status code threshold for server errors.
	whisperServerErrorThreshold = 500
)

// WhisperService implements transcription using OpenAI's Whisper API.
// The captured segment is sent as a multipart file whose extension is derived
// from the segment's content type.
type WhisperService struct {
	cred    credentials.Credential
	baseURL string
	client  *http.Client
	model   string
}

// WhisperOption configures the Whisper service.
type WhisperOption func(*WhisperService)

// WithWhisperBaseURL sets a custom base URL (for testing or proxies).
func WithWhisperBaseURL(url string) WhisperOption {
	return func(s *WhisperService) {
		s.baseURL = url
	}
}

// WithWhisperClient sets a custom HTTP client.
func WithWhisperClient(client *http.Client) WhisperOption {
	return func(s *WhisperService) {
		s.client = client
	}
}

// WithWhisperModel sets the transcription model to use.
func WithWhisperModel(model string) WhisperOption {
	return func(s *WhisperService) {
		s.model = model
	}
}

// NewWhisper creates a Whisper transcription service.
func NewWhisper(cred credentials.Credential, opts ...WhisperOption) *WhisperService {
	s := &WhisperService{
		cred:    cred,
		baseURL: whisperBaseURL,
		client:  &http.Client{Timeout: defaultWhisperTimeout},
		model:   ModelWhisper1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the provider identifier.
func (s *WhisperService) Name() string {
	return "openai-whisper"
}

// Transcribe converts an audio segment to text using the Whisper API.
func (s *WhisperService) Transcribe(
	ctx context.Context, audio []byte, cfg TranscriptionConfig,
) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}

	contentType := normalizeContentType(cfg.ContentType)
	filename := "recording." + FileExtension(contentType)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("failed to write audio data: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = s.model
	}
	if err := writer.WriteField("model", model); err != nil {
		return "", fmt.Errorf("failed to write model field: %w", err)
	}

	language := cfg.Language
	if language == "" {
		language = DefaultLanguage
	}
	if err := writer.WriteField("language", language); err != nil {
		return "", fmt.Errorf("failed to write language field: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+whisperEndpoint,
		&buf,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	if err := s.cred.Apply(ctx, req); err != nil {
		return "", fmt.Errorf("failed to apply credential: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", NewTranscriptionError(s.Name(), "", "request failed", err, true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", s.handleError(resp.StatusCode, body)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Text, nil
}

// handleError maps a Whisper error response onto a TranscriptionError.
func (s *WhisperService) handleError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err != nil {
		return NewTranscriptionError(
			s.Name(),
			strconv.Itoa(statusCode),
			string(body),
			nil,
			statusCode >= whisperServerErrorThreshold,
		)
	}

	retryable := statusCode == http.StatusTooManyRequests ||
		statusCode >= whisperServerErrorThreshold

	var cause error
	switch statusCode {
	case http.StatusTooManyRequests:
		cause = ErrRateLimited
	case http.StatusUnauthorized:
		cause = fmt.Errorf("invalid API key")
	}

	return NewTranscriptionError(
		s.Name(),
		errResp.Error.Code,
		errResp.Error.Message,
		cause,
		retryable,
	)
}
