package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ParloraLabs/SurveyKit/credentials"
)

const (
	deepgramBaseURL  = "https://api.deepgram.com"
	deepgramEndpoint = "/v1/listen"

	// ModelNova2 is the default Deepgram transcription model.
	ModelNova2 = "nova-2"

	// Default timeout for Deepgram requests.
	defaultDeepgramTimeout = 60 * time.Second

	deepgramServerErrorThreshold = 500
)

// DeepgramService implements transcription using Deepgram's listen API.
// Unlike Whisper, the segment is sent as a raw request body with its original
// content type, and the transcript is nested inside a channels/alternatives
// response structure.
type DeepgramService struct {
	cred    credentials.Credential
	baseURL string
	client  *http.Client
	model   string
}

// DeepgramOption configures the Deepgram service.
type DeepgramOption func(*DeepgramService)

// WithDeepgramBaseURL sets a custom base URL (for testing or proxies).
func WithDeepgramBaseURL(url string) DeepgramOption {
	return func(s *DeepgramService) {
		s.baseURL = url
	}
}

// WithDeepgramClient sets a custom HTTP client.
func WithDeepgramClient(client *http.Client) DeepgramOption {
	return func(s *DeepgramService) {
		s.client = client
	}
}

// WithDeepgramModel sets the transcription model to use.
func WithDeepgramModel(model string) DeepgramOption {
	return func(s *DeepgramService) {
		s.model = model
	}
}

// NewDeepgram creates a Deepgram transcription service.
func NewDeepgram(cred credentials.Credential, opts ...DeepgramOption) *DeepgramService {
	s := &DeepgramService{
		cred:    cred,
		baseURL: deepgramBaseURL,
		client:  &http.Client{Timeout: defaultDeepgramTimeout},
		model:   ModelNova2,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the provider identifier.
func (s *DeepgramService) Name() string {
	return "deepgram"
}

// Transcribe converts an audio segment to text using the Deepgram listen API.
func (s *DeepgramService) Transcribe(
	ctx context.Context, audio []byte, cfg TranscriptionConfig,
) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}

	model := cfg.Model
	if model == "" {
		model = s.model
	}

	query := url.Values{}
	query.Set("model", model)
	query.Set("smart_format", "true")
	query.Set("numerals", "true")
	if cfg.Language != "" {
		query.Set("language", cfg.Language)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+deepgramEndpoint+"?"+query.Encode(),
		bytes.NewReader(audio),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	if err := s.cred.Apply(ctx, req); err != nil {
		return "", fmt.Errorf("failed to apply credential: %w", err)
	}
	req.Header.Set("Content-Type", normalizeContentType(cfg.ContentType))

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
		retryable := resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode >= deepgramServerErrorThreshold
		var cause error
		if resp.StatusCode == http.StatusTooManyRequests {
			cause = ErrRateLimited
		}
		return "", NewTranscriptionError(
			s.Name(),
			strconv.Itoa(resp.StatusCode),
			string(body),
			cause,
			retryable,
		)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.Transcript(), nil
}
