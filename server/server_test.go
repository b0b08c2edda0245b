package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/ParloraLabs/SurveyKit/stt"
	"github.com/ParloraLabs/SurveyKit/transcript"
	"github.com/ParloraLabs/SurveyKit/types"
)

type stubTranscriber struct {
	text string
	err  error

	gotAudio    []byte
	gotLanguage string
	gotContent  string
}

func (s *stubTranscriber) Transcribe(_ context.Context, audio []byte, cfg stt.TranscriptionConfig) (string, error) {
	s.gotAudio = audio
	s.gotLanguage = cfg.Language
	s.gotContent = cfg.ContentType
	return s.text, s.err
}

func TestTranscribeEndpoint(t *testing.T) {
	stub := &stubTranscriber{text: "hello world"}
	srv := NewServer("", stub)

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe?language=en", bytes.NewReader([]byte("opus-bytes")))
	req.Header.Set("Content-Type", "audio/webm;codecs=opus")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if string(stub.gotAudio) != "opus-bytes" {
		t.Error("audio body not forwarded verbatim")
	}
	if stub.gotLanguage != "en" || stub.gotContent != "audio/webm;codecs=opus" {
		t.Errorf("config not forwarded: lang=%q ct=%q", stub.gotLanguage, stub.gotContent)
	}

	var result stt.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Transcript() != "hello world" {
		t.Errorf("unexpected transcript %q", result.Transcript())
	}
}

func TestTranscribeEndpoint_EmptyBody(t *testing.T) {
	srv := NewServer("", &stubTranscriber{})

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Errorf("expected error payload, got %s", rec.Body.String())
	}
}

func TestTranscribeEndpoint_GatewayFailure(t *testing.T) {
	stub := &stubTranscriber{err: errors.New("providers down")}
	srv := NewServer("", stub)

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", bytes.NewReader([]byte("audio")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected error field in payload")
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer("", &stubTranscriber{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	srv := NewServer("", &stubTranscriber{text: "ok"}, WithRateLimit(1, 1))
	handler := srv.Handler()

	request := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/transcribe", bytes.NewReader([]byte("audio")))
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := request(); code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", code)
	}
	if code := request(); code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", code)
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", bytes.NewReader([]byte("audio")))
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("other client should pass, got %d", rec.Code)
	}
}

func TestTranscriptFeed(t *testing.T) {
	feed := transcript.NewAssembler()
	feed.AppendQuestion(&types.Question{ID: "q1", Text: "Happy?"}, 1)

	srv := NewServer("", &stubTranscriber{}, WithTranscriptFeed(feed))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/transcript"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var first types.TurnRecord
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read replayed record: %v", err)
	}
	if first.Kind != types.TurnQuestion || first.QuestionID != "q1" {
		t.Errorf("unexpected replayed record %+v", first)
	}

	feed.AppendUserAnswer("Yes")

	var second types.TurnRecord
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("read live record: %v", err)
	}
	if second.Kind != types.TurnUserAnswer || second.Text != "Yes" {
		t.Errorf("unexpected live record %+v", second)
	}
}
