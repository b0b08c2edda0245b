// Package server exposes the conversation engine over HTTP: the audio
// transcription proxy, the live transcript feed, health, and metrics. It is
// plumbing for a rendering layer, not a rendering layer itself.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ParloraLabs/SurveyKit/logger"
	"github.com/ParloraLabs/SurveyKit/stt"
	"github.com/ParloraLabs/SurveyKit/transcript"
)

const (
	// maxAudioBytes caps a single transcription upload (25MB, the Whisper
	// API's own file limit).
	maxAudioBytes = 25 << 20

	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Transcriber is the slice of the stt gateway the server needs.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, cfg stt.TranscriptionConfig) (string, error)
}

// Server serves the engine's HTTP surface.
type Server struct {
	addr        string
	gateway     Transcriber
	feed        *transcript.Assembler
	metricsH    http.Handler
	rateLimiter *rateLimiter
	httpServer  *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler mounts a prometheus handler at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metricsH = h
	}
}

// WithTranscriptFeed enables the /ws/transcript live feed.
func WithTranscriptFeed(a *transcript.Assembler) Option {
	return func(s *Server) {
		s.feed = a
	}
}

// WithRateLimit bounds per-client request rates on the transcribe endpoint.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		s.rateLimiter = newRateLimiter(perSecond, burst)
	}
}

// NewServer creates the HTTP surface bound to addr.
func NewServer(addr string, gateway Transcriber, opts ...Option) *Server {
	s := &Server{
		addr:    addr,
		gateway: gateway,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metricsH != nil {
		r.Handle("/metrics", s.metricsH)
	}
	if s.feed != nil {
		r.Get("/ws/transcript", s.handleTranscriptFeed)
	}

	r.Route("/api", func(r chi.Router) {
		if s.rateLimiter != nil {
			r.Use(s.rateLimiter.middleware)
		}
		r.Post("/transcribe", s.handleTranscribe)
	})

	return otelhttp.NewHandler(r, "surveykit.http")
}

// Start runs the server until ctx is cancelled, then drains connections.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"healthy"}`))
}

// handleTranscribe accepts raw audio in the request body and responds in the
// normalized transcription shape. The Content-Type header selects the audio
// container; ?language= hints the transcription language.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	audio, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio body")
		return
	}
	if len(audio) == 0 {
		writeError(w, http.StatusBadRequest, "empty audio body")
		return
	}

	cfg := stt.TranscriptionConfig{
		ContentType: r.Header.Get("Content-Type"),
		Language:    r.URL.Query().Get("language"),
	}

	text, err := s.gateway.Transcribe(r.Context(), audio, cfg)
	if err != nil {
		logger.Error("transcription request failed", "error", err, "content_type", cfg.ContentType)
		writeError(w, http.StatusInternalServerError, "transcription failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stt.NewResult(text)); err != nil {
		logger.Error("failed to encode transcription response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`+"\n", msg)
}
