package stt

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ParloraLabs/SurveyKit/logger"
	"github.com/ParloraLabs/SurveyKit/metrics/prometheus"
)

var tracer = otel.Tracer("github.com/ParloraLabs/SurveyKit/stt")

// DefaultPrimaryTimeout bounds the primary provider attempt so a slow
// non-responsive primary cannot delay the secondary indefinitely.
const DefaultPrimaryTimeout = 20 * time.Second

// Gateway performs ordered provider fallback: the primary provider is tried
// first (when configured) and the secondary only after the primary's full
// failure has been observed, including an empty-transcript result. The same
// audio bytes are submitted to both providers. Fallback is sequential, never
// a parallel race.
type Gateway struct {
	primary        Service
	secondary      Service
	primaryTimeout time.Duration
	breakers       map[string]*gobreaker.CircuitBreaker
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithPrimaryTimeout bounds the primary provider attempt.
func WithPrimaryTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.primaryTimeout = d
	}
}

// NewGateway creates a transcription gateway. Either service may be nil,
// meaning that provider is not configured; a nil primary with a configured
// secondary calls the secondary directly without attempting the primary.
func NewGateway(primary, secondary Service, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		primary:        primary,
		secondary:      secondary,
		primaryTimeout: DefaultPrimaryTimeout,
		breakers:       make(map[string]*gobreaker.CircuitBreaker),
	}
	for _, opt := range opts {
		opt(g)
	}
	for _, svc := range []Service{primary, secondary} {
		if svc != nil {
			g.breakers[svc.Name()] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
				Name: svc.Name(),
			})
		}
	}
	return g
}

// Configured reports whether at least one provider is available.
func (g *Gateway) Configured() bool {
	return g.primary != nil || g.secondary != nil
}

// Transcribe converts an audio segment to a non-empty transcript, falling
// back from the primary to the secondary provider on error or empty result.
func (g *Gateway) Transcribe(ctx context.Context, audio []byte, cfg TranscriptionConfig) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}
	if !g.Configured() {
		return "", ErrNotConfigured
	}

	if g.primary == nil {
		// Secondary-only configuration: call it directly.
		text, err := g.attempt(ctx, g.secondary, audio, cfg)
		if err != nil {
			return "", errors.Join(ErrAllProvidersFailed, err)
		}
		return text, nil
	}

	primaryCtx, cancel := context.WithTimeout(ctx, g.primaryTimeout)
	text, primaryErr := g.attempt(primaryCtx, g.primary, audio, cfg)
	cancel()
	if primaryErr == nil {
		return text, nil
	}

	if g.secondary == nil {
		return "", errors.Join(ErrAllProvidersFailed, primaryErr)
	}

	logger.TranscriptionFallback(g.primary.Name(), g.secondary.Name(), primaryErr.Error())
	prometheus.RecordTranscriptionFallback(g.primary.Name(), g.secondary.Name())

	text, secondaryErr := g.attempt(ctx, g.secondary, audio, cfg)
	if secondaryErr != nil {
		return "", errors.Join(ErrAllProvidersFailed, primaryErr, secondaryErr)
	}
	return text, nil
}

// attempt runs one provider call through its circuit breaker, recording
// metrics and a trace span, and normalizing empty transcripts into errors.
func (g *Gateway) attempt(ctx context.Context, svc Service, audio []byte, cfg TranscriptionConfig) (string, error) {
	ctx, span := tracer.Start(ctx, "stt.transcribe",
		trace.WithAttributes(
			attribute.String("stt.provider", svc.Name()),
			attribute.Int("stt.audio_bytes", len(audio)),
		))
	defer span.End()

	logger.TranscriptionCall(svc.Name(), len(audio), normalizeContentType(cfg.ContentType))

	start := time.Now()
	result, err := g.breakers[svc.Name()].Execute(func() (interface{}, error) {
		return svc.Transcribe(ctx, audio, cfg)
	})
	elapsed := time.Since(start)

	if err != nil {
		prometheus.RecordTranscription(svc.Name(), prometheus.StatusError, elapsed.Seconds())
		logger.TranscriptionError(svc.Name(), err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	text, _ := result.(string)
	if strings.TrimSpace(text) == "" {
		prometheus.RecordTranscription(svc.Name(), prometheus.StatusEmpty, elapsed.Seconds())
		span.SetStatus(codes.Error, "empty transcript")
		return "", NewTranscriptionError(svc.Name(), "", "empty transcript", ErrEmptyTranscript, false)
	}

	prometheus.RecordTranscription(svc.Name(), prometheus.StatusSuccess, elapsed.Seconds())
	logger.TranscriptionResult(svc.Name(), text, elapsed.Milliseconds())
	return text, nil
}
