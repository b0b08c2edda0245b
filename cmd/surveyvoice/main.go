// Command surveyvoice runs the voice survey conversation engine: the audio
// transcription endpoint, the live transcript feed, and prometheus metrics.
//
// Usage:
//
//	export OPENAI_API_KEY=sk-...
//	export DEEPGRAM_API_TOKEN=...
//	surveyvoice -config config.yaml -survey <survey-id>
//
// Provider credentials come from the environment; a provider with no
// credential configured is skipped in the fallback chain.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ParloraLabs/SurveyKit/capture"
	"github.com/ParloraLabs/SurveyKit/config"
	"github.com/ParloraLabs/SurveyKit/conversation"
	"github.com/ParloraLabs/SurveyKit/credentials"
	"github.com/ParloraLabs/SurveyKit/logger"
	prom "github.com/ParloraLabs/SurveyKit/metrics/prometheus"
	"github.com/ParloraLabs/SurveyKit/server"
	"github.com/ParloraLabs/SurveyKit/stt"
	"github.com/ParloraLabs/SurveyKit/surveyapi"
	"github.com/ParloraLabs/SurveyKit/transcript"
	"github.com/ParloraLabs/SurveyKit/version"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	surveyID := flag.String("survey", "", "survey id to run a session for")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	if err := run(*configPath, *surveyID); err != nil {
		fmt.Fprintln(os.Stderr, "surveyvoice:", err)
		os.Exit(1)
	}
}

func run(configPath, surveyID string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.Info("surveyvoice starting", version.LogAttrs()...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway := buildGateway(cfg)
	if !gateway.Configured() {
		logger.Warn("no transcription provider configured, transcribe requests will fail")
	}

	backend := surveyapi.NewClient(cfg.Backend.BaseURL,
		surveyapi.WithTimeout(cfg.Backend.BackendTimeout()))

	feed := transcript.NewAssembler()

	g, gctx := errgroup.WithContext(ctx)

	srvOpts := []server.Option{
		server.WithRateLimit(cfg.Server.RatePerSecond, cfg.Server.RateBurst),
	}
	if cfg.Server.TranscriptFeed {
		srvOpts = append(srvOpts, server.WithTranscriptFeed(feed))
	}

	if cfg.Metrics.Enabled {
		exporter := prom.NewExporter(cfg.Metrics.Address)
		srvOpts = append(srvOpts, server.WithMetricsHandler(exporter.Handler()))
		g.Go(func() error {
			if err := exporter.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return exporter.Shutdown(shutdownCtx)
		})
	}

	srv := server.NewServer(cfg.Server.Address, gateway, srvOpts...)
	g.Go(func() error { return srv.Start(gctx) })

	if surveyID != "" {
		g.Go(func() error {
			return runSession(gctx, cfg, backend, gateway, feed, surveyID)
		})
	}

	return g.Wait()
}

// buildGateway wires whatever providers have credentials in the environment
// into the fallback chain, primary first.
func buildGateway(cfg *config.Config) *stt.Gateway {
	var primary, secondary stt.Service
	if cred := credentials.ResolveFromEnv(credentials.ProviderOpenAI); cred != nil {
		opts := []stt.WhisperOption{}
		if cfg.Transcription.WhisperModel != "" {
			opts = append(opts, stt.WithWhisperModel(cfg.Transcription.WhisperModel))
		}
		primary = stt.NewWhisper(cred, opts...)
	}
	if cred := credentials.ResolveFromEnv(credentials.ProviderDeepgram); cred != nil {
		opts := []stt.DeepgramOption{}
		if cfg.Transcription.DeepgramModel != "" {
			opts = append(opts, stt.WithDeepgramModel(cfg.Transcription.DeepgramModel))
		}
		secondary = stt.NewDeepgram(cred, opts...)
	}
	return stt.NewGateway(primary, secondary,
		stt.WithPrimaryTimeout(cfg.Transcription.PrimaryTimeoutDuration()))
}

// runSession fetches the survey's questions and drives one conversation
// session to completion.
func runSession(ctx context.Context, cfg *config.Config, backend *surveyapi.Client, gateway *stt.Gateway, feed *transcript.Assembler, surveyID string) error {
	questions, err := backend.GetSurveyQuestions(ctx, surveyID)
	if err != nil {
		return err
	}

	recorder := capture.NewMemoryRecorder("audio/webm")
	machine := capture.NewMachine(recorder, gateway)
	orch := conversation.NewOrchestrator(surveyID, questions.Questions, machine, feed, backend,
		conversation.WithLanguage(cfg.Transcription.Language))

	logger.Info("session ready",
		"session_id", orch.SessionID(),
		"survey_id", surveyID,
		"template", questions.TemplateName)
	return orch.Begin(ctx)
}
