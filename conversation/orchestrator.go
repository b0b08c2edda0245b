// Package conversation runs one survey session end to end: it walks the
// realized question plan, drives the capture machine for each turn, validates
// and records answers, interleaves empathic acknowledgments, and finalizes
// the session against the backend.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ParloraLabs/SurveyKit/capture"
	"github.com/ParloraLabs/SurveyKit/logger"
	prom "github.com/ParloraLabs/SurveyKit/metrics/prometheus"
	"github.com/ParloraLabs/SurveyKit/survey"
	"github.com/ParloraLabs/SurveyKit/surveyapi"
	"github.com/ParloraLabs/SurveyKit/transcript"
	"github.com/ParloraLabs/SurveyKit/types"
)

// ErrValidationRejected reports a transcript that did not satisfy the current
// question's criteria. The plan does not advance; the same question is asked
// again.
var ErrValidationRejected = errors.New("answer validation rejected")

// ErrSessionComplete reports a turn attempted after the plan was exhausted.
var ErrSessionComplete = errors.New("session already complete")

// ErrSessionNotComplete reports finalization attempted with questions left.
var ErrSessionNotComplete = errors.New("session not complete")

const (
	retryPrompt    = "Sorry, I didn't quite catch that. Could you answer again?"
	completionText = "That was the last question. Thank you for taking the time to share your feedback!"

	// completedStatus is what the backend expects once a session finalizes.
	completedStatus = "completed"

	defaultSympathyTimeout = 5 * time.Second
	defaultFinalizeTimeout = 30 * time.Second
)

// Backend is the slice of the survey backend the orchestrator talks to.
// *surveyapi.Client satisfies it.
type Backend interface {
	SubmitAnswers(ctx context.Context, batch surveyapi.AnswerBatch) error
	UpdateStatus(ctx context.Context, surveyID, status string) error
	UpdateDuration(ctx context.Context, surveyID string, duration time.Duration) error
	Sympathize(ctx context.Context, question, response string) (string, error)
}

// Orchestrator sequences the turns of a single survey session. All methods
// are safe for concurrent use, though the turn loop itself is strictly
// sequential.
type Orchestrator struct {
	sessionID string
	surveyID  string
	language  string

	resolver *survey.Resolver
	machine  *capture.Machine
	log      *transcript.Assembler
	backend  Backend

	sympathyTimeout time.Duration
	finalizeTimeout time.Duration

	mu        sync.Mutex
	startedAt time.Time
	submitted bool
	finalized bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLanguage sets the transcription language hint for the session.
func WithLanguage(lang string) Option {
	return func(o *Orchestrator) {
		o.language = lang
	}
}

// WithSympathyTimeout bounds each empathic-response call.
func WithSympathyTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.sympathyTimeout = d
	}
}

// WithFinalizeTimeout bounds the finalization calls as a group.
func WithFinalizeTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.finalizeTimeout = d
	}
}

// NewOrchestrator builds a session over the given question set. Questions are
// sorted into the initial plan by the resolver; the session id is freshly
// generated.
func NewOrchestrator(surveyID string, questions []types.Question, machine *capture.Machine, log *transcript.Assembler, backend Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sessionID:       uuid.NewString(),
		surveyID:        surveyID,
		resolver:        survey.NewResolver(questions),
		machine:         machine,
		log:             log,
		backend:         backend,
		sympathyTimeout: defaultSympathyTimeout,
		finalizeTimeout: defaultFinalizeTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SessionID returns the generated session identifier.
func (o *Orchestrator) SessionID() string {
	return o.sessionID
}

// Transcript returns the session's transcript assembler.
func (o *Orchestrator) Transcript() *transcript.Assembler {
	return o.log
}

// Begin starts the session clock, skips any leading autofill questions, and
// emits the first askable question. An empty plan finalizes immediately.
func (o *Orchestrator) Begin(ctx context.Context) error {
	o.mu.Lock()
	o.startedAt = time.Now()
	o.mu.Unlock()

	prom.RecordSessionStart()
	logger.Info("session started",
		"session_id", o.sessionID,
		"survey_id", o.surveyID,
		"questions", len(o.resolver.Plan()))

	if err := o.skipAutofilled(); err != nil {
		return err
	}
	return o.presentCurrent(ctx)
}

// StartListening transitions the capture machine into recording for the
// current question. It reports false when the machine declined to start.
func (o *Orchestrator) StartListening(ctx context.Context) (bool, error) {
	return o.machine.StartRecording(ctx)
}

// CompleteTurn stops recording, transcribes the segment, and runs the
// validate/record/sympathize cycle for the current question. On validation
// rejection the plan stays put and a retry prompt is emitted.
func (o *Orchestrator) CompleteTurn(ctx context.Context) error {
	turnStart := time.Now()

	q, ok := o.resolver.Current()
	if !ok {
		return ErrSessionComplete
	}

	text, err := o.machine.StopRecording(ctx, o.language)
	if err != nil {
		if errors.Is(err, capture.ErrTurnSuperseded) {
			return err
		}
		prom.RecordTurn(prom.StatusError, time.Since(turnStart).Seconds())
		o.log.AppendMessage(retryPrompt)
		return err
	}
	if text == "" {
		// Stop without an active recording is a no-op, not a rejection.
		return nil
	}

	return o.acceptAnswer(ctx, q, text, turnStart)
}

// AnswerText records a typed (non-audio) answer for the current question.
// The validate/record/sympathize cycle is identical to the audio path.
func (o *Orchestrator) AnswerText(ctx context.Context, text string) error {
	q, ok := o.resolver.Current()
	if !ok {
		return ErrSessionComplete
	}
	return o.acceptAnswer(ctx, q, text, time.Now())
}

// acceptAnswer validates, normalizes, and records one answer, then moves the
// session forward.
func (o *Orchestrator) acceptAnswer(ctx context.Context, q *types.Question, text string, turnStart time.Time) error {
	if !survey.IsValid(q, text) {
		prom.RecordValidation(q.Criteria, prom.StatusRejected)
		prom.RecordTurn(prom.StatusError, time.Since(turnStart).Seconds())
		o.machine.FinishTurn()
		o.log.AppendMessage(retryPrompt)
		logger.Debug("answer rejected",
			"session_id", o.sessionID,
			"question_id", q.ID,
			"criteria", q.Criteria)
		return fmt.Errorf("%w: question %s", ErrValidationRejected, q.ID)
	}
	prom.RecordValidation(q.Criteria, prom.StatusAccepted)

	normalized, err := survey.Normalize(q, text)
	if err != nil {
		o.machine.FinishTurn()
		return err
	}

	ans := types.Answer{
		QuestionID:    q.ID,
		RawTranscript: text,
		Value:         normalized,
		Timestamp:     time.Now(),
	}
	if err := o.resolver.RecordAnswer(ans); err != nil {
		o.machine.FinishTurn()
		return err
	}
	o.log.AppendUserAnswer(text)
	o.machine.BeginThinking()

	o.emitSympathy(ctx, q, normalized)

	prom.RecordTurn(prom.StatusSuccess, time.Since(turnStart).Seconds())

	if err := o.skipAutofilled(); err != nil {
		o.machine.FinishTurn()
		return err
	}
	o.machine.FinishTurn()
	return o.presentCurrent(ctx)
}

// emitSympathy appends a best-effort empathic acknowledgment. Failures are
// absorbed with the fallback text; they never block the turn.
func (o *Orchestrator) emitSympathy(ctx context.Context, q *types.Question, answer string) {
	sctx, cancel := context.WithTimeout(ctx, o.sympathyTimeout)
	defer cancel()

	text, err := o.backend.Sympathize(sctx, q.Text, answer)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			logger.Warn("sympathy generation failed, using fallback",
				"session_id", o.sessionID,
				"question_id", q.ID,
				"error", err)
		}
		text = surveyapi.FallbackSympathyText
	}
	o.log.AppendSympathy(text)
}

// skipAutofilled records answers for consecutive autofill questions that
// arrive pre-answered. No audio is captured for them, but they still appear
// in the transcript.
func (o *Orchestrator) skipAutofilled() error {
	for {
		q, ok := o.resolver.Current()
		if !ok || !q.AutofillEnabled() || !q.HasPrefilledAnswer() {
			return nil
		}

		o.log.AppendQuestion(q, o.resolver.Position())
		ans := types.Answer{
			QuestionID:    q.ID,
			RawTranscript: q.Answer,
			Value:         q.Answer,
			Timestamp:     time.Now(),
		}
		if err := o.resolver.RecordAnswer(ans); err != nil {
			return err
		}
		o.log.AppendUserAnswer(q.Answer)
		logger.Debug("autofilled question skipped",
			"session_id", o.sessionID,
			"question_id", q.ID)
	}
}

// presentCurrent emits the current question, or finalizes when the plan is
// exhausted.
func (o *Orchestrator) presentCurrent(ctx context.Context) error {
	q, ok := o.resolver.Current()
	if !ok {
		return o.Finalize(ctx)
	}
	o.log.AppendQuestion(q, o.resolver.Position())
	o.machine.SetQuestionAvailable(true)
	return nil
}

// IsComplete reports whether every question in the realized plan is answered.
func (o *Orchestrator) IsComplete() bool {
	return o.resolver.IsComplete()
}

// Finalize submits the answer batch, then updates status and duration
// concurrently. Submission failure leaves the answers intact so the caller
// can retry Finalize; status and duration failures are logged only.
func (o *Orchestrator) Finalize(ctx context.Context) error {
	if !o.resolver.IsComplete() {
		return ErrSessionNotComplete
	}

	o.mu.Lock()
	if o.finalized {
		o.mu.Unlock()
		return nil
	}
	startedAt := o.startedAt
	o.mu.Unlock()

	fctx, cancel := context.WithTimeout(ctx, o.finalizeTimeout)
	defer cancel()

	if err := o.backend.SubmitAnswers(fctx, o.answerBatch()); err != nil {
		prom.RecordSubmission(prom.StatusError)
		logger.Error("answer submission failed",
			"session_id", o.sessionID,
			"survey_id", o.surveyID,
			"error", err)
		return err
	}
	prom.RecordSubmission(prom.StatusSuccess)

	g, gctx := errgroup.WithContext(fctx)
	g.Go(func() error {
		return o.backend.UpdateStatus(gctx, o.surveyID, completedStatus)
	})
	g.Go(func() error {
		return o.backend.UpdateDuration(gctx, o.surveyID, time.Since(startedAt))
	})
	if err := g.Wait(); err != nil {
		logger.Warn("session bookkeeping update failed",
			"session_id", o.sessionID,
			"error", err)
	}

	o.mu.Lock()
	o.finalized = true
	o.mu.Unlock()

	o.log.AppendCompletion(completionText)
	o.machine.MarkCompleted()
	prom.RecordSessionEnd()
	logger.Info("session finalized",
		"session_id", o.sessionID,
		"survey_id", o.surveyID,
		"duration", time.Since(startedAt).Round(time.Second).String())
	return nil
}

// answerBatch assembles the submission payload from the answered plan, in
// plan order.
func (o *Orchestrator) answerBatch() surveyapi.AnswerBatch {
	answered := o.resolver.Answered()
	batch := surveyapi.AnswerBatch{
		SurveyID:         o.surveyID,
		QuestionswithAns: make([]surveyapi.QuestionWithAns, 0, len(answered)),
	}
	for _, aq := range answered {
		q := aq.Question
		batch.QuestionswithAns = append(batch.QuestionswithAns, surveyapi.QuestionWithAns{
			QueID:               q.ID,
			QueText:             q.Text,
			QueScale:            q.ScaleMax,
			QueCriteria:         q.Criteria,
			QueCategories:       q.Categories,
			ParentID:            q.ParentID,
			ParentCategoryTexts: q.ParentCategoryTexts,
			Order:               q.Order,
			Ans:                 aq.Answer.Value,
			RawAns:              aq.Answer.RawTranscript,
			Autofill:            q.Autofill,
		})
	}
	return batch
}
