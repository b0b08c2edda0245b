// Package surveyapi is the HTTP client for the backend survey services:
// question fetch, answer batch submission, status and duration updates, and
// empathic-response generation. The engine persists nothing itself; this
// client is the only place session results leave the process.
package surveyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ParloraLabs/SurveyKit/logger"
	"github.com/ParloraLabs/SurveyKit/types"
)

// FallbackSympathyText is shown when empathic-response generation fails.
// Empathy failures are absorbed, never surfaced to the respondent.
const FallbackSympathyText = "Thank you for your response."

// defaultTimeout bounds each backend call.
const defaultTimeout = 15 * time.Second

// ErrSubmissionFailed wraps any failure of the final answer batch submission.
// It is surfaced to the orchestrating caller for a user-visible retry; the
// accumulated answers are never discarded.
var ErrSubmissionFailed = errors.New("answer submission failed")

// ErrEmpathyGenerationFailed wraps empathic-response generation failures.
var ErrEmpathyGenerationFailed = errors.New("empathy generation failed")

// SurveyQuestions is the response of the question-fetch endpoint.
type SurveyQuestions struct {
	SurveyID     string           `json:"SurveyId"`
	TemplateName string           `json:"TemplateName"`
	Questions    []types.Question `json:"Questions"`
}

// QuestionWithAns is one element of the answer batch payload.
type QuestionWithAns struct {
	QueID               string   `json:"QueId"`
	QueText             string   `json:"QueText"`
	QueScale            int      `json:"QueScale"`
	QueCriteria         string   `json:"QueCriteria"`
	QueCategories       []string `json:"QueCategories"`
	ParentID            string   `json:"ParentId"`
	ParentCategoryTexts []string `json:"ParentCategoryTexts"`
	Order               int      `json:"Order"`
	Ans                 string   `json:"Ans"`
	RawAns              string   `json:"RawAns"`
	Autofill            string   `json:"Autofill"`
}

// AnswerBatch is the one-shot submission body for a completed session.
// Retries with the same SurveyID and answer set are safe; the backend
// deduplicates on the pair.
type AnswerBatch struct {
	SurveyID         string            `json:"SurveyId"`
	QuestionswithAns []QuestionWithAns `json:"QuestionswithAns"`
}

// Client calls the backend survey services.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.httpClient.Timeout = d
	}
}

// NewClient creates a backend client rooted at baseURL. Outbound requests are
// traced via otelhttp.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetSurveyQuestions fetches the question set for a survey. The payload is
// schema-validated before decoding; questions arrive with blank answers
// defaulted and are returned unsorted (the resolver sorts by order).
func (c *Client) GetSurveyQuestions(ctx context.Context, surveyID string) (*SurveyQuestions, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/surveys/%s/questions", surveyID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch survey questions: %w", err)
	}

	if err := ValidateQuestionsPayload(body); err != nil {
		return nil, fmt.Errorf("invalid questions payload: %w", err)
	}

	var result SurveyQuestions
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode questions payload: %w", err)
	}
	return &result, nil
}

// SubmitAnswers posts the accumulated answer batch. One batch is submitted
// per completed session; idempotent retries are safe.
func (c *Client) SubmitAnswers(ctx context.Context, batch AnswerBatch) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to encode answer batch: %w", err)
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/answers/qna", payload); err != nil {
		return errors.Join(ErrSubmissionFailed, err)
	}
	logger.Info("answer batch submitted", "survey_id", batch.SurveyID, "answers", len(batch.QuestionswithAns))
	return nil
}

// UpdateStatus patches the survey's status (e.g. "completed").
func (c *Client) UpdateStatus(ctx context.Context, surveyID, status string) error {
	payload, err := json.Marshal(map[string]string{"Status": status})
	if err != nil {
		return err
	}
	if _, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/surveys/%s/status", surveyID), payload); err != nil {
		return fmt.Errorf("failed to update survey status: %w", err)
	}
	return nil
}

// UpdateDuration posts the session's completion duration in seconds.
func (c *Client) UpdateDuration(ctx context.Context, surveyID string, duration time.Duration) error {
	payload, err := json.Marshal(map[string]int64{"CompletionDuration": int64(duration.Seconds())})
	if err != nil {
		return err
	}
	if _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/surveys/%s/duration", surveyID), payload); err != nil {
		return fmt.Errorf("failed to update survey duration: %w", err)
	}
	return nil
}

// Sympathize requests a short empathic acknowledgment for an answered
// question. Any failure yields ErrEmpathyGenerationFailed; callers substitute
// FallbackSympathyText and continue.
func (c *Client) Sympathize(ctx context.Context, question, response string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"Question": question,
		"Response": response,
	})
	if err != nil {
		return "", errors.Join(ErrEmpathyGenerationFailed, err)
	}

	body, err := c.do(ctx, http.MethodPost, "/api/questions/sympathize", payload)
	if err != nil {
		return "", errors.Join(ErrEmpathyGenerationFailed, err)
	}

	var result struct {
		Response string `json:"response"`
		Message  string `json:"message"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", errors.Join(ErrEmpathyGenerationFailed, err)
	}
	if result.Response != "" {
		return result.Response, nil
	}
	if result.Message != "" {
		return result.Message, nil
	}
	return FallbackSympathyText, nil
}

// do performs one backend call and returns the response body.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return body, nil
}
