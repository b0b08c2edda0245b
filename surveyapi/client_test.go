package surveyapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetSurveyQuestions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/api/surveys/sv-1/questions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"SurveyId": "sv-1",
			"TemplateName": "csat",
			"Questions": [
				{"id": "q2", "text": "Why?", "order": 2, "criteria": "open"},
				{"id": "q1", "text": "Happy?", "order": 1, "criteria": "categorical", "categories": ["Yes", "No"]}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.GetSurveyQuestions(context.Background(), "sv-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SurveyID != "sv-1" {
		t.Errorf("expected survey id sv-1, got %s", result.SurveyID)
	}
	if result.TemplateName != "csat" {
		t.Errorf("expected template csat, got %s", result.TemplateName)
	}
	if len(result.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(result.Questions))
	}
}

func TestGetSurveyQuestions_SchemaRejectsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Questions": [{"text": "missing id"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.GetSurveyQuestions(context.Background(), "sv-1"); err == nil {
		t.Fatal("expected schema validation error")
	}
}

func TestSubmitAnswers(t *testing.T) {
	var received AnswerBatch
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/answers/qna" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	batch := AnswerBatch{
		SurveyID: "sv-1",
		QuestionswithAns: []QuestionWithAns{
			{QueID: "q1", QueText: "Happy?", QueCriteria: "categorical", Ans: "Yes", RawAns: "yes definitely", Order: 1},
		},
	}
	client := NewClient(server.URL)
	if err := client.SubmitAnswers(context.Background(), batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received.SurveyID != "sv-1" || len(received.QuestionswithAns) != 1 {
		t.Errorf("batch not transmitted intact: %+v", received)
	}
	if received.QuestionswithAns[0].RawAns != "yes definitely" {
		t.Errorf("raw answer lost: %+v", received.QuestionswithAns[0])
	}
}

func TestSubmitAnswers_ServerErrorWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.SubmitAnswers(context.Background(), AnswerBatch{SurveyID: "sv-1"})
	if !errors.Is(err, ErrSubmissionFailed) {
		t.Fatalf("expected ErrSubmissionFailed, got %v", err)
	}
}

func TestUpdateStatusAndDuration(t *testing.T) {
	var gotStatus, gotDuration bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPatch && r.URL.Path == "/api/surveys/sv-1/status":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["Status"] != "completed" {
				t.Errorf("unexpected status body %v", body)
			}
			gotStatus = true
		case r.Method == http.MethodPost && r.URL.Path == "/api/surveys/sv-1/duration":
			var body map[string]int64
			json.NewDecoder(r.Body).Decode(&body)
			if body["CompletionDuration"] != 90 {
				t.Errorf("unexpected duration body %v", body)
			}
			gotDuration = true
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.UpdateStatus(context.Background(), "sv-1", "completed"); err != nil {
		t.Fatalf("status: %v", err)
	}
	if err := client.UpdateDuration(context.Background(), "sv-1", 90*time.Second); err != nil {
		t.Fatalf("duration: %v", err)
	}
	if !gotStatus || !gotDuration {
		t.Error("expected both status and duration requests")
	}
}

func TestSympathize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["Question"] == "" || body["Response"] == "" {
			t.Errorf("incomplete sympathize body %v", body)
		}
		w.Write([]byte(`{"response": "That sounds frustrating, thanks for sharing."}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	text, err := client.Sympathize(context.Background(), "Happy?", "Not really")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "That sounds frustrating, thanks for sharing." {
		t.Errorf("unexpected text %q", text)
	}
}

func TestSympathize_MessageField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "Glad to hear it."}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	text, err := client.Sympathize(context.Background(), "Happy?", "Yes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Glad to hear it." {
		t.Errorf("unexpected text %q", text)
	}
}

func TestSympathize_FailureIsTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Sympathize(context.Background(), "Happy?", "Yes")
	if !errors.Is(err, ErrEmpathyGenerationFailed) {
		t.Fatalf("expected ErrEmpathyGenerationFailed, got %v", err)
	}
}

func TestValidateQuestionsPayload(t *testing.T) {
	valid := []byte(`{"SurveyId": "sv-1", "Questions": [{"id": "q1", "text": "Happy?"}]}`)
	if err := ValidateQuestionsPayload(valid); err != nil {
		t.Errorf("expected valid payload, got %v", err)
	}

	invalid := []byte(`{"Questions": "not an array"}`)
	if err := ValidateQuestionsPayload(invalid); err == nil {
		t.Error("expected invalid payload to fail")
	}
}
