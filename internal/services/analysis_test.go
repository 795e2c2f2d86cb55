package services

import (
	"context"
	"errors"
	"testing"

	"github.com/formpulse/backend/internal/config"
	"github.com/formpulse/backend/internal/models"
)

func newTestAnalysisService() *AnalysisService {
	return NewAnalysisService(nil, &config.OpenAIConfig{TimeoutSeconds: 30})
}

func TestAnalyze_WhitespaceShortCircuit(t *testing.T) {
	svc := newTestAnalysisService()
	hints := TaxonomyHints{Categories: []string{"Service"}, Tags: []string{"delivery"}}

	cases := []string{"", "   ", "\n\t  \n"}
	for _, text := range cases {
		result, err := svc.Analyze(context.Background(), text, hints)
		if err != nil {
			t.Fatalf("Analyze(%q) returned error: %v", text, err)
		}
		if result.RatingScore != nil || result.Importance != nil || result.Mood != nil {
			t.Errorf("Analyze(%q): numeric fields must be nil", text)
		}
		if result.NeedsAction {
			t.Errorf("Analyze(%q): NeedsAction must be false", text)
		}
		if result.ActionSteps != "" {
			t.Errorf("Analyze(%q): ActionSteps must be empty", text)
		}
		if result.Tags == nil || len(result.Tags) != 0 {
			t.Errorf("Analyze(%q): Tags must be an empty array", text)
		}
		if result.Pros == nil || len(result.Pros) != 0 {
			t.Errorf("Analyze(%q): Pros must be an empty array", text)
		}
		if result.Cons == nil || len(result.Cons) != 0 {
			t.Errorf("Analyze(%q): Cons must be an empty array", text)
		}
	}
}

func TestMergeBatch_RejectsWrongWindowSize(t *testing.T) {
	svc := newTestAnalysisService()
	existing := models.EmptyReportData("form-1")

	for _, n := range []int{0, 1, 9, 11} {
		batch := make([]BatchEntry, n)
		_, err := svc.MergeBatch(context.Background(), existing, batch)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("MergeBatch with %d entries: error = %v, expected ErrInvalidArgument", n, err)
		}
	}
}

func TestParseAnalysisResult_Valid(t *testing.T) {
	content := `{
		"analyzed_ai_rating": 4,
		"short_summary": "Positive feedback about delivery speed.",
		"category": "Delivery",
		"tags": ["fast delivery", "service"],
		"importance_index": 3,
		"user_mood": 8,
		"needs_action": false,
		"action_steps": "",
		"pros": ["fast delivery"],
		"cons": []
	}`

	result, err := parseAnalysisResult(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RatingScore == nil || *result.RatingScore != 4 {
		t.Errorf("RatingScore = %v, expected 4", result.RatingScore)
	}
	if result.Category != "Delivery" {
		t.Errorf("Category = %q", result.Category)
	}
	if len(result.Pros) != 1 || result.Pros[0] != "fast delivery" {
		t.Errorf("Pros = %v", result.Pros)
	}
}

func TestParseAnalysisResult_NullSentinel(t *testing.T) {
	content := `{
		"analyzed_ai_rating": null,
		"short_summary": "No valid comment provided.",
		"category": null,
		"tags": [],
		"importance_index": null,
		"user_mood": null,
		"needs_action": false,
		"action_steps": "",
		"pros": [],
		"cons": []
	}`

	result, err := parseAnalysisResult(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RatingScore != nil || result.Importance != nil || result.Mood != nil {
		t.Error("sentinel numeric fields must stay nil")
	}
	if result.NeedsAction {
		t.Error("sentinel NeedsAction must be false")
	}
}

func TestParseAnalysisResult_Normalization(t *testing.T) {
	content := `{
		"analyzed_ai_rating": 9,
		"short_summary": "s",
		"category": "General",
		"tags": ["a", "b", "c", "d"],
		"importance_index": 15,
		"user_mood": 0,
		"needs_action": false,
		"action_steps": "should be cleared",
		"pros": null,
		"cons": null
	}`

	result, err := parseAnalysisResult(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Tags) != 2 {
		t.Errorf("tags truncated to %d, expected 2", len(result.Tags))
	}
	if *result.RatingScore != 5 {
		t.Errorf("RatingScore clamped to %d, expected 5", *result.RatingScore)
	}
	if *result.Importance != 10 {
		t.Errorf("Importance clamped to %d, expected 10", *result.Importance)
	}
	if *result.Mood != 1 {
		t.Errorf("Mood clamped to %d, expected 1", *result.Mood)
	}
	if result.ActionSteps != "" {
		t.Error("ActionSteps must be cleared when NeedsAction is false")
	}
	if result.Pros == nil || result.Cons == nil {
		t.Error("nil arrays must normalize to empty slices")
	}
}

func TestParseAnalysisResult_Malformed(t *testing.T) {
	_, err := parseAnalysisResult("I could not produce a result, sorry.")
	if !errors.Is(err, ErrMalformedOutput) {
		t.Errorf("error = %v, expected ErrMalformedOutput", err)
	}
}

func TestParseReportData_Valid(t *testing.T) {
	content := "```json\n" + `{
		"form_id": "ignored-by-parser",
		"total_answers": 10,
		"average_rating": 3.9,
		"average_mood": 7.1,
		"importance_buckets": {"1-3": 4, "4-6": 3, "7-10": 3},
		"category_counts": {"Delivery": 6},
		"tag_counts": {"fast": 2},
		"needs_action_count": 2,
		"pros_count": 5,
		"cons_count": 3,
		"summary_text": "Mostly positive."
	}` + "\n```"

	data, err := parseReportData(content, "form-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.FormID != "form-1" {
		t.Errorf("FormID = %q, the caller's form id must win", data.FormID)
	}
	if data.TotalAnswers != 10 {
		t.Errorf("TotalAnswers = %d", data.TotalAnswers)
	}
	if data.ImportanceBuckets["1-3"] != 4 {
		t.Errorf("ImportanceBuckets = %v", data.ImportanceBuckets)
	}
}

func TestParseReportData_RejectsEmptyReport(t *testing.T) {
	_, err := parseReportData(`{"total_answers": 0}`, "form-1")
	if !errors.Is(err, ErrMalformedOutput) {
		t.Errorf("error = %v, expected ErrMalformedOutput", err)
	}
}

func TestCallWithFallback_NoConfigsIsUnavailable(t *testing.T) {
	// No DB rows and no yaml API key: the capability is unreachable.
	svc := NewAnalysisService(nil, &config.OpenAIConfig{TimeoutSeconds: 1})
	_, err := svc.Analyze(context.Background(), "a real comment", TaxonomyHints{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, expected ErrUnavailable", err)
	}
}
